// Copyright 2025 James Ross
package simtypes

// DistributionKind names one of the sampleable shapes in §4.1.
type DistributionKind string

const (
	DistDeterministic DistributionKind = "deterministic"
	DistExponential   DistributionKind = "exponential"
	DistTriangular    DistributionKind = "triangular"
	DistLognormal     DistributionKind = "lognormal"
)

// Distribution is a tagged union over the sampleable shapes. Only the
// fields relevant to Kind are populated; the rest are left at zero.
// Kept as an explicit struct rather than map[string]interface{} per
// the module's "no dynamic indexing at the boundary" design note.
type Distribution struct {
	Kind DistributionKind `json:"kind"`

	// deterministic
	ValueHours float64 `json:"value_hours,omitempty"`

	// exponential
	RatePerHour float64 `json:"rate_per_hour,omitempty"`

	// triangular
	A float64 `json:"a,omitempty"`
	M float64 `json:"m,omitempty"`
	B float64 `json:"b,omitempty"`

	// lognormal
	Mu    float64 `json:"mu,omitempty"`
	Sigma float64 `json:"sigma,omitempty"`
}
