// Package availability computes the per-MOS availability-factor
// scalar and the reporting-only availability timeline described in
// spec §4.4a. This is never consulted by the DES kernel's dispatch
// logic — personnel unavailability is modeled entirely through
// scheduled duty/rest events — it exists purely to annotate the
// result with an expected-unavailability figure derived from annual,
// quarterly and monthly commitment days. Grounded on the teacher's
// forecasting package's time-series-point struct shape
// (internal/forecasting), with the EWMA/Holt-Winters projection logic
// itself not reused since the figure here is a closed-form scalar.
package availability

import "github.com/flyingrobots/squadron-sim/internal/simtypes"

const (
	daysPerYear = 365.0
	minFactor   = 0.1
	maxFactor   = 1.0
)

// Factor converts one MOS's commitment-days-per-year into the
// fraction of time a typical member of that MOS is expected to be
// available, clamped to [0.1, 1.0].
func Factor(pa simtypes.PersonnelAvailability) float64 {
	committed := pa.AnnualCommitmentDays + pa.QuarterlyCommitmentDays*4 + pa.MonthlyCommitmentDays*12
	f := (daysPerYear - committed) / daysPerYear
	if f < minFactor {
		return minFactor
	}
	if f > maxFactor {
		return maxFactor
	}
	return f
}

// Factors computes the per-MOS availability factor for every
// recognized MOS. A MOS absent from scenario.PersonnelAvailability
// defaults to fully available (1.0).
func Factors(scenario simtypes.Scenario) simtypes.AvailabilityFactors {
	get := func(m simtypes.MOS) float64 {
		pa, ok := scenario.PersonnelAvailability[m]
		if !ok {
			return maxFactor
		}
		return Factor(pa)
	}
	return simtypes.AvailabilityFactors{
		Pilot: get(simtypes.MOSPilot),
		SO:    get(simtypes.MOSSO),
		Intel: get(simtypes.MOSIntel),
	}
}

// Timeline samples the expected-unavailability fraction per MOS once
// per day across the horizon. The figure is constant across the
// horizon (it derives from an annual commitment rate, not a clock),
// but is reported as a timeline since it is surfaced alongside the
// mission/duty timeline in Result.
func Timeline(scenario simtypes.Scenario) []simtypes.AvailabilityPoint {
	factors := Factors(scenario)
	unavailable := map[simtypes.MOS]float64{
		simtypes.MOSPilot: 1 - factors.Pilot,
		simtypes.MOSSO:    1 - factors.SO,
		simtypes.MOSIntel: 1 - factors.Intel,
	}

	var points []simtypes.AvailabilityPoint
	for t := 0.0; t < scenario.HorizonHours; t += 24 {
		points = append(points, simtypes.AvailabilityPoint{
			TimeHours:   t,
			Unavailable: cloneUnavailable(unavailable),
		})
	}
	if len(points) == 0 {
		points = append(points, simtypes.AvailabilityPoint{TimeHours: 0, Unavailable: cloneUnavailable(unavailable)})
	}
	return points
}

func cloneUnavailable(src map[simtypes.MOS]float64) map[simtypes.MOS]float64 {
	dst := make(map[simtypes.MOS]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
