// Package distributions implements the sampleable shapes in spec §4.1:
// deterministic, exponential, triangular and lognormal draws for
// process and flight times, plus the Gamma/Beta helpers the Monte
// Carlo driver's PERT projection (§4.6) builds on. Grounded on the
// teacher's math/rand-based traffic sampling
// (automatic-capacity-planning/simulator.go, policy-simulator's
// poissonSample) — generalized from a single exponential-arrival model
// to the full distribution family the scenario format exposes.
package distributions

import (
	"math"
	"math/rand"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
)

// Sample draws one value in hours from the given distribution using
// rng. Fails with InvalidParameter when the distribution's parameters
// are out of domain (spec §4.1).
func Sample(rng *rand.Rand, d simtypes.Distribution) (float64, error) {
	switch d.Kind {
	case simtypes.DistDeterministic:
		return d.ValueHours, nil

	case simtypes.DistExponential:
		if d.RatePerHour <= 0 {
			return 0, invalidParam("exponential rate_per_hour must be > 0")
		}
		u := rng.Float64()
		return -math.Log(1-u) / d.RatePerHour, nil

	case simtypes.DistTriangular:
		return triangular(rng, d.A, d.M, d.B)

	case simtypes.DistLognormal:
		if d.Sigma <= 0 {
			return 0, invalidParam("lognormal sigma must be > 0")
		}
		z := rng.NormFloat64()
		return math.Exp(d.Mu + d.Sigma*z), nil

	default:
		return 0, invalidParam("unknown distribution kind: " + string(d.Kind))
	}
}

func triangular(rng *rand.Rand, a, m, b float64) (float64, error) {
	if b <= a {
		return 0, invalidParam("triangular b must be > a")
	}
	if m < a || m > b {
		return 0, invalidParam("triangular m must lie within [a, b]")
	}
	u := rng.Float64()
	c := (m - a) / (b - a)
	if u < c {
		return a + math.Sqrt(u*(b-a)*(m-a)), nil
	}
	return b - math.Sqrt((1-u)*(b-a)*(b-m)), nil
}

// Gamma draws from Gamma(alpha, beta) via Marsaglia-Tsang for alpha>=1,
// falling back to the Gamma(alpha+1,beta)*U^(1/alpha) boost trick for
// alpha<1 (spec §4.1).
func Gamma(rng *rand.Rand, alpha, beta float64) (float64, error) {
	if alpha <= 0 || beta <= 0 {
		return 0, invalidParam("gamma alpha and beta must be > 0")
	}
	if alpha < 1 {
		g, err := gammaMarsagliaTsang(rng, alpha+1, beta)
		if err != nil {
			return 0, err
		}
		u := rng.Float64()
		return g * math.Pow(u, 1/alpha), nil
	}
	return gammaMarsagliaTsang(rng, alpha, beta)
}

func gammaMarsagliaTsang(rng *rand.Rand, alpha, beta float64) (float64, error) {
	d := alpha - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v / beta, nil
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v / beta, nil
		}
	}
}

// Beta draws from Beta(alpha, beta) as X/(X+Y) with X~Gamma(alpha,1),
// Y~Gamma(beta,1) (spec §4.1).
func Beta(rng *rand.Rand, alpha, beta float64) (float64, error) {
	if alpha <= 0 || beta <= 0 {
		return 0, invalidParam("beta alpha and beta must be > 0")
	}
	x, err := Gamma(rng, alpha, 1)
	if err != nil {
		return 0, err
	}
	y, err := Gamma(rng, beta, 1)
	if err != nil {
		return 0, err
	}
	return x / (x + y), nil
}

func invalidParam(msg string) error {
	return simtypes.NewSimError(simtypes.InvalidParameter, msg, nil)
}
