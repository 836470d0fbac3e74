// Copyright 2025 James Ross
package distributions

import (
	"math"
	"math/rand"
	"testing"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/stretchr/testify/require"
)

func TestSampleDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	v, err := Sample(rng, simtypes.Distribution{Kind: simtypes.DistDeterministic, ValueHours: 2.5})
	require.NoError(t, err)
	require.Equal(t, 2.5, v)
}

func TestSampleExponentialMean(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const rate = 2.0
	var sum float64
	const n = 20000
	for i := 0; i < n; i++ {
		v, err := Sample(rng, simtypes.Distribution{Kind: simtypes.DistExponential, RatePerHour: rate})
		require.NoError(t, err)
		sum += v
	}
	mean := sum / n
	require.InDelta(t, 1/rate, mean, 0.05)
}

func TestSampleExponentialInvalid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Sample(rng, simtypes.Distribution{Kind: simtypes.DistExponential, RatePerHour: 0})
	require.Error(t, err)
	var simErr *simtypes.SimError
	require.ErrorAs(t, err, &simErr)
	require.Equal(t, simtypes.InvalidParameter, simErr.Kind)
}

func TestSampleTriangularBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		v, err := Sample(rng, simtypes.Distribution{Kind: simtypes.DistTriangular, A: 1, M: 2, B: 5})
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 1.0)
		require.LessOrEqual(t, v, 5.0)
	}
}

func TestSampleTriangularInvalidBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Sample(rng, simtypes.Distribution{Kind: simtypes.DistTriangular, A: 5, M: 2, B: 1})
	require.Error(t, err)
}

func TestSampleLognormalPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		v, err := Sample(rng, simtypes.Distribution{Kind: simtypes.DistLognormal, Mu: 0, Sigma: 0.5})
		require.NoError(t, err)
		require.Greater(t, v, 0.0)
	}
}

func TestGammaMeanVariance(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const alpha, beta = 3.0, 1.5
	var sum, sumSq float64
	const n = 30000
	for i := 0; i < n; i++ {
		g, err := Gamma(rng, alpha, beta)
		require.NoError(t, err)
		sum += g
		sumSq += g * g
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	require.InDelta(t, alpha/beta, mean, 0.05)
	require.InDelta(t, alpha/(beta*beta), variance, 0.1)
}

func TestBetaRange(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 5000; i++ {
		v, err := Beta(rng, 2, 5)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestGammaInvalidParameter(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Gamma(rng, 0, 1)
	require.Error(t, err)
	_, err = Gamma(rng, 1, -1)
	require.Error(t, err)
}

func TestBetaMeanApproxAnalytic(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	const alpha, beta = 4.0, 6.0
	var sum float64
	const n = 30000
	for i := 0; i < n; i++ {
		v, err := Beta(rng, alpha, beta)
		require.NoError(t, err)
		sum += v
	}
	mean := sum / n
	analytic := alpha / (alpha + beta)
	require.True(t, math.Abs(mean-analytic) < 0.02)
}
