// Copyright 2025 James Ross
package availability

import (
	"testing"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/stretchr/testify/require"
)

func TestFactorClampsToFloor(t *testing.T) {
	f := Factor(simtypes.PersonnelAvailability{AnnualCommitmentDays: 400})
	require.Equal(t, minFactor, f)
}

func TestFactorClampsToCeiling(t *testing.T) {
	f := Factor(simtypes.PersonnelAvailability{AnnualCommitmentDays: -10})
	require.Equal(t, maxFactor, f)
}

func TestFactorCombinesCommitmentPeriods(t *testing.T) {
	f := Factor(simtypes.PersonnelAvailability{QuarterlyCommitmentDays: 10, MonthlyCommitmentDays: 2})
	want := (365.0 - (10*4 + 2*12)) / 365.0
	require.InDelta(t, want, f, 1e-9)
}

func TestFactorsDefaultsToFullyAvailable(t *testing.T) {
	factors := Factors(simtypes.Scenario{})
	require.Equal(t, 1.0, factors.Pilot)
	require.Equal(t, 1.0, factors.SO)
	require.Equal(t, 1.0, factors.Intel)
}

func TestTimelineSamplesDaily(t *testing.T) {
	s := simtypes.Scenario{HorizonHours: 72}
	points := Timeline(s)
	require.Len(t, points, 3)
	require.Equal(t, 0.0, points[0].TimeHours)
	require.Equal(t, 24.0, points[1].TimeHours)
	require.Equal(t, 48.0, points[2].TimeHours)
}

func TestTimelineHandlesZeroHorizon(t *testing.T) {
	points := Timeline(simtypes.Scenario{HorizonHours: 0})
	require.Len(t, points, 1)
}
