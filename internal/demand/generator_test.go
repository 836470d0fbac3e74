// Copyright 2025 James Ross
package demand

import (
	"math/rand"
	"testing"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/stretchr/testify/require"
)

func scenarioWithOneMissionType() simtypes.Scenario {
	return simtypes.Scenario{
		HorizonHours: 48,
		MissionTypes: map[string]simtypes.MissionTypeSpec{
			"recon": {},
		},
	}
}

func TestGenerateMissionEventsDeterministicCadence(t *testing.T) {
	s := scenarioWithOneMissionType()
	every := 6.0
	s.Demand = []simtypes.DemandSpec{{MissionType: "recon", EveryHours: &every}}
	rng := rand.New(rand.NewSource(1))
	events, err := GenerateMissionEvents(s, []string{"alpha"}, rng)
	require.NoError(t, err)
	require.Len(t, events, 8)
	for i, e := range events {
		require.Equal(t, float64(i)*6, e.Time)
		require.Equal(t, "alpha", e.Unit)
	}
}

func TestGenerateMissionEventsUnknownType(t *testing.T) {
	s := scenarioWithOneMissionType()
	every := 6.0
	s.Demand = []simtypes.DemandSpec{{MissionType: "nope", EveryHours: &every}}
	rng := rand.New(rand.NewSource(1))
	_, err := GenerateMissionEvents(s, []string{"alpha"}, rng)
	require.Error(t, err)
}

func TestGenerateMissionEventsPoissonRespectsHorizon(t *testing.T) {
	s := scenarioWithOneMissionType()
	rate := 1.0
	s.Demand = []simtypes.DemandSpec{{MissionType: "recon", RatePerHour: &rate}}
	rng := rand.New(rand.NewSource(2))
	events, err := GenerateMissionEvents(s, []string{"alpha"}, rng)
	require.NoError(t, err)
	for _, e := range events {
		require.Less(t, e.Time, s.HorizonHours)
	}
}

func TestGenerateMissionEventsRoundRobin(t *testing.T) {
	s := scenarioWithOneMissionType()
	every := 6.0
	s.Demand = []simtypes.DemandSpec{{MissionType: "recon", EveryHours: &every}}
	s.UnitPolicy.RoundRobin = true
	rng := rand.New(rand.NewSource(1))
	events, err := GenerateMissionEvents(s, []string{"alpha", "bravo"}, rng)
	require.NoError(t, err)
	require.Equal(t, "alpha", events[0].Unit)
	require.Equal(t, "bravo", events[1].Unit)
	require.Equal(t, "alpha", events[2].Unit)
}

func TestGenerateDutyEventsGrid(t *testing.T) {
	s := simtypes.Scenario{HorizonHours: 24}
	s.DutyRequirements.SDO = simtypes.DutySpec{Enabled: true, ShiftsPerDay: 2, HoursPerShift: 12, StartHour: 0}
	events := GenerateDutyEvents(s, []string{"alpha"})
	require.Len(t, events, 2)
	require.Equal(t, 0.0, events[0].Time)
	require.Equal(t, 12.0, events[1].Time)
	require.Equal(t, "alpha", events[0].Unit)
}

func TestMergeOrdersMissionsBeforeDutiesAtEqualTime(t *testing.T) {
	missions := []Event{{Time: 5, Kind: KindMission}}
	duties := []Event{{Time: 5, Kind: KindDuty}, {Time: 1, Kind: KindDuty}}
	merged := Merge(missions, duties)
	require.Len(t, merged, 3)
	require.Equal(t, 1.0, merged[0].Time)
	require.Equal(t, 5.0, merged[1].Time)
	require.Equal(t, KindMission, merged[1].Kind)
	require.Equal(t, KindDuty, merged[2].Kind)
}
