// Copyright 2025 James Ross
package squadronsim

import (
	"context"
	"testing"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/stretchr/testify/require"
)

func testStateSnapshot() StateSnapshot {
	return simtypes.StateSnapshot{
		Units: simtypes.Table{Rows: []map[string]interface{}{
			{"unit": "alpha"},
		}},
		Aircraft: simtypes.Table{Rows: []map[string]interface{}{
			{"unit": "alpha", "status": "FMC"},
			{"unit": "alpha", "status": "FMC"},
		}},
		Payload: simtypes.Table{Rows: []map[string]interface{}{
			{"unit": "alpha", "type": "skytower", "count": 6.0},
		}},
		Staffing: simtypes.Table{Rows: []map[string]interface{}{
			{"unit": "alpha", "mos": "pilot", "count": 3.0},
			{"unit": "alpha", "mos": "so", "count": 3.0},
		}},
	}
}

func testScenario() Scenario {
	every := 8.0
	return simtypes.Scenario{
		HorizonHours: 24,
		MissionTypes: map[string]simtypes.MissionTypeSpec{
			"isr": {
				RequiredAircrew: simtypes.RequiredAircrew{Pilot: 1, SO: 1},
				RequiredPayload: map[string]int{"skytower": 2},
				FlightTime:      simtypes.Distribution{Kind: simtypes.DistDeterministic, ValueHours: 2},
			},
		},
		Demand: []simtypes.DemandSpec{{MissionType: "isr", EveryHours: &every}},
		ProcessTimes: simtypes.ProcessTimes{
			Preflight:  simtypes.Distribution{Kind: simtypes.DistDeterministic, ValueHours: 0.5},
			Postflight: simtypes.Distribution{Kind: simtypes.DistDeterministic, ValueHours: 0.5},
			Turnaround: simtypes.Distribution{Kind: simtypes.DistDeterministic, ValueHours: 0.5},
		},
		HoldCrewDuringProcess: true,
		PersonnelAvailability: map[simtypes.MOS]simtypes.PersonnelAvailability{
			simtypes.MOSPilot: {WorkSchedule: simtypes.WorkSchedule{DaysOn: 7, DaysOff: 0}},
			simtypes.MOSSO:    {WorkSchedule: simtypes.WorkSchedule{DaysOn: 7, DaysOff: 0}},
		},
	}
}

func TestRunSimulationReturnsResult(t *testing.T) {
	result, err := RunSimulation(context.Background(), testScenario(), testStateSnapshot(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, 3, result.Missions.Requested)
}

func TestRunSimulationHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunSimulation(ctx, testScenario(), testStateSnapshot(), nil, nil)
	require.Error(t, err)
}

func TestRunMonteCarloAggregatesAcrossIterations(t *testing.T) {
	opts := MonteCarloOptions{
		State:         testStateSnapshot(),
		Iterations:    5,
		MaxConcurrent: 2,
	}
	agg, err := RunMonteCarlo(context.Background(), testScenario(), opts)
	require.NoError(t, err)
	require.Equal(t, 5, agg.RequestedIterations)
	require.Equal(t, 5, agg.CompletedIterations)
}

func TestRunMonteCarloAppliesOverrides(t *testing.T) {
	boosted := 4
	overrides := &Overrides{Units: map[string]simtypes.UnitOverride{"alpha": {Aircraft: &boosted}}}
	opts := MonteCarloOptions{
		State:         testStateSnapshot(),
		Overrides:     overrides,
		Iterations:    3,
		MaxConcurrent: 3,
	}
	agg, err := RunMonteCarlo(context.Background(), testScenario(), opts)
	require.NoError(t, err)
	require.Equal(t, 0.0, agg.Missions.Rejected.Mean)
}
