// Copyright 2025 James Ross
package des

import (
	"math/rand"
	"testing"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/stretchr/testify/require"
)

func alwaysOnSchedule() simtypes.WorkSchedule {
	return simtypes.WorkSchedule{DaysOn: 7, DaysOff: 0, DailyStartHour: 0}
}

func isrScenario(aircraftCount int) (simtypes.Scenario, simtypes.DerivedResources) {
	every := 8.0
	scenario := simtypes.Scenario{
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
			simtypes.MOSPilot: {WorkSchedule: alwaysOnSchedule()},
			simtypes.MOSSO:    {WorkSchedule: alwaysOnSchedule()},
			simtypes.MOSIntel: {WorkSchedule: alwaysOnSchedule()},
		},
	}
	derived := simtypes.DerivedResources{
		Units:          []string{"alpha"},
		AircraftByUnit: map[string]int{"alpha": aircraftCount},
		PayloadByUnit:  map[string]map[string]int{"alpha": {"skytower": 6}},
		StaffingByUnit: map[string]map[simtypes.MOS]int{"alpha": {simtypes.MOSPilot: 3, simtypes.MOSSO: 3}},
	}
	return scenario, derived
}

func TestDeterministicISRAllComplete(t *testing.T) {
	scenario, derived := isrScenario(2)
	k := New(scenario, derived, rand.New(rand.NewSource(1)))
	result, err := k.Run()
	require.NoError(t, err)
	require.Equal(t, 3, result.Missions.Requested)
	require.Equal(t, 0, result.Missions.Rejected)
	require.Equal(t, 3, result.Missions.Completed)
}

func TestAircraftOnlyBottleneckRejectsAll(t *testing.T) {
	scenario, derived := isrScenario(0)
	k := New(scenario, derived, rand.New(rand.NewSource(1)))
	result, err := k.Run()
	require.NoError(t, err)
	require.Equal(t, 3, result.Missions.Requested)
	require.Equal(t, 3, result.Missions.Rejected)
	require.Equal(t, 3, result.Rejections.Aircraft)
	require.Equal(t, 0, result.Rejections.Pilot)
	require.Equal(t, 0, result.Rejections.SO)
	require.Equal(t, 0, result.Rejections.Payload)
}

func TestZeroHorizonYieldsEmptyResult(t *testing.T) {
	scenario, derived := isrScenario(2)
	scenario.HorizonHours = 0
	k := New(scenario, derived, rand.New(rand.NewSource(1)))
	result, err := k.Run()
	require.NoError(t, err)
	require.Equal(t, 0, result.Missions.Requested)
	require.Empty(t, result.Timeline)
}

func TestNoDemandYieldsZeroRequestsAndNoRejections(t *testing.T) {
	scenario, derived := isrScenario(2)
	scenario.Demand = nil
	k := New(scenario, derived, rand.New(rand.NewSource(1)))
	result, err := k.Run()
	require.NoError(t, err)
	require.Equal(t, 0, result.Missions.Requested)
	require.Empty(t, result.Timeline)
}

func TestMonotoneResourceIncreaseNeverIncreasesRejections(t *testing.T) {
	low, derivedLow := isrScenario(0)
	high, derivedHigh := isrScenario(2)

	kLow := New(low, derivedLow, rand.New(rand.NewSource(7)))
	resultLow, err := kLow.Run()
	require.NoError(t, err)

	kHigh := New(high, derivedHigh, rand.New(rand.NewSource(7)))
	resultHigh, err := kHigh.Run()
	require.NoError(t, err)

	require.LessOrEqual(t, resultHigh.Missions.Rejected, resultLow.Missions.Rejected)
	require.GreaterOrEqual(t, resultHigh.Missions.Started, resultLow.Missions.Started)
}

func TestPurityClonedScenarioYieldsSameResult(t *testing.T) {
	scenario, derived := isrScenario(2)
	k1 := New(scenario, derived, rand.New(rand.NewSource(3)))
	r1, err := k1.Run()
	require.NoError(t, err)

	cloned := scenario.Clone()
	k2 := New(cloned, derived.Clone(), rand.New(rand.NewSource(3)))
	r2, err := k2.Run()
	require.NoError(t, err)

	require.Equal(t, r1.Missions, r2.Missions)
	require.Equal(t, r1.Rejections, r2.Rejections)
}

func TestMissionSegmentsAreContiguousAndSumToSpan(t *testing.T) {
	scenario, derived := isrScenario(2)
	k := New(scenario, derived, rand.New(rand.NewSource(1)))
	result, err := k.Run()
	require.NoError(t, err)
	require.NotEmpty(t, result.Timeline)
	for _, evt := range result.Timeline {
		if evt.Kind != simtypes.EventMission {
			continue
		}
		require.NotEmpty(t, evt.Segments)
		for i := 1; i < len(evt.Segments); i++ {
			require.Equal(t, evt.Segments[i-1].End, evt.Segments[i].Start)
		}
	}
}

func TestODODroppedWhenNoMissionsAccepted(t *testing.T) {
	scenario, derived := isrScenario(0) // all missions rejected on aircraft
	scenario.DutyRequirements.ODO = simtypes.DutySpec{
		Enabled: true, ShiftsPerDay: 2, HoursPerShift: 12, EligibleMOS: []simtypes.MOS{simtypes.MOSPilot},
	}
	k := New(scenario, derived, rand.New(rand.NewSource(1)))
	result, err := k.Run()
	require.NoError(t, err)
	require.Equal(t, 0, result.Duties.Requested)
}
