// Copyright 2025 James Ross
package crew

import (
	"testing"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/stretchr/testify/require"
)

func alwaysOnSchedule() simtypes.WorkSchedule {
	return simtypes.WorkSchedule{DaysOn: 7, DaysOff: 0, DailyStartHour: 0}
}

func TestTryAcquireShiftsConcurrent(t *testing.T) {
	q := NewQueue(3, alwaysOnSchedule(), 8, 0)
	assigns, ok := q.TryAcquireShifts(0, []float64{4}, 2, ShiftOptions{Distribution: simtypes.DistConcentrate})
	require.True(t, ok)
	require.Len(t, assigns, 2)
	require.Equal(t, 0.0, assigns[0].Start)
	require.Equal(t, 4.0, assigns[0].End)
}

func TestTryAcquireShiftsDeniedInsufficientCrew(t *testing.T) {
	q := NewQueue(1, alwaysOnSchedule(), 8, 0)
	_, ok := q.TryAcquireShifts(0, []float64{4}, 2, ShiftOptions{Distribution: simtypes.DistConcentrate})
	require.False(t, ok)
	require.Equal(t, 1, q.Denials())
}

func TestTryAcquireShiftsSequentialExcludesPriorMember(t *testing.T) {
	q := NewQueue(2, alwaysOnSchedule(), 8, 0)
	assigns, ok := q.TryAcquireShifts(0, []float64{4, 4}, 1, ShiftOptions{Distribution: simtypes.DistConcentrate, ForceSequential: true})
	require.True(t, ok)
	require.Len(t, assigns, 2)
	require.NotEqual(t, assigns[0].ID, assigns[1].ID)
	require.Equal(t, 0.0, assigns[0].Start)
	require.Equal(t, 4.0, assigns[1].Start)
}

func TestDutyRotationFairness(t *testing.T) {
	q := NewQueue(2, alwaysOnSchedule(), 8, 0)
	opts := ShiftOptions{IsDuty: true, DutyRecoveryHours: 0}
	a1, ok := q.TryAcquireShifts(0, []float64{8}, 1, opts)
	require.True(t, ok)
	a2, ok := q.TryAcquireShifts(8, []float64{8}, 1, opts)
	require.True(t, ok)
	require.NotEqual(t, a1[0].ID, a2[0].ID)
}

func TestContinuousDutyDoesNotIncrementDutyCount(t *testing.T) {
	q := NewQueue(1, alwaysOnSchedule(), 0, 0)
	opts := ShiftOptions{IsDuty: true, IsContinuousDuty: true}
	_, ok := q.TryAcquireShifts(0, []float64{8}, 1, opts)
	require.True(t, ok)
	require.Equal(t, 0, q.dutyCount[0])
}

func TestRotationPoolSizeRestrictsCandidates(t *testing.T) {
	q := NewQueue(5, alwaysOnSchedule(), 8, 2)
	opts := ShiftOptions{IsDuty: true}
	assigns, ok := q.TryAcquireShifts(0, []float64{8}, 2, opts)
	require.True(t, ok)
	for _, a := range assigns {
		require.Contains(t, []string{"0", "1"}, a.ID)
	}
}

func TestUtilizationAndEfficiency(t *testing.T) {
	q := NewQueue(4, alwaysOnSchedule(), 8, 0)
	_, ok := q.TryAcquireShifts(0, []float64{10}, 2, ShiftOptions{Distribution: simtypes.DistConcentrate})
	require.True(t, ok)
	require.Equal(t, 0.5, q.Utilization())
	require.InDelta(t, 20.0/(4*10), q.Efficiency(10), 1e-9)
}
