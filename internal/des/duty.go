package des

import (
	"github.com/flyingrobots/squadron-sim/internal/crew"
	"github.com/flyingrobots/squadron-sim/internal/demand"
	"github.com/flyingrobots/squadron-sim/internal/simtypes"
)

// dispatchDuty implements spec §4.5b. ODO events are contingent on the
// unit's accepted-mission log; all others are unconditional.
func (k *Kernel) dispatchDuty(evt demand.Event) {
	us := k.units[evt.Unit]
	if us == nil {
		return
	}
	spec := k.dutySpec(evt.DutyType)

	duration := spec.HoursPerShift
	if evt.DutyType == simtypes.DutyODO {
		coverage, ok := us.actualCoverage(evt.Time, evt.Time+spec.HoursPerShift)
		if !ok {
			return // dropped: contributes nothing, not even to duties.requested
		}
		duration = coverage
	}

	k.duties.Requested++

	order := k.rotatedEligibleMOS(evt.DutyType, spec.EligibleMOS)
	opts := crew.ShiftOptions{
		IsDuty:            true,
		IsContinuousDuty:  evt.DutyType == simtypes.DutyODO,
		IgnoreSchedule:    !spec.RespectWorkSchedule,
		DutyRecoveryHours: spec.DutyRecoveryHours,
		Distribution:      simtypes.DistConcentrate,
	}

	var assigned []simtypes.CrewAssignment
	var chosenMOS simtypes.MOS
	for _, mos := range order {
		if assigns, ok := us.crew[mos].TryAcquireShifts(evt.Time, []float64{duration}, 1, opts); ok {
			assigned = assigns
			chosenMOS = mos
			break
		}
	}

	if assigned != nil {
		k.duties.Filled++
		k.timeline = append(k.timeline, simtypes.TimelineEvent{
			Kind:     simtypes.EventDuty,
			Time:     evt.Time,
			Unit:     evt.Unit,
			DutyType: evt.DutyType,
			DutyCrew: assigned,
			MOS:      chosenMOS,
		})
		return
	}

	k.duties.Unfilled++
	k.timeline = append(k.timeline, simtypes.TimelineEvent{
		Kind:     simtypes.EventUnfilledDuty,
		Time:     evt.Time,
		Unit:     evt.Unit,
		DutyType: evt.DutyType,
	})
}

// rotatedEligibleMOS advances the per-duty-type fair-cycling index and
// returns the eligible MOS list starting from the chosen one (spec
// §4.5b step 2).
func (k *Kernel) rotatedEligibleMOS(dutyType simtypes.DutyType, eligible []simtypes.MOS) []simtypes.MOS {
	if len(eligible) == 0 {
		return nil
	}
	idx := k.dutyCycleIndex[dutyType] % len(eligible)
	k.dutyCycleIndex[dutyType] = (idx + 1) % len(eligible)

	order := make([]simtypes.MOS, 0, len(eligible))
	order = append(order, eligible[idx:]...)
	order = append(order, eligible[:idx]...)
	return order
}
