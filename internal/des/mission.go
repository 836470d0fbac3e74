package des

import (
	"sort"

	"github.com/flyingrobots/squadron-sim/internal/demand"
	"github.com/flyingrobots/squadron-sim/internal/distributions"
	"github.com/flyingrobots/squadron-sim/internal/simtypes"
)

// dispatchMission implements spec §4.5a. future is the slice of
// not-yet-dispatched events immediately after this one, used only for
// the duty lookahead scan.
func (k *Kernel) dispatchMission(evt demand.Event, future []demand.Event) error {
	k.missions.Requested++
	bt := k.byType[evt.MissionType]
	bt.Requested++
	k.byType[evt.MissionType] = bt

	mt, ok := k.scenario.MissionTypes[evt.MissionType]
	if !ok {
		return simtypes.NewSimError(simtypes.InvalidScenario, "mission event references unknown mission_type: "+evt.MissionType, nil)
	}
	us := k.units[evt.Unit]
	if us == nil {
		return simtypes.NewSimError(simtypes.InvalidState, "mission event references unknown unit: "+evt.Unit, nil)
	}

	preflight, err := distributions.Sample(k.rng, k.scenario.ProcessTimes.Preflight)
	if err != nil {
		return err
	}
	postflight, err := distributions.Sample(k.rng, k.scenario.ProcessTimes.Postflight)
	if err != nil {
		return err
	}
	turnaround, err := distributions.Sample(k.rng, k.scenario.ProcessTimes.Turnaround)
	if err != nil {
		return err
	}
	flight, err := distributions.Sample(k.rng, mt.FlightTime)
	if err != nil {
		return err
	}
	var transitIn, transitOut float64
	if mt.TransitIn != nil {
		if transitIn, err = distributions.Sample(k.rng, *mt.TransitIn); err != nil {
			return err
		}
	}
	if mt.TransitOut != nil {
		if transitOut, err = distributions.Sample(k.rng, *mt.TransitOut); err != nil {
			return err
		}
	}
	var mount float64
	payloadTypes := sortedKeys(mt.RequiredPayload)
	for _, pt := range payloadTypes {
		dist, ok := k.scenario.ProcessTimes.PayloadMountByType[pt]
		if !ok {
			continue
		}
		m, err := distributions.Sample(k.rng, dist)
		if err != nil {
			return err
		}
		mount += m
	}

	missionSpan := preflight + mount + transitIn + flight + transitOut + postflight + turnaround
	var crewHold float64
	var crewStart float64
	if k.scenario.HoldCrewDuringProcess {
		crewHold = missionSpan
		crewStart = evt.Time
	} else {
		crewHold = transitIn + flight + transitOut
		crewStart = evt.Time + preflight + mount
	}

	reserved := k.lookaheadReserve(evt, future)

	if kind, ok := k.checkAvailability(us, evt.Time, mt, reserved); !ok {
		k.recordRejection(evt, kind)
		return nil
	}

	segments, crewAssignments, ok := k.allocateMission(us, evt, mt, payloadTypes, missionSpan, crewHold, crewStart, preflight, mount, transitIn, flight, transitOut, postflight, turnaround)
	if !ok {
		// Post-check allocation failure: guarded per §4.5a step 6, should
		// not occur given the availability check above.
		k.recordRejection(evt, simtypes.RejectAircraft)
		return nil
	}

	operationalEnd := evt.Time + preflight + mount + transitIn + flight + transitOut + postflight
	us.recordAccepted(evt.Time, operationalEnd)

	k.missions.Started++
	bt = k.byType[evt.MissionType]
	bt.Started++
	completed := evt.Time+missionSpan <= k.scenario.HorizonHours
	if completed {
		k.missions.Completed++
		bt.Completed++
	}
	k.byType[evt.MissionType] = bt

	k.timeline = append(k.timeline, simtypes.TimelineEvent{
		Kind:        simtypes.EventMission,
		Time:        evt.Time,
		Unit:        evt.Unit,
		MissionType: evt.MissionType,
		Segments:    segments,
		Crew:        crewAssignments,
	})
	return nil
}

// lookaheadReserve scans the immediately-following events within
// lookahead.hours for non-ODO duty events on the same unit, reserving
// one crew slot per eligible MOS for each (spec §4.5a step 3; §9 open
// question — an eligible duty reserves every MOS it could draw from,
// not a single fractional share).
func (k *Kernel) lookaheadReserve(evt demand.Event, future []demand.Event) map[simtypes.MOS]int {
	reserved := map[simtypes.MOS]int{}
	if !k.scenario.Lookahead.Enabled {
		return reserved
	}
	deadline := evt.Time + k.scenario.Lookahead.Hours
	for _, other := range future {
		if other.Time >= deadline {
			break
		}
		if other.Kind != demand.KindDuty || other.DutyType == simtypes.DutyODO || other.Unit != evt.Unit {
			continue
		}
		for _, mos := range k.dutySpec(other.DutyType).EligibleMOS {
			reserved[mos]++
		}
	}
	return reserved
}

func (k *Kernel) dutySpec(t simtypes.DutyType) simtypes.DutySpec {
	switch t {
	case simtypes.DutyODO:
		return k.scenario.DutyRequirements.ODO
	case simtypes.DutySDO:
		return k.scenario.DutyRequirements.SDO
	default:
		return k.scenario.DutyRequirements.SDNCO
	}
}

// checkAvailability performs the fixed-order check of §4.5a step 4,
// returning the first failing resource kind.
func (k *Kernel) checkAvailability(us *unitState, t float64, mt simtypes.MissionTypeSpec, reserved map[simtypes.MOS]int) (simtypes.RejectionKind, bool) {
	for _, pt := range sortedKeys(mt.RequiredPayload) {
		count := mt.RequiredPayload[pt]
		if us.payload[pt].AvailableAt(t) < count {
			return simtypes.RejectPayload, false
		}
	}
	if us.aircraft.AvailableAt(t) < 1 {
		return simtypes.RejectAircraft, false
	}
	checks := []struct {
		mos      simtypes.MOS
		required int
		kind     simtypes.RejectionKind
	}{
		{simtypes.MOSPilot, mt.RequiredAircrew.Pilot, simtypes.RejectPilot},
		{simtypes.MOSSO, mt.RequiredAircrew.SO, simtypes.RejectSO},
		{simtypes.MOSIntel, mt.RequiredAircrew.Intel, simtypes.RejectIntel},
	}
	for _, c := range checks {
		if c.required <= 0 {
			continue
		}
		available := us.crew[c.mos].AvailableCount(t, false) - reserved[c.mos]
		if available < c.required {
			return c.kind, false
		}
	}
	return simtypes.RejectNone, true
}

func (k *Kernel) recordRejection(evt demand.Event, kind simtypes.RejectionKind) {
	switch kind {
	case simtypes.RejectPayload:
		k.rejections.Payload++
	case simtypes.RejectAircraft:
		k.rejections.Aircraft++
	case simtypes.RejectPilot:
		k.rejections.Pilot++
	case simtypes.RejectSO:
		k.rejections.SO++
	case simtypes.RejectIntel:
		k.rejections.Intel++
	}
	k.missions.Rejected++
	bt := k.byType[evt.MissionType]
	bt.Rejected++
	k.byType[evt.MissionType] = bt
	k.timeline = append(k.timeline, simtypes.TimelineEvent{
		Kind:        simtypes.EventRejection,
		Time:        evt.Time,
		Unit:        evt.Unit,
		MissionType: evt.MissionType,
		Rejection:   kind,
	})
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
