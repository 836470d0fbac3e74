package des

import (
	"github.com/flyingrobots/squadron-sim/internal/crew"
	"github.com/flyingrobots/squadron-sim/internal/demand"
	"github.com/flyingrobots/squadron-sim/internal/simtypes"
)

// allocateMission implements spec §4.5a step 6: acquire payload, then
// aircraft, then each required MOS's crew, in that order, rolling back
// everything acquired so far if any later acquisition fails.
func (k *Kernel) allocateMission(
	us *unitState,
	evt demand.Event,
	mt simtypes.MissionTypeSpec,
	payloadTypes []string,
	missionSpan, crewHold, crewStart float64,
	preflight, mount, transitIn, flight, transitOut, postflight, turnaround float64,
) ([]simtypes.Segment, simtypes.MissionCrew, bool) {
	var acquiredPayload []string
	aircraftHeld := false
	type crewAcquired struct {
		mos               simtypes.MOS
		assignments       []simtypes.CrewAssignment
		isDuty            bool
		isContinuousDuty  bool
	}
	var acquiredCrew []crewAcquired

	rollback := func() {
		if aircraftHeld {
			us.aircraft.Release(evt.Time+missionSpan, 1)
		}
		for _, pt := range acquiredPayload {
			us.payload[pt].Release(evt.Time+missionSpan, mt.RequiredPayload[pt])
		}
		for _, ca := range acquiredCrew {
			us.crew[ca.mos].Undo(ca.assignments, ca.isDuty, ca.isContinuousDuty)
		}
	}

	for _, pt := range payloadTypes {
		count := mt.RequiredPayload[pt]
		if !us.payload[pt].TryAcquire(evt.Time, missionSpan, count) {
			rollback()
			return nil, simtypes.MissionCrew{}, false
		}
		acquiredPayload = append(acquiredPayload, pt)
	}

	if !us.aircraft.TryAcquire(evt.Time, missionSpan, 1) {
		rollback()
		return nil, simtypes.MissionCrew{}, false
	}
	aircraftHeld = true

	distribution := mt.CrewDistribution
	if distribution == "" {
		distribution = simtypes.DistConcentrate
	}
	shifts := []float64{crewHold}
	forceSequential := false
	if mt.CrewRotation != nil && mt.CrewRotation.Enabled {
		shifts = mt.CrewRotation.ShiftHours
		forceSequential = mt.CrewRotation.ForceSequential
	}

	crewOut := simtypes.MissionCrew{}
	for _, req := range []struct {
		mos   simtypes.MOS
		count int
	}{
		{simtypes.MOSPilot, mt.RequiredAircrew.Pilot},
		{simtypes.MOSSO, mt.RequiredAircrew.SO},
		{simtypes.MOSIntel, mt.RequiredAircrew.Intel},
	} {
		if req.count <= 0 {
			continue
		}
		opts := crew.ShiftOptions{
			ForceSequential: forceSequential,
			Distribution:    distribution,
			RNG:             k.rng,
		}
		assigns, ok := us.crew[req.mos].TryAcquireShifts(crewStart, shifts, req.count, opts)
		if !ok {
			rollback()
			return nil, simtypes.MissionCrew{}, false
		}
		acquiredCrew = append(acquiredCrew, crewAcquired{mos: req.mos, assignments: assigns})
		switch req.mos {
		case simtypes.MOSPilot:
			crewOut.Pilots = assigns
		case simtypes.MOSSO:
			crewOut.SOs = assigns
		case simtypes.MOSIntel:
			crewOut.Intel = assigns
		}
	}

	segments := buildSegments(evt.Time, preflight, mount, transitIn, flight, transitOut, postflight, turnaround)
	return segments, crewOut, true
}

func buildSegments(start, preflight, mount, transitIn, flight, transitOut, postflight, turnaround float64) []simtypes.Segment {
	segs := []struct {
		name string
		dur  float64
	}{
		{"preflight", preflight},
		{"mount", mount},
		{"transit_in", transitIn},
		{"flight", flight},
		{"transit_out", transitOut},
		{"postflight", postflight},
		{"turnaround", turnaround},
	}
	out := make([]simtypes.Segment, 0, len(segs))
	t := start
	for _, s := range segs {
		out = append(out, simtypes.Segment{Name: s.name, Start: t, End: t + s.dur})
		t += s.dur
	}
	return out
}
