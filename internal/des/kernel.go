// Package des implements the discrete-event kernel described in spec
// §4.5: a single-threaded event loop that dispatches mission and duty
// demand against per-unit equipment pools and crew queues, recording a
// timeline plus aggregate counters. Grounded on the teacher's
// automatic-capacity-planning simulator (internal/automatic-capacity-planning/simulator.go)
// for the event-loop/dispatch-table shape, generalized from traffic
// admission to mission/duty resource allocation.
package des

import (
	"math/rand"
	"sort"

	"github.com/flyingrobots/squadron-sim/internal/availability"
	"github.com/flyingrobots/squadron-sim/internal/crew"
	"github.com/flyingrobots/squadron-sim/internal/demand"
	"github.com/flyingrobots/squadron-sim/internal/equipment"
	"github.com/flyingrobots/squadron-sim/internal/simtypes"
)

// interval is a half-open [start, end) span of an accepted mission's
// operational window (preflight start through postflight end,
// excluding turnaround), kept per unit for ODO alignment.
type interval struct {
	start, end float64
}

// unitState bundles one unit's resource pools, crew queues and
// accepted-mission log.
type unitState struct {
	aircraft *equipment.Pool
	payload  map[string]*equipment.Pool
	crew     map[simtypes.MOS]*crew.Queue
	accepted []interval
}

func (u *unitState) recordAccepted(start, end float64) {
	u.accepted = append(u.accepted, interval{start: start, end: end})
}

// mergedAccepted returns u.accepted collapsed into non-overlapping,
// ascending-start intervals. Accepted intervals are appended in
// dispatch order (ascending start) so a single linear merge pass
// suffices.
func (u *unitState) mergedAccepted() []interval {
	if len(u.accepted) == 0 {
		return nil
	}
	merged := []interval{u.accepted[0]}
	for _, iv := range u.accepted[1:] {
		last := &merged[len(merged)-1]
		if iv.start > last.end {
			merged = append(merged, iv)
		} else if iv.end > last.end {
			last.end = iv.end
		}
	}
	return merged
}

// actualCoverage sums the overlap between u's merged accepted-mission
// intervals and [windowStart, windowEnd). ok is false when there is no
// overlap at all (spec §4.5b.1: drop the ODO event).
func (u *unitState) actualCoverage(windowStart, windowEnd float64) (float64, bool) {
	var total float64
	for _, iv := range u.mergedAccepted() {
		lo := max(iv.start, windowStart)
		hi := min(iv.end, windowEnd)
		if hi > lo {
			total += hi - lo
		}
	}
	return total, total > 0
}

// Kernel runs one DES trajectory.
type Kernel struct {
	scenario simtypes.Scenario
	derived  simtypes.DerivedResources
	rng      *rand.Rand

	units map[string]*unitState

	missions   simtypes.MissionCounters
	rejections simtypes.RejectionCounters
	duties     simtypes.DutyCounters
	byType     map[string]simtypes.MissionTypeCounters
	timeline   []simtypes.TimelineEvent

	dutyCycleIndex map[simtypes.DutyType]int
}

// New constructs a kernel over a scenario and its derived resources.
// rng drives all stochastic sampling for this run, including demand
// generation and random crew-distribution ordering.
func New(scenario simtypes.Scenario, derived simtypes.DerivedResources, rng *rand.Rand) *Kernel {
	k := &Kernel{
		scenario:       scenario,
		derived:        derived,
		rng:            rng,
		units:          make(map[string]*unitState, len(derived.Units)),
		byType:         make(map[string]simtypes.MissionTypeCounters, len(scenario.MissionTypes)),
		dutyCycleIndex: make(map[simtypes.DutyType]int, 3),
	}
	payloadTypes := collectPayloadTypes(scenario, derived)
	for _, unit := range derived.Units {
		us := &unitState{
			aircraft: equipment.NewPool(derived.AircraftByUnit[unit]),
			payload:  make(map[string]*equipment.Pool, len(payloadTypes)),
			crew:     make(map[simtypes.MOS]*crew.Queue, len(simtypes.AllMOS)),
		}
		for _, pt := range payloadTypes {
			us.payload[pt] = equipment.NewPool(derived.PayloadByUnit[unit][pt])
		}
		for _, mos := range simtypes.AllMOS {
			pa := scenario.PersonnelAvailability[mos]
			us.crew[mos] = crew.NewQueue(derived.StaffingByUnit[unit][mos], pa.WorkSchedule, pa.DailyCrewRestHours, 0)
		}
		k.units[unit] = us
	}
	for name := range scenario.MissionTypes {
		k.byType[name] = simtypes.MissionTypeCounters{}
	}
	return k
}

func collectPayloadTypes(scenario simtypes.Scenario, derived simtypes.DerivedResources) []string {
	seen := map[string]bool{}
	var types []string
	for _, mt := range scenario.MissionTypes {
		for pt := range mt.RequiredPayload {
			if !seen[pt] {
				seen[pt] = true
				types = append(types, pt)
			}
		}
	}
	for _, byType := range derived.PayloadByUnit {
		for pt := range byType {
			if !seen[pt] {
				seen[pt] = true
				types = append(types, pt)
			}
		}
	}
	sort.Strings(types)
	return types
}

// Run executes the full trajectory and returns the per-run result.
func (k *Kernel) Run() (simtypes.Result, error) {
	if k.scenario.HorizonHours < 0 {
		return simtypes.Result{}, simtypes.NewSimError(simtypes.InvalidScenario, "horizon_hours must be >= 0", nil)
	}

	missionEvents, err := demand.GenerateMissionEvents(k.scenario, k.derived.Units, k.rng)
	if err != nil {
		return simtypes.Result{}, err
	}
	dutyEvents := demand.GenerateDutyEvents(k.scenario, k.derived.Units)
	events := demand.Merge(missionEvents, dutyEvents)

	for i, evt := range events {
		switch evt.Kind {
		case demand.KindMission:
			if err := k.dispatchMission(evt, events[i+1:]); err != nil {
				return simtypes.Result{}, err
			}
		case demand.KindDuty:
			k.dispatchDuty(evt)
		}
	}

	return k.buildResult(), nil
}

func (k *Kernel) buildResult() simtypes.Result {
	utilization := make(map[string]simtypes.UnitUtilization, len(k.units))
	factors := availability.Factors(k.scenario)
	for unit, us := range k.units {
		initial := k.derived.StaffingByUnit[unit]
		effective := make(map[simtypes.MOS]int, len(initial))
		for mos, count := range initial {
			f := mosFactor(factors, mos)
			effective[mos] = int(float64(count)*f + 0.5)
		}
		utilization[unit] = simtypes.UnitUtilization{
			Aircraft:            us.aircraft.Utilization(),
			Pilot:               us.crew[simtypes.MOSPilot].Utilization(),
			SO:                  us.crew[simtypes.MOSSO].Utilization(),
			Intel:               us.crew[simtypes.MOSIntel].Utilization(),
			AvailabilityFactors: factors,
			InitialCrew:         initial,
			EffectiveCrew:       effective,
			PeakConcurrent:      us.aircraft.PeakConcurrent(),
		}
	}

	return simtypes.Result{
		Horizon:              k.scenario.HorizonHours,
		Missions:             k.missions,
		Rejections:           k.rejections,
		Duties:               k.duties,
		Utilization:          utilization,
		ByType:               k.byType,
		Timeline:             k.timeline,
		AvailabilityTimeline: availability.Timeline(k.scenario),
		InitialResources:     k.derived,
	}
}

func mosFactor(f simtypes.AvailabilityFactors, mos simtypes.MOS) float64 {
	switch mos {
	case simtypes.MOSPilot:
		return f.Pilot
	case simtypes.MOSSO:
		return f.SO
	case simtypes.MOSIntel:
		return f.Intel
	default:
		return 1
	}
}
