// Package demand generates the mission and duty event streams the DES
// kernel consumes (spec §4.4): deterministic or Poisson mission
// arrivals assigned across units, and a duty event grid for ODO/SDO/
// SDNCO. Grounded on the teacher's patterned-load-generator (cadence
// and Poisson arrival construction) and policy-simulator's
// poissonSample helper, generalized from HTTP request load to mission
// and duty demand.
package demand

import (
	"math"
	"math/rand"
	"sort"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
)

// Kind discriminates the two event streams merged into the kernel's
// input queue.
type Kind string

const (
	KindMission Kind = "mission"
	KindDuty    Kind = "duty"
)

// Event is one demand-generator output: either a mission arrival
// (MissionType/Unit populated) or a duty slot (DutyType populated).
type Event struct {
	Time        float64
	Kind        Kind
	MissionType string
	Unit        string
	DutyType    simtypes.DutyType
}

// GenerateMissionEvents produces the mission-arrival stream for every
// DemandSpec in the scenario, assigning each arrival to a unit per
// scenario.UnitPolicy. units must be non-empty and given in a stable
// order so round-robin assignment is deterministic.
func GenerateMissionEvents(scenario simtypes.Scenario, units []string, rng *rand.Rand) ([]Event, error) {
	if len(units) == 0 {
		return nil, simtypes.NewSimError(simtypes.InvalidScenario, "no units available to assign mission demand to", nil)
	}
	weights, err := splitWeights(scenario.UnitPolicy, units)
	if err != nil {
		return nil, err
	}

	var events []Event
	roundRobin := 0
	for _, spec := range scenario.Demand {
		if _, ok := scenario.MissionTypes[spec.MissionType]; !ok {
			return nil, simtypes.NewSimError(simtypes.InvalidScenario, "demand references unknown mission_type: "+spec.MissionType, nil)
		}
		start := 0.0
		if spec.StartAtHours != nil {
			start = *spec.StartAtHours
		}

		var times []float64
		if spec.IsDeterministic() {
			every := *spec.EveryHours
			if every <= 0 {
				return nil, simtypes.NewSimError(simtypes.InvalidParameter, "demand every_hours must be > 0", nil)
			}
			for t := start; t < scenario.HorizonHours; t += every {
				times = append(times, t)
			}
		} else {
			if spec.RatePerHour == nil || *spec.RatePerHour <= 0 {
				return nil, simtypes.NewSimError(simtypes.InvalidParameter, "demand rate_per_hour must be > 0", nil)
			}
			t := start
			for {
				u := rng.Float64()
				t += -math.Log(1-u) / *spec.RatePerHour
				if t >= scenario.HorizonHours {
					break
				}
				times = append(times, t)
			}
		}

		for _, t := range times {
			var unit string
			if scenario.UnitPolicy.RoundRobin {
				unit = units[roundRobin%len(units)]
				roundRobin++
			} else {
				unit = chooseWeighted(rng, units, weights)
			}
			events = append(events, Event{Time: t, Kind: KindMission, MissionType: spec.MissionType, Unit: unit})
		}
	}
	return events, nil
}

// splitWeights normalizes scenario.UnitPolicy.MissionSplit over units,
// defaulting any unlisted unit to an equal share of the remainder.
func splitWeights(policy simtypes.UnitPolicy, units []string) ([]float64, error) {
	weights := make([]float64, len(units))
	if len(policy.MissionSplit) == 0 {
		for i := range weights {
			weights[i] = 1.0 / float64(len(units))
		}
		return weights, nil
	}
	var assignedTotal float64
	missing := 0
	for i, u := range units {
		if w, ok := policy.MissionSplit[u]; ok {
			if w < 0 {
				return nil, simtypes.NewSimError(simtypes.InvalidScenario, "unit_policy.mission_split values must be >= 0", nil)
			}
			weights[i] = w
			assignedTotal += w
		} else {
			missing++
		}
	}
	if assignedTotal > 1.0+1e-9 {
		return nil, simtypes.NewSimError(simtypes.InvalidScenario, "unit_policy.mission_split values must sum to <= 1", nil)
	}
	if missing > 0 {
		remainder := (1.0 - assignedTotal) / float64(missing)
		for i, u := range units {
			if _, ok := policy.MissionSplit[u]; !ok {
				weights[i] = remainder
			}
		}
	}
	return weights, nil
}

func chooseWeighted(rng *rand.Rand, units []string, weights []float64) string {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return units[rng.Intn(len(units))]
	}
	r := rng.Float64() * total
	var acc float64
	for i, w := range weights {
		acc += w
		if r < acc {
			return units[i]
		}
	}
	return units[len(units)-1]
}

// GenerateDutyEvents produces the duty slot grid for every enabled
// duty type over the horizon, one grid per unit — each unit staffs its
// own duty desk from its own crew queues (§3 defines CrewQueue as
// per-unit, per-MOS).
func GenerateDutyEvents(scenario simtypes.Scenario, units []string) []Event {
	var events []Event
	for _, unit := range units {
		events = append(events, dutyGrid(scenario.DutyRequirements.ODO, simtypes.DutyODO, unit, scenario.HorizonHours)...)
		events = append(events, dutyGrid(scenario.DutyRequirements.SDO, simtypes.DutySDO, unit, scenario.HorizonHours)...)
		events = append(events, dutyGrid(scenario.DutyRequirements.SDNCO, simtypes.DutySDNCO, unit, scenario.HorizonHours)...)
	}
	return events
}

func dutyGrid(spec simtypes.DutySpec, kind simtypes.DutyType, unit string, horizon float64) []Event {
	if !spec.Enabled || spec.ShiftsPerDay <= 0 || spec.HoursPerShift <= 0 {
		return nil
	}
	shiftInterval := 24.0 / float64(spec.ShiftsPerDay)
	var events []Event
	for day := 0; ; day++ {
		dayStart := float64(day) * 24
		if dayStart >= horizon {
			break
		}
		for shift := 0; shift < spec.ShiftsPerDay; shift++ {
			t := dayStart + spec.StartHour + float64(shift)*shiftInterval
			if t >= horizon {
				continue
			}
			events = append(events, Event{Time: t, Kind: KindDuty, DutyType: kind, Unit: unit})
		}
	}
	return events
}

// Merge combines mission and duty events into the kernel's dispatch
// order: sorted by time, with missions dispatched before duties at
// equal time (spec §4.4).
func Merge(missions, duties []Event) []Event {
	all := make([]Event, 0, len(missions)+len(duties))
	all = append(all, missions...)
	all = append(all, duties...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Time != all[j].Time {
			return all[i].Time < all[j].Time
		}
		return all[i].Kind == KindMission && all[j].Kind != KindMission
	})
	return all
}
