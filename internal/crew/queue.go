package crew

import (
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
)

// ShiftOptions carries the per-call parameters to TryAcquireShifts that
// don't vary with the shift list itself (spec §4.3).
type ShiftOptions struct {
	IsDuty            bool
	IsContinuousDuty  bool // true for ODO: exempt from the 720h duty-counter reset
	ForceSequential   bool
	IgnoreSchedule    bool
	DutyRecoveryHours float64
	Distribution      simtypes.CrewDistribution
	RNG               *rand.Rand // required only when Distribution == DistRandom
}

// Queue is a pool of crew for one unit/MOS pair: a fixed roster with
// work-schedule cycling, shift assignment, and fair duty rotation.
// Grounded on the teacher's worker-pool slot bookkeeping
// (internal/worker/worker.go) generalized from "N goroutines pulling
// jobs" to "N crew members pulling shifts", and on
// automatic-capacity-planning/queueing.go for the candidate-ordering /
// fairness-counter shape.
type Queue struct {
	members      []*Member
	schedule     simtypes.WorkSchedule
	crewRest     float64
	dutyRotPool  int // 0 means unrestricted

	dutyCount     map[int]int
	dutyResetAt   float64

	busyTime    float64
	allocations int
	denials     int
	usedIDs     map[int]bool
}

// NewQueue builds a roster of `total` members assigned to shifts per
// schedule.SplitEnabled/SplitPercent. dutyRotationPoolSize restricts
// rotating-duty candidates to the first N members by ID; 0 means no
// restriction.
func NewQueue(total int, schedule simtypes.WorkSchedule, crewRestHours float64, dutyRotationPoolSize int) *Queue {
	q := &Queue{
		schedule:    schedule,
		crewRest:    crewRestHours,
		dutyRotPool: dutyRotationPoolSize,
		dutyCount:   make(map[int]int, total),
		usedIDs:     make(map[int]bool, total),
	}
	shift1Count := total
	if schedule.SplitEnabled {
		shift1Count = int(math.Round(float64(total) * schedule.SplitPercent / 100))
	}
	for i := 0; i < total; i++ {
		shift := 1
		if schedule.SplitEnabled && i >= shift1Count {
			shift = 2
		}
		q.members = append(q.members, &Member{ID: i, Shift: shift})
	}
	return q
}

// Total reports the roster size.
func (q *Queue) Total() int { return len(q.members) }

// Denials reports the cumulative count of acquisition attempts that
// failed to find enough available members.
func (q *Queue) Denials() int { return q.denials }

// Allocations reports the cumulative count of members successfully
// assigned across all calls.
func (q *Queue) Allocations() int { return q.allocations }

// Utilization is the fraction of the roster ever assigned at least
// once.
func (q *Queue) Utilization() float64 {
	if len(q.members) == 0 {
		return 0
	}
	return float64(len(q.usedIDs)) / float64(len(q.members))
}

// Efficiency is busy-time divided by roster size times the horizon.
func (q *Queue) Efficiency(horizon float64) float64 {
	if len(q.members) == 0 || horizon <= 0 {
		return 0
	}
	return q.busyTime / (float64(len(q.members)) * horizon)
}

func (q *Queue) isDaysOn(idx int, t float64) bool {
	cycle := float64(q.schedule.DaysOn+q.schedule.DaysOff) * 24
	if cycle <= 0 {
		return true
	}
	phase := math.Mod(t-q.schedule.StaggerDays*float64(idx)*24-q.schedule.DailyStartHour, cycle)
	if phase < 0 {
		phase += cycle
	}
	return phase < float64(q.schedule.DaysOn)*24
}

func (q *Queue) isWorkingHours(t float64, shift int) bool {
	working := 24 - q.crewRest
	if working <= 0 {
		return false
	}
	start := q.schedule.DailyStartHour
	if shift == 2 {
		start = math.Mod(start+12, 24)
	}
	hour := math.Mod(t, 24)
	if hour < 0 {
		hour += 24
	}
	delta := math.Mod(hour-start, 24)
	if delta < 0 {
		delta += 24
	}
	return delta < working
}

func (q *Queue) isAvailable(idx int, t float64, ignoreSchedule bool) bool {
	m := q.members[idx]
	if m.AvailableAt > t {
		return false
	}
	if ignoreSchedule {
		return true
	}
	return q.isDaysOn(idx, t) && q.isWorkingHours(t, m.Shift)
}

// rotationPool returns the index set eligible for a rotating-duty
// (SDO/SDNCO) draw, honoring dutyRotPool if set.
func (q *Queue) rotationPool(rotatingDuty bool) []int {
	n := len(q.members)
	if rotatingDuty && q.dutyRotPool > 0 && q.dutyRotPool < n {
		n = q.dutyRotPool
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	return pool
}

func allEqual(xs []float64) bool {
	if len(xs) == 0 {
		return true
	}
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// sortedCandidates returns pool indices available at t and not already
// used in this mission, ordered per opts.
func (q *Queue) sortedCandidates(pool []int, t float64, opts ShiftOptions, usedInMission map[int]bool) []int {
	var cands []int
	for _, idx := range pool {
		id := q.members[idx].ID
		if usedInMission[id] {
			continue
		}
		if !q.isAvailable(idx, t, opts.IgnoreSchedule) {
			continue
		}
		cands = append(cands, idx)
	}

	rotatingDuty := opts.IsDuty && !opts.IsContinuousDuty

	switch {
	case rotatingDuty:
		sort.SliceStable(cands, func(i, j int) bool {
			a, b := q.members[cands[i]], q.members[cands[j]]
			ac, bc := q.dutyCount[a.ID], q.dutyCount[b.ID]
			if ac != bc {
				return ac < bc
			}
			if a.AvailableAt != b.AvailableAt {
				return a.AvailableAt < b.AvailableAt
			}
			return a.ID < b.ID
		})
	case opts.Distribution == simtypes.DistRotate:
		sort.SliceStable(cands, func(i, j int) bool {
			a, b := q.members[cands[i]], q.members[cands[j]]
			if a.MissionCount != b.MissionCount {
				return a.MissionCount < b.MissionCount
			}
			if a.AvailableAt != b.AvailableAt {
				return a.AvailableAt < b.AvailableAt
			}
			return a.ID < b.ID
		})
	case opts.Distribution == simtypes.DistRandom:
		rng := opts.RNG
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })
	default: // concentrate
		sort.SliceStable(cands, func(i, j int) bool {
			a, b := q.members[cands[i]], q.members[cands[j]]
			if a.MissionCount != b.MissionCount {
				return a.MissionCount > b.MissionCount
			}
			if a.AvailableAt != b.AvailableAt {
				return a.AvailableAt > b.AvailableAt
			}
			return a.ID < b.ID
		})
	}
	return cands
}

// AvailableCount reports how many members are available at t without
// committing any assignment — used by the kernel's pre-dispatch
// availability check (spec §4.5a step 4).
func (q *Queue) AvailableCount(t float64, ignoreSchedule bool) int {
	n := 0
	for idx := range q.members {
		if q.isAvailable(idx, t, ignoreSchedule) {
			n++
		}
	}
	return n
}

// TryAcquireShifts assigns requiredCount crew per shift across the
// given shift durations. Layout is concurrent (every shift shares the
// window [t, t+shifts[0])) when shifts are all equal length and
// !opts.ForceSequential; otherwise shifts are sequential hand-offs,
// re-evaluating availability and excluding members already used in
// this call at each boundary. Returns (nil, false) without mutating
// state if any shift cannot be filled.
func (q *Queue) TryAcquireShifts(t float64, shifts []float64, requiredCount int, opts ShiftOptions) ([]simtypes.CrewAssignment, bool) {
	if len(shifts) == 0 || requiredCount <= 0 {
		return nil, true
	}

	if opts.IsDuty && !opts.IsContinuousDuty && t-q.dutyResetAt >= 720 {
		q.dutyCount = make(map[int]int, len(q.members))
		q.dutyResetAt = t
	}

	pool := q.rotationPool(opts.IsDuty && !opts.IsContinuousDuty)
	concurrent := !opts.ForceSequential && allEqual(shifts)

	type planned struct {
		idx      int
		start    float64
		dur      float64
	}
	usedInMission := make(map[int]bool)
	var plan []planned

	if concurrent {
		dur := shifts[0]
		for range shifts {
			cands := q.sortedCandidates(pool, t, opts, usedInMission)
			if len(cands) < requiredCount {
				q.denials++
				return nil, false
			}
			for _, idx := range cands[:requiredCount] {
				plan = append(plan, planned{idx: idx, start: t, dur: dur})
				usedInMission[q.members[idx].ID] = true
			}
		}
	} else {
		segStart := t
		for _, dur := range shifts {
			cands := q.sortedCandidates(pool, segStart, opts, usedInMission)
			if len(cands) < requiredCount {
				q.denials++
				return nil, false
			}
			for _, idx := range cands[:requiredCount] {
				plan = append(plan, planned{idx: idx, start: segStart, dur: dur})
				usedInMission[q.members[idx].ID] = true
			}
			segStart += dur
		}
	}

	assignments := make([]simtypes.CrewAssignment, 0, len(plan))
	for _, p := range plan {
		m := q.members[p.idx]
		end := p.start + p.dur
		recovery := 0.0
		if opts.IsDuty {
			recovery = opts.DutyRecoveryHours
		}
		m.AvailableAt = end + recovery
		if opts.IsDuty {
			if !opts.IsContinuousDuty {
				q.dutyCount[m.ID]++
			}
		} else {
			m.MissionCount++
		}
		q.busyTime += p.dur + recovery
		q.usedIDs[m.ID] = true
		q.allocations++
		assignments = append(assignments, simtypes.CrewAssignment{
			ID:    strconv.Itoa(m.ID),
			Start: p.start,
			End:   end,
			Shift: m.Shift,
		})
	}
	return assignments, true
}

// Undo reverses a successful TryAcquireShifts call, for the guarded
// post-check rollback path in mission allocation (spec §4.5a step 6)
// where a later resource in the same sequence fails. Safe only when
// called immediately after the matching acquire, before any other
// call touches this queue — true within the kernel's single-threaded
// per-mission allocation sequence.
func (q *Queue) Undo(assignments []simtypes.CrewAssignment, wasDuty, wasContinuousDuty bool) {
	for _, a := range assignments {
		var m *Member
		for _, cand := range q.members {
			if strconv.Itoa(cand.ID) == a.ID {
				m = cand
				break
			}
		}
		if m == nil {
			continue
		}
		m.AvailableAt = a.Start
		delete(q.usedIDs, m.ID)
		q.allocations--
		q.busyTime -= a.End - a.Start
		if wasDuty {
			if !wasContinuousDuty {
				q.dutyCount[m.ID]--
			}
		} else {
			m.MissionCount--
		}
	}
}
