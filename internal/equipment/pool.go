// Package equipment implements the counted resource pool described in
// spec §4.2: a fixed total of interchangeable units, each held until an
// implicit release time. Grounded on the teacher's worker-pool
// bookkeeping style (internal/worker: plain mutex-guarded counters, no
// external store) generalized from "one busy flag per goroutine" to an
// ordered multiset of release times per pool.
package equipment

import "sort"

// Pool is a counted resource with implicit release times — aircraft,
// or a payload type, on one unit. Not safe for concurrent use from
// multiple goroutines; a DES run is single-threaded by design (§5).
type Pool struct {
	total int
	held  []float64 // release times, kept sorted ascending

	busyTime    float64
	allocations int
	denials     int
	usedCount   int
}

// NewPool constructs a pool with the given total count.
func NewPool(total int) *Pool {
	return &Pool{total: total}
}

// prune drops holds that have already released as of t.
func (p *Pool) prune(t float64) {
	i := 0
	for i < len(p.held) && p.held[i] <= t {
		i++
	}
	if i > 0 {
		p.held = p.held[i:]
	}
}

// AvailableAt prunes released holds as of t and returns the count
// still free.
func (p *Pool) AvailableAt(t float64) int {
	p.prune(t)
	return p.total - len(p.held)
}

// TryAcquire attempts to hold count units from t through t+duration.
// On success it records busy time and allocation counters and bumps
// usedCount to the new peak concurrent hold. On failure it records a
// denial and leaves the pool untouched.
func (p *Pool) TryAcquire(t, duration float64, count int) bool {
	if count <= 0 {
		return true
	}
	if p.AvailableAt(t) < count {
		p.denials += count
		return false
	}
	release := t + duration
	for i := 0; i < count; i++ {
		idx := sort.SearchFloat64s(p.held, release)
		p.held = append(p.held, 0)
		copy(p.held[idx+1:], p.held[idx:])
		p.held[idx] = release
	}
	p.busyTime += duration * float64(count)
	p.allocations += count
	if len(p.held) > p.usedCount {
		p.usedCount = len(p.held)
	}
	return true
}

// Release un-holds count units immediately (used only to roll back a
// partially-allocated mission per §4.5a step 6). It removes the count
// most-recently-acquired holds whose release time equals exactly
// `release` — callers must pass the same release time used to
// acquire.
func (p *Pool) Release(release float64, count int) {
	removed := 0
	for removed < count {
		idx := sort.SearchFloat64s(p.held, release)
		if idx >= len(p.held) || p.held[idx] != release {
			return
		}
		p.held = append(p.held[:idx], p.held[idx+1:]...)
		removed++
	}
}

// Total reports the pool's fixed capacity.
func (p *Pool) Total() int { return p.total }

// Utilization is the fraction of distinct units ever used.
func (p *Pool) Utilization() float64 {
	if p.total == 0 {
		return 0
	}
	return float64(p.usedCount) / float64(p.total)
}

// Efficiency is time-weighted: busy-time divided by total capacity
// times the horizon.
func (p *Pool) Efficiency(horizon float64) float64 {
	if p.total == 0 || horizon <= 0 {
		return 0
	}
	return p.busyTime / (float64(p.total) * horizon)
}

// Denials reports the cumulative count of units denied across all
// TryAcquire calls that failed.
func (p *Pool) Denials() int { return p.denials }

// Allocations reports the cumulative count of units successfully
// acquired.
func (p *Pool) Allocations() int { return p.allocations }

// PeakConcurrent reports the highest simultaneous hold count ever
// reached (usedCount in spec terms).
func (p *Pool) PeakConcurrent() int { return p.usedCount }
