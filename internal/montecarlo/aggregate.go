package montecarlo

import (
	"math"
	"sort"

	"github.com/flyingrobots/squadron-sim/internal/simtypes"
)

// Stat is the aggregate reported for one numeric scalar collected
// across iterations (spec §4.6).
type Stat struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// computeStat aggregates values (collected once per successful
// iteration) into a Stat. Returns the zero Stat for an empty input.
func computeStat(values []float64) Stat {
	n := len(values)
	if n == 0 {
		return Stat{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	stddev := math.Sqrt(sumSq / float64(n))

	pct := func(p float64) float64 {
		idx := int(math.Ceil(p/100*float64(n))) - 1
		if idx < 0 {
			idx = 0
		}
		if idx > n-1 {
			idx = n - 1
		}
		return sorted[idx]
	}

	return Stat{
		Mean:   mean,
		StdDev: stddev,
		Min:    sorted[0],
		Max:    sorted[n-1],
		P10:    pct(10),
		P25:    pct(25),
		P50:    pct(50),
		P75:    pct(75),
		P90:    pct(90),
		P95:    pct(95),
		P99:    pct(99),
	}
}

// percentileInversion is the named table encoding spec §4.6's
// intentional pX inversion: pX selects the (100-X)-th sorted position,
// since pX represents the X-th percentile of operational risk (only X%
// of outcomes are worse). Kept as an explicit table per §9's design
// note rather than an inline computation.
var percentileInversion = map[string]float64{
	"p10": 90,
	"p25": 75,
	"p50": 50,
	"p75": 25,
	"p90": 10,
	"p95": 5,
	"p99": 1,
}

// PercentileTimeline is the per-key selected-iteration view emitted by
// the driver.
type PercentileTimeline struct {
	Timeline             []simtypes.TimelineEvent    `json:"timeline"`
	AvailabilityTimeline []simtypes.AvailabilityPoint `json:"availability_timeline"`
	MissionsCompleted    float64                      `json:"missions_completed"`
	StdDev               float64                      `json:"stddev"`
}

// selectPercentileTimelines implements spec §4.6's percentile-timeline
// selection: sort iterations by completed-mission count, then pick one
// representative iteration per key.
func selectPercentileTimelines(results []simtypes.Result) map[string]PercentileTimeline {
	n := len(results)
	if n == 0 {
		return map[string]PercentileTimeline{}
	}

	type indexed struct {
		idx       int
		completed float64
	}
	order := make([]indexed, n)
	var sum float64
	for i, r := range results {
		c := float64(r.Missions.Completed)
		order[i] = indexed{idx: i, completed: c}
		sum += c
	}
	mean := sum / float64(n)
	sort.SliceStable(order, func(i, j int) bool { return order[i].completed < order[j].completed })

	completedAll := make([]float64, n)
	for i, o := range order {
		completedAll[i] = o.completed
	}
	stddev := computeStat(completedAll).StdDev

	pick := func(sortedPos int) int {
		if sortedPos < 0 {
			sortedPos = 0
		}
		if sortedPos > n-1 {
			sortedPos = n - 1
		}
		return order[sortedPos].idx
	}

	out := make(map[string]PercentileTimeline, 10)
	emit := func(key string, resultIdx int) {
		r := results[resultIdx]
		out[key] = PercentileTimeline{
			Timeline:             r.Timeline,
			AvailabilityTimeline: r.AvailabilityTimeline,
			MissionsCompleted:    float64(r.Missions.Completed),
			StdDev:               stddev,
		}
	}

	emit("min", order[0].idx)
	emit("max", order[n-1].idx)

	closestToMean := 0
	bestDelta := math.Inf(1)
	for i, o := range order {
		d := math.Abs(o.completed - mean)
		if d < bestDelta {
			bestDelta = d
			closestToMean = i
		}
	}
	emit("mean", order[closestToMean].idx)

	for key, sortedPercent := range percentileInversion {
		pos := int(math.Ceil(sortedPercent/100*float64(n))) - 1
		emit(key, pick(pos))
	}

	return out
}
