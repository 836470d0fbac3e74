package montecarlo

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/flyingrobots/squadron-sim/internal/des"
	"github.com/flyingrobots/squadron-sim/internal/obs"
	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/flyingrobots/squadron-sim/internal/statesnapshot"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	defaultRetryMaxAttempts = 3
	defaultRetryBaseDelay   = 100 * time.Millisecond
	defaultIterationTimeout = 60 * time.Second
)

// Options configures a Monte Carlo run (spec §4.6). Zero-valued
// RetryMaxAttempts/RetryBaseDelay/IterationTimeout fall back to the
// spec's defaults (3 retries, 100ms base, 60s) — callers normally
// populate these from config.Config.MonteCarlo instead.
type Options struct {
	Iterations       int
	KeepIterations   bool
	MaxConcurrent    int
	Algorithm        Algorithm
	SimulateSettings []SimulateSetting
	Seed             int64

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	IterationTimeout time.Duration
}

func (o Options) retryMaxAttempts() int {
	if o.RetryMaxAttempts > 0 {
		return o.RetryMaxAttempts
	}
	return defaultRetryMaxAttempts
}

func (o Options) retryBaseDelay() time.Duration {
	if o.RetryBaseDelay > 0 {
		return o.RetryBaseDelay
	}
	return defaultRetryBaseDelay
}

func (o Options) iterationTimeout() time.Duration {
	if o.IterationTimeout > 0 {
		return o.IterationTimeout
	}
	return defaultIterationTimeout
}

// MissionsAggregate reports Stat for each mission counter across
// iterations.
type MissionsAggregate struct {
	Requested Stat `json:"requested"`
	Started   Stat `json:"started"`
	Completed Stat `json:"completed"`
	Rejected  Stat `json:"rejected"`
}

// RejectionsAggregate reports Stat for each rejection-kind counter.
type RejectionsAggregate struct {
	Aircraft Stat `json:"aircraft"`
	Pilot    Stat `json:"pilot"`
	SO       Stat `json:"so"`
	Intel    Stat `json:"intel"`
	Payload  Stat `json:"payload"`
}

// UnitUtilizationAggregate reports per-unit utilization Stat.
type UnitUtilizationAggregate struct {
	Aircraft Stat `json:"aircraft"`
	Pilot    Stat `json:"pilot"`
	SO       Stat `json:"so"`
}

// MissionTypeAggregate reports per-mission-type counter Stat.
type MissionTypeAggregate struct {
	Requested Stat `json:"requested"`
	Started   Stat `json:"started"`
	Completed Stat `json:"completed"`
	Rejected  Stat `json:"rejected"`
}

// AggregateResult is the output of a Monte Carlo run (spec §4.6). Per
// §9's open question (a), this assumes option (b): the result exposes
// the actual surviving iteration count rather than guaranteeing the
// requested N.
type AggregateResult struct {
	RunID               string                              `json:"run_id"`
	RequestedIterations int                                 `json:"requested_iterations"`
	CompletedIterations int                                 `json:"completed_iterations"`
	AbandonedIterations int                                 `json:"abandoned_iterations"`
	Missions            MissionsAggregate                    `json:"missions"`
	Rejections          RejectionsAggregate                  `json:"rejections"`
	Utilization         map[string]UnitUtilizationAggregate `json:"utilization"`
	ByType              map[string]MissionTypeAggregate      `json:"by_type"`
	PercentileTimelines map[string]PercentileTimeline        `json:"percentile_timelines"`
	Iterations          []simtypes.Result                    `json:"iterations,omitempty"`
}

// Run executes opts.Iterations independent DES trajectories, each over
// its own deep-copied, simulate-setting-projected scenario and
// overrides, bounded to opts.MaxConcurrent concurrent workers, then
// aggregates the surviving results (spec §4.6). ctx governs only
// acquisition of a worker slot and is not propagated into the kernel
// itself, consistent with runOnceWithTimeout's "termination is coarse"
// behavior: a canceled ctx stops new iterations from starting but does
// not abort iterations already running.
func Run(ctx context.Context, scenario simtypes.Scenario, baseResources simtypes.DerivedResources, baseOverrides *simtypes.Overrides, opts Options, log *zap.Logger) (AggregateResult, error) {
	if opts.Iterations <= 0 {
		return AggregateResult{}, simtypes.NewSimError(simtypes.InvalidParameter, "iterations must be > 0", nil)
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	sem := semaphore.NewWeighted(int64(maxConcurrent))
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]simtypes.Result, 0, opts.Iterations)
	abandoned := 0

	for i := 0; i < opts.Iterations; i++ {
		iteration := i
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return AggregateResult{}, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			obs.WorkersInFlight.Inc()
			defer obs.WorkersInFlight.Dec()

			result, ok := runIteration(scenario, baseResources, baseOverrides, opts, iteration, log)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				results = append(results, result)
				recordResultMetrics(result)
			} else {
				abandoned++
				obs.IterationsAbandoned.Inc()
			}
		}()
	}
	wg.Wait()

	agg := AggregateResult{
		RunID:               uuid.New().String(),
		RequestedIterations: opts.Iterations,
		CompletedIterations: len(results),
		AbandonedIterations: abandoned,
		Utilization:         map[string]UnitUtilizationAggregate{},
		ByType:              map[string]MissionTypeAggregate{},
		PercentileTimelines: selectPercentileTimelines(results),
	}
	if opts.KeepIterations {
		agg.Iterations = results
	}
	populateAggregates(&agg, results)
	return agg, nil
}

// runIteration projects this iteration's scenario/overrides, then runs
// the DES kernel with up to maxAttempts attempts, each under its own
// iterationTimeout deadline and exponential backoff between attempts
// (spec §4.6). Returns ok=false if every attempt failed or timed out.
func runIteration(scenario simtypes.Scenario, baseResources simtypes.DerivedResources, baseOverrides *simtypes.Overrides, opts Options, iteration int, log *zap.Logger) (simtypes.Result, bool) {
	iterScenario, iterOverrides, err := projectIteration(scenario, baseOverrides, opts, iteration, log)
	if err != nil {
		log.Warn("simulate-setting projection failed, abandoning iteration", zap.Int("iteration", iteration), zap.Error(err))
		return simtypes.Result{}, false
	}
	derived := statesnapshot.ApplyOverrides(baseResources, iterOverrides)

	maxAttempts := opts.retryMaxAttempts() + 1 // one initial attempt plus retries
	baseDelay := opts.retryBaseDelay()
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(baseDelay * time.Duration(1<<uint(attempt-1)))
		}

		result, err := runOnceWithTimeout(iterScenario, derived, opts.Seed+int64(iteration), opts.iterationTimeout())
		if err == nil {
			return result, true
		}
		log.Warn("monte carlo iteration attempt failed", zap.Int("iteration", iteration), zap.Int("attempt", attempt), zap.Error(err))
	}
	log.Warn("monte carlo iteration abandoned after max retries", zap.Int("iteration", iteration))
	return simtypes.Result{}, false
}

// runOnceWithTimeout runs a single DES trajectory under a wall-clock
// deadline. The kernel itself is not internally cancellable (spec §5);
// on timeout this function returns promptly but the kernel goroutine
// is left to finish on its own, consistent with "termination is
// coarse".
func runOnceWithTimeout(scenario simtypes.Scenario, derived simtypes.DerivedResources, seed int64, timeout time.Duration) (simtypes.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	type outcome struct {
		result simtypes.Result
		err    error
	}
	ch := make(chan outcome, 1)
	started := time.Now()
	go func() {
		k := des.New(scenario, derived, rand.New(rand.NewSource(seed)))
		r, err := k.Run()
		ch <- outcome{result: r, err: err}
	}()

	select {
	case o := <-ch:
		obs.IterationDuration.Observe(time.Since(started).Seconds())
		return o.result, o.err
	case <-ctx.Done():
		return simtypes.Result{}, simtypes.NewSimError(simtypes.IterationTimeout, "iteration exceeded wall-clock timeout", ctx.Err())
	}
}

// recordResultMetrics feeds one iteration's counters into the
// process-wide Prometheus totals.
func recordResultMetrics(r simtypes.Result) {
	obs.MissionsRequested.Add(float64(r.Missions.Requested))
	obs.MissionsStarted.Add(float64(r.Missions.Started))
	obs.MissionsRejected.Add(float64(r.Missions.Rejected))
	obs.DutiesUnfilled.Add(float64(r.Duties.Unfilled))
}

// projectIteration deep-copies scenario and overrides, then projects
// and applies every simulate-setting for this iteration.
func projectIteration(scenario simtypes.Scenario, baseOverrides *simtypes.Overrides, opts Options, iteration int, log *zap.Logger) (simtypes.Scenario, *simtypes.Overrides, error) {
	iterScenario := scenario.Clone()
	iterOverrides := baseOverrides.Clone()
	if iterOverrides == nil {
		iterOverrides = &simtypes.Overrides{Units: map[string]simtypes.UnitOverride{}}
	}
	if len(opts.SimulateSettings) == 0 {
		return iterScenario, iterOverrides, nil
	}

	rng := rand.New(rand.NewSource(opts.Seed + int64(iteration) + 1))
	for _, setting := range opts.SimulateSettings {
		value, err := project(rng, opts.Algorithm, setting, iteration)
		if err != nil {
			return simtypes.Scenario{}, nil, err
		}
		applySetting(log, &iterScenario, iterOverrides, setting.Path, value)
	}
	return iterScenario, iterOverrides, nil
}

func populateAggregates(agg *AggregateResult, results []simtypes.Result) {
	if len(results) == 0 {
		return
	}

	collect := func(f func(simtypes.Result) float64) []float64 {
		out := make([]float64, len(results))
		for i, r := range results {
			out[i] = f(r)
		}
		return out
	}

	agg.Missions = MissionsAggregate{
		Requested: computeStat(collect(func(r simtypes.Result) float64 { return float64(r.Missions.Requested) })),
		Started:   computeStat(collect(func(r simtypes.Result) float64 { return float64(r.Missions.Started) })),
		Completed: computeStat(collect(func(r simtypes.Result) float64 { return float64(r.Missions.Completed) })),
		Rejected:  computeStat(collect(func(r simtypes.Result) float64 { return float64(r.Missions.Rejected) })),
	}
	agg.Rejections = RejectionsAggregate{
		Aircraft: computeStat(collect(func(r simtypes.Result) float64 { return float64(r.Rejections.Aircraft) })),
		Pilot:    computeStat(collect(func(r simtypes.Result) float64 { return float64(r.Rejections.Pilot) })),
		SO:       computeStat(collect(func(r simtypes.Result) float64 { return float64(r.Rejections.SO) })),
		Intel:    computeStat(collect(func(r simtypes.Result) float64 { return float64(r.Rejections.Intel) })),
		Payload:  computeStat(collect(func(r simtypes.Result) float64 { return float64(r.Rejections.Payload) })),
	}

	units := map[string]bool{}
	missionTypes := map[string]bool{}
	for _, r := range results {
		for unit := range r.Utilization {
			units[unit] = true
		}
		for mt := range r.ByType {
			missionTypes[mt] = true
		}
	}
	for unit := range units {
		agg.Utilization[unit] = UnitUtilizationAggregate{
			Aircraft: computeStat(collect(func(r simtypes.Result) float64 { return r.Utilization[unit].Aircraft })),
			Pilot:    computeStat(collect(func(r simtypes.Result) float64 { return r.Utilization[unit].Pilot })),
			SO:       computeStat(collect(func(r simtypes.Result) float64 { return r.Utilization[unit].SO })),
		}
	}
	for mt := range missionTypes {
		agg.ByType[mt] = MissionTypeAggregate{
			Requested: computeStat(collect(func(r simtypes.Result) float64 { return float64(r.ByType[mt].Requested) })),
			Started:   computeStat(collect(func(r simtypes.Result) float64 { return float64(r.ByType[mt].Started) })),
			Completed: computeStat(collect(func(r simtypes.Result) float64 { return float64(r.ByType[mt].Completed) })),
			Rejected:  computeStat(collect(func(r simtypes.Result) float64 { return float64(r.ByType[mt].Rejected) })),
		}
	}
}
