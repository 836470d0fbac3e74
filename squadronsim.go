// Copyright 2025 James Ross

// Package squadronsim is the externally-importable entry point for the
// discrete-event squadron simulator (spec §6): RunSimulation executes
// one stochastic trajectory from a scenario and state snapshot,
// RunMonteCarlo runs a batch of them and reports the aggregate. Both
// are thin wrappers over the internal des and montecarlo packages —
// callers needing lower-level control (custom RNG streams, manual
// state derivation) should use those packages directly instead.
package squadronsim

import (
	"context"
	"math/rand"
	"time"

	"github.com/flyingrobots/squadron-sim/internal/des"
	"github.com/flyingrobots/squadron-sim/internal/montecarlo"
	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/flyingrobots/squadron-sim/internal/statesnapshot"
	"go.uber.org/zap"
)

// Re-exported so callers of this package never need to import
// internal/simtypes or internal/montecarlo directly.
type (
	Scenario            = simtypes.Scenario
	StateSnapshot       = simtypes.StateSnapshot
	Overrides           = simtypes.Overrides
	Result              = simtypes.Result
	AggregateResult     = montecarlo.AggregateResult
	SimulateSetting     = montecarlo.SimulateSetting
	ProjectionAlgorithm = montecarlo.Algorithm
)

const (
	AlgorithmStep ProjectionAlgorithm = montecarlo.AlgorithmStep
	AlgorithmPERT ProjectionAlgorithm = montecarlo.AlgorithmPERT
)

// MonteCarloOptions configures a RunMonteCarlo batch (spec §6).
type MonteCarloOptions struct {
	State            StateSnapshot
	Overrides        *Overrides
	Iterations       int
	KeepIterations   bool
	MaxConcurrent    int
	Algorithm        ProjectionAlgorithm
	SimulateSettings []SimulateSetting
	Logger           *zap.Logger
}

// RunSimulation derives resources from state, runs one DES trajectory
// over scenario, and returns the result (spec §6). The RNG seed is not
// part of the public signature; each call draws a fresh
// time-seeded stream, so repeated calls with identical inputs are not
// expected to reproduce identical trajectories — callers needing
// reproducibility should seed and drive internal/des directly.
func RunSimulation(ctx context.Context, scenario Scenario, state StateSnapshot, overrides *Overrides, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	derived, err := statesnapshot.Load(state)
	if err != nil {
		return nil, err
	}
	derived = statesnapshot.ApplyOverrides(derived, overrides)

	type outcome struct {
		result Result
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		k := des.New(scenario, derived, rng)
		r, err := k.Run()
		ch <- outcome{result: r, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil {
			return nil, o.err
		}
		return &o.result, nil
	case <-ctx.Done():
		log.Warn("RunSimulation canceled before completion")
		return nil, ctx.Err()
	}
}

// RunMonteCarlo derives resources from opts.State, runs
// opts.Iterations independent DES trajectories bounded to
// opts.MaxConcurrent concurrent workers, and returns the aggregate
// (spec §6). ctx governs iteration scheduling the same way
// internal/montecarlo.Run does: cancellation stops new iterations from
// starting without aborting ones already in flight.
func RunMonteCarlo(ctx context.Context, scenario Scenario, opts MonteCarloOptions) (*AggregateResult, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	derived, err := statesnapshot.Load(opts.State)
	if err != nil {
		return nil, err
	}

	mcOpts := montecarlo.Options{
		Iterations:       opts.Iterations,
		KeepIterations:   opts.KeepIterations,
		MaxConcurrent:    opts.MaxConcurrent,
		Algorithm:        opts.Algorithm,
		SimulateSettings: opts.SimulateSettings,
		Seed:             time.Now().UnixNano(),
	}
	agg, err := montecarlo.Run(ctx, scenario, derived, opts.Overrides, mcOpts, log)
	if err != nil {
		return nil, err
	}
	return &agg, nil
}
