// Copyright 2025 James Ross
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flyingrobots/squadron-sim/internal/config"
	"github.com/flyingrobots/squadron-sim/internal/des"
	"github.com/flyingrobots/squadron-sim/internal/montecarlo"
	"github.com/flyingrobots/squadron-sim/internal/obs"
	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"github.com/flyingrobots/squadron-sim/internal/statesnapshot"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	var configPath string
	var scenarioPath string
	var statePath string
	var overridesPath string
	var mode string
	var iterations int
	var maxConcurrent int
	var algorithm string
	var simulateSettingsPath string
	var seed int64
	var keepIterations bool
	var showVersion bool
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.StringVar(&configPath, "config", "config/config.yaml", "Path to YAML config")
	fs.StringVar(&scenarioPath, "scenario", "", "Path to scenario JSON document (required)")
	fs.StringVar(&statePath, "state", "", "Path to state snapshot JSON document (required)")
	fs.StringVar(&overridesPath, "overrides", "", "Path to overrides JSON document (optional)")
	fs.StringVar(&mode, "mode", "run", "Execution mode: run|montecarlo")
	fs.IntVar(&iterations, "iterations", 0, "Monte Carlo iteration count (0: use config default)")
	fs.IntVar(&maxConcurrent, "max-concurrent", 0, "Monte Carlo max concurrent iterations (0: use config default)")
	fs.StringVar(&algorithm, "algorithm", "", "Monte Carlo projection algorithm: step|pert (blank: use config default)")
	fs.StringVar(&simulateSettingsPath, "simulate-settings", "", "Path to a JSON array of simulate-setting documents (montecarlo mode only)")
	fs.Int64Var(&seed, "seed", 1, "RNG seed")
	fs.BoolVar(&keepIterations, "keep-iterations", false, "Include every iteration's Result in montecarlo output")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	_ = fs.Parse(os.Args[1:])

	if showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := obs.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	metricsSrv := obs.StartMetricsServer(cfg)
	defer func() { _ = metricsSrv.Shutdown(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("signal received, shutting down", obs.String("signal", sig.String()))
		cancel()
		select {
		case sig2 := <-sigCh:
			logger.Warn("second signal received, exiting immediately", obs.String("signal", sig2.String()))
			os.Exit(1)
		case <-time.After(5 * time.Second):
		}
	}()

	if scenarioPath == "" || statePath == "" {
		logger.Fatal("--scenario and --state are required")
	}

	scenario, err := loadScenario(scenarioPath, cfg)
	if err != nil {
		logger.Fatal("failed to load scenario", obs.Err(err))
	}
	snapshot, err := loadStateSnapshot(statePath)
	if err != nil {
		logger.Fatal("failed to load state snapshot", obs.Err(err))
	}
	derived, err := statesnapshot.Load(snapshot)
	if err != nil {
		logger.Fatal("failed to derive resources from state snapshot", obs.Err(err))
	}
	overrides, err := loadOverrides(overridesPath)
	if err != nil {
		logger.Fatal("failed to load overrides", obs.Err(err))
	}
	derived = statesnapshot.ApplyOverrides(derived, overrides)

	switch mode {
	case "run":
		runSingle(logger, scenario, derived, seed)
	case "montecarlo":
		runMonteCarlo(ctx, logger, cfg, scenario, derived, overrides, iterations, maxConcurrent, algorithm, simulateSettingsPath, seed, keepIterations)
	default:
		logger.Fatal("unknown mode", obs.String("mode", mode))
	}
}

func runSingle(logger *zap.Logger, scenario simtypes.Scenario, derived simtypes.DerivedResources, seed int64) {
	k := des.New(scenario, derived, rand.New(rand.NewSource(seed)))
	result, err := k.Run()
	if err != nil {
		logger.Fatal("simulation run failed", obs.Err(err))
	}
	printJSON(struct {
		RunID string          `json:"run_id"`
		simtypes.Result
	}{RunID: uuid.New().String(), Result: result})
}

func runMonteCarlo(ctx context.Context, logger *zap.Logger, cfg *config.Config, scenario simtypes.Scenario, derived simtypes.DerivedResources, overrides *simtypes.Overrides, iterations, maxConcurrent int, algorithm, simulateSettingsPath string, seed int64, keepIterations bool) {
	if iterations <= 0 {
		iterations = cfg.MonteCarlo.DefaultIterations
	}
	if maxConcurrent <= 0 {
		maxConcurrent = cfg.MonteCarlo.DefaultMaxConcurrent
	}
	if algorithm == "" {
		algorithm = cfg.MonteCarlo.DefaultAlgorithm
	}
	settings, err := loadSimulateSettings(simulateSettingsPath)
	if err != nil {
		logger.Fatal("failed to load simulate settings", obs.Err(err))
	}

	opts := montecarlo.Options{
		Iterations:       iterations,
		MaxConcurrent:    maxConcurrent,
		Algorithm:        montecarlo.Algorithm(algorithm),
		SimulateSettings: settings,
		Seed:             seed,
		KeepIterations:   keepIterations,
		RetryMaxAttempts: cfg.MonteCarlo.RetryMaxAttempts,
		RetryBaseDelay:   cfg.MonteCarlo.RetryBaseDelay,
		IterationTimeout: cfg.MonteCarlo.IterationTimeout,
	}
	agg, err := montecarlo.Run(ctx, scenario, derived, overrides, opts, logger)
	if err != nil {
		logger.Fatal("monte carlo run failed", obs.Err(err))
	}
	printJSON(agg)
}

func loadScenario(path string, cfg *config.Config) (simtypes.Scenario, error) {
	var scenario simtypes.Scenario
	if err := decodeJSONFile(path, &scenario); err != nil {
		return simtypes.Scenario{}, err
	}
	if scenario.HorizonHours == 0 {
		scenario.HorizonHours = cfg.ScenarioDefaults.HorizonHours
	}
	return scenario, nil
}

func loadStateSnapshot(path string) (simtypes.StateSnapshot, error) {
	var snapshot simtypes.StateSnapshot
	if err := decodeJSONFile(path, &snapshot); err != nil {
		return simtypes.StateSnapshot{}, err
	}
	return snapshot, nil
}

func loadOverrides(path string) (*simtypes.Overrides, error) {
	if path == "" {
		return nil, nil
	}
	var overrides simtypes.Overrides
	if err := decodeJSONFile(path, &overrides); err != nil {
		return nil, err
	}
	return &overrides, nil
}

func loadSimulateSettings(path string) ([]montecarlo.SimulateSetting, error) {
	if path == "" {
		return nil, nil
	}
	var settings []montecarlo.SimulateSetting
	if err := decodeJSONFile(path, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func decodeJSONFile(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}
