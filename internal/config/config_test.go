// Copyright 2025 James Ross
package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("SQUADRON_SIM_MONTE_CARLO_DEFAULT_ITERATIONS")
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MonteCarlo.DefaultIterations != 1000 {
		t.Fatalf("expected default iterations 1000, got %d", cfg.MonteCarlo.DefaultIterations)
	}
	if cfg.Observability.LogLevel == "" {
		t.Fatalf("expected default log level")
	}
}

func TestValidateFails(t *testing.T) {
	cfg := defaultConfig()
	cfg.MonteCarlo.DefaultMaxConcurrent = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for monte_carlo.default_max_concurrent < 1")
	}
	cfg = defaultConfig()
	cfg.Observability.LogLevel = "loud"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
	cfg = defaultConfig()
	cfg.MonteCarlo.DefaultAlgorithm = "monte"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}
