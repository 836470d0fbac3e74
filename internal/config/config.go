// Copyright 2025 James Ross
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Observability controls process-wide logging and metrics exposure.
type Observability struct {
	LogLevel    string `mapstructure:"log_level"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

// MonteCarlo holds the defaults the CLI applies to a run_monte_carlo
// call when the scenario/options don't specify them explicitly.
type MonteCarlo struct {
	DefaultIterations     int           `mapstructure:"default_iterations"`
	DefaultMaxConcurrent  int           `mapstructure:"default_max_concurrent"`
	IterationTimeout      time.Duration `mapstructure:"iteration_timeout"`
	RetryBaseDelay        time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxAttempts      int           `mapstructure:"retry_max_attempts"`
	DefaultAlgorithm      string        `mapstructure:"default_algorithm"`
}

// ScenarioDefaults holds fallbacks for the CLI's scenario input. The
// CLI applies HorizonHours when the scenario's horizon_hours is 0;
// HoldCrewDuringProcess is loaded but not applied to the scenario.
type ScenarioDefaults struct {
	HorizonHours          float64 `mapstructure:"horizon_hours"`
	HoldCrewDuringProcess bool    `mapstructure:"hold_crew_during_process_times"`
}

// Config is the squadron simulator's top-level, process-wide
// configuration. It carries only ambient concerns (logging, metrics,
// Monte Carlo batch defaults) — the scenario itself is a separate
// input document, never merged into this struct.
type Config struct {
	Observability    Observability    `mapstructure:"observability"`
	MonteCarlo       MonteCarlo       `mapstructure:"monte_carlo"`
	ScenarioDefaults ScenarioDefaults `mapstructure:"scenario_defaults"`
}

func defaultConfig() *Config {
	return &Config{
		Observability: Observability{
			LogLevel:    "info",
			MetricsPort: 9090,
		},
		MonteCarlo: MonteCarlo{
			DefaultIterations:    1000,
			DefaultMaxConcurrent: 8,
			IterationTimeout:     60 * time.Second,
			RetryBaseDelay:       100 * time.Millisecond,
			RetryMaxAttempts:     3,
			DefaultAlgorithm:     "step",
		},
		ScenarioDefaults: ScenarioDefaults{
			HorizonHours:          24,
			HoldCrewDuringProcess: false,
		},
	}
}

// Load reads configuration from a YAML file (if present) plus
// environment overrides (SQUADRON_SIM_<SECTION>_<FIELD>), the way the
// teacher's worker/redis config layers YAML over viper defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("squadron_sim")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultConfig()
	v.SetDefault("observability.log_level", def.Observability.LogLevel)
	v.SetDefault("observability.metrics_port", def.Observability.MetricsPort)

	v.SetDefault("monte_carlo.default_iterations", def.MonteCarlo.DefaultIterations)
	v.SetDefault("monte_carlo.default_max_concurrent", def.MonteCarlo.DefaultMaxConcurrent)
	v.SetDefault("monte_carlo.iteration_timeout", def.MonteCarlo.IterationTimeout)
	v.SetDefault("monte_carlo.retry_base_delay", def.MonteCarlo.RetryBaseDelay)
	v.SetDefault("monte_carlo.retry_max_attempts", def.MonteCarlo.RetryMaxAttempts)
	v.SetDefault("monte_carlo.default_algorithm", def.MonteCarlo.DefaultAlgorithm)

	v.SetDefault("scenario_defaults.horizon_hours", def.ScenarioDefaults.HorizonHours)
	v.SetDefault("scenario_defaults.hold_crew_during_process_times", def.ScenarioDefaults.HoldCrewDuringProcess)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks config constraints and returns an error on invalid settings.
func Validate(cfg *Config) error {
	switch strings.ToLower(cfg.Observability.LogLevel) {
	case "silent", "error", "warn", "info", "verbose", "debug":
	default:
		return fmt.Errorf("observability.log_level must be one of silent|error|warn|info|verbose|debug, got %q", cfg.Observability.LogLevel)
	}
	if cfg.Observability.MetricsPort <= 0 || cfg.Observability.MetricsPort > 65535 {
		return fmt.Errorf("observability.metrics_port must be 1..65535")
	}
	if cfg.MonteCarlo.DefaultIterations < 1 {
		return fmt.Errorf("monte_carlo.default_iterations must be >= 1")
	}
	if cfg.MonteCarlo.DefaultMaxConcurrent < 1 {
		return fmt.Errorf("monte_carlo.default_max_concurrent must be >= 1")
	}
	if cfg.MonteCarlo.IterationTimeout <= 0 {
		return fmt.Errorf("monte_carlo.iteration_timeout must be > 0")
	}
	if cfg.MonteCarlo.RetryMaxAttempts < 0 {
		return fmt.Errorf("monte_carlo.retry_max_attempts must be >= 0")
	}
	switch strings.ToLower(cfg.MonteCarlo.DefaultAlgorithm) {
	case "step", "pert":
	default:
		return fmt.Errorf("monte_carlo.default_algorithm must be step or pert, got %q", cfg.MonteCarlo.DefaultAlgorithm)
	}
	if cfg.ScenarioDefaults.HorizonHours < 0 {
		return fmt.Errorf("scenario_defaults.horizon_hours must be >= 0")
	}
	return nil
}
