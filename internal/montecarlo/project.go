// Package montecarlo implements the parallel iteration runner described
// in spec §4.6: per-iteration simulate-setting projection (Step or
// Beta-PERT), bounded-concurrency execution with retry and timeout,
// and aggregation with percentile-timeline selection. Grounded on the
// teacher's worker-pool goroutine-per-slot pattern
// (internal/worker/worker.go), generalized from "N goroutines pulling
// Redis jobs" to "N goroutines each running one isolated DES
// iteration", and on its exponential-backoff helper.
package montecarlo

import (
	"math"
	"math/rand"

	"github.com/flyingrobots/squadron-sim/internal/distributions"
	"github.com/flyingrobots/squadron-sim/internal/simtypes"
	"go.uber.org/zap"
)

// Algorithm selects the simulate-setting projection schedule.
type Algorithm string

const (
	AlgorithmStep Algorithm = "step"
	AlgorithmPERT Algorithm = "pert"
)

// SimulateSetting designates one configuration field to vary across
// iterations.
type SimulateSetting struct {
	Path         []string `json:"path"`
	DefaultValue float64  `json:"default_value"`
	Min          float64  `json:"min"`
	Max          float64  `json:"max"`
	Step         float64  `json:"step"`
}

// projectStep implements the Step schedule (spec §4.6).
func projectStep(s SimulateSetting, iteration int) (float64, error) {
	if s.Step <= 0 {
		return 0, simtypes.NewSimError(simtypes.InvalidParameter, "simulate-setting step must be > 0 for Step algorithm", nil)
	}
	n := int(math.Floor((s.Max-s.Min)/s.Step)) + 1
	if n <= 0 {
		return 0, simtypes.NewSimError(simtypes.InvalidParameter, "simulate-setting min must be < max", nil)
	}
	base := int(math.Round((s.DefaultValue - s.Min) / s.Step))
	idx := ((base+iteration)%n + n) % n
	v := float64(idx)*s.Step + s.Min
	return clamp(v, s.Min, s.Max), nil
}

// projectPERT implements the Beta-PERT schedule (spec §4.6).
func projectPERT(rng *rand.Rand, s SimulateSetting) (float64, error) {
	if s.Max <= s.Min {
		return 0, simtypes.NewSimError(simtypes.InvalidParameter, "simulate-setting min must be < max for PERT algorithm", nil)
	}
	const lambda = 4.0
	mu := (s.Min + lambda*s.DefaultValue + s.Max) / (lambda + 2)
	alpha := 1 + lambda*(mu-s.Min)/(s.Max-s.Min)
	beta := 1 + lambda*(s.Max-mu)/(s.Max-s.Min)
	u, err := distributions.Beta(rng, alpha, beta)
	if err != nil {
		return 0, err
	}
	x := s.Min + u*(s.Max-s.Min)
	if s.Step > 0 {
		x = math.Round((x-s.Min)/s.Step)*s.Step + s.Min
	}
	return clamp(x, s.Min, s.Max), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// project computes the value for one simulate-setting at one
// iteration under the given algorithm.
func project(rng *rand.Rand, algo Algorithm, s SimulateSetting, iteration int) (float64, error) {
	if algo == AlgorithmPERT {
		return projectPERT(rng, s)
	}
	return projectStep(s, iteration)
}

// applySetting routes a projected value into either the per-unit
// override document or the scenario, per the path-alias convention of
// spec §6. Unknown paths are logged and skipped rather than treated as
// fatal — the driver should not abort a whole run because one
// simulate-setting path could not be resolved.
func applySetting(log *zap.Logger, scenario *simtypes.Scenario, overrides *simtypes.Overrides, path []string, value float64) {
	if len(path) < 1 {
		log.Warn("simulate-setting path too short, skipping", zap.Strings("path", path))
		return
	}
	if applyOverridePath(scenario, overrides, path, value) {
		return
	}
	if applyScenarioPath(scenario, path, value) {
		return
	}
	log.Warn("simulate-setting path did not resolve to any known field, skipping", zap.Strings("path", path))
}

// applyOverridePath handles paths of the form units.<unit>.<field>
// (optionally .<payload_type> for payload_by_type).
func applyOverridePath(_ *simtypes.Scenario, overrides *simtypes.Overrides, path []string, value float64) bool {
	if path[0] != "units" || len(path) < 3 {
		return false
	}
	unit := path[1]
	field := path[2]
	if overrides.Units == nil {
		overrides.Units = map[string]simtypes.UnitOverride{}
	}
	ov := overrides.Units[unit]
	switch field {
	case "aircraft":
		v := int(value)
		ov.Aircraft = &v
	case "pilot":
		v := int(value)
		ov.Pilot = &v
	case "so":
		v := int(value)
		ov.SO = &v
	case "intel":
		v := int(value)
		ov.Intel = &v
	case "payload_by_type":
		if len(path) < 4 {
			return false
		}
		if ov.PayloadByType == nil {
			ov.PayloadByType = map[string]int{}
		}
		ov.PayloadByType[path[3]] = int(value)
	default:
		return false
	}
	overrides.Units[unit] = ov
	return true
}

// applyScenarioPath handles the scenario-structure subset of the path
// alias table: horizon_hours, unit_policy.mission_split.<unit>, and
// process_times.<field>.value_hours.
func applyScenarioPath(scenario *simtypes.Scenario, path []string, value float64) bool {
	switch {
	case len(path) == 1 && path[0] == "horizon_hours":
		scenario.HorizonHours = value
		return true
	case len(path) == 3 && path[0] == "unit_policy" && path[1] == "mission_split":
		if scenario.UnitPolicy.MissionSplit == nil {
			scenario.UnitPolicy.MissionSplit = map[string]float64{}
		}
		scenario.UnitPolicy.MissionSplit[path[2]] = value
		return true
	case len(path) == 3 && path[0] == "process_times" && path[2] == "value_hours":
		return applyProcessTime(scenario, path[1], value)
	default:
		return false
	}
}

func applyProcessTime(scenario *simtypes.Scenario, field string, value float64) bool {
	switch field {
	case "preflight":
		scenario.ProcessTimes.Preflight.ValueHours = value
	case "postflight":
		scenario.ProcessTimes.Postflight.ValueHours = value
	case "turnaround":
		scenario.ProcessTimes.Turnaround.ValueHours = value
	default:
		return false
	}
	return true
}
