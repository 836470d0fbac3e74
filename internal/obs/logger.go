// Package obs provides the logging and metrics primitives shared by
// the DES kernel, the Monte Carlo driver and the CLI. Loggers are never
// package-level globals: callers build a logger once (per run, per
// worker) and thread it through explicitly, so one worker's log level
// can never leak into another's. The Prometheus metrics in metrics.go
// are package-level variables, registered process-wide in init.
package obs

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the six-level switch the kernel boundary exposes:
// silent < error < warn < info < verbose < debug.
type Level string

const (
	LevelSilent  Level = "silent"
	LevelError   Level = "error"
	LevelWarn    Level = "warn"
	LevelInfo    Level = "info"
	LevelVerbose Level = "verbose"
	LevelDebug   Level = "debug"
)

// NewLogger builds a zap logger for the given level. "silent" returns
// zap.NewNop() rather than a logger gated above Fatal, so callers
// never pay encoding cost for silenced messages. zap has no five-level
// granularity of its own, so verbose and debug share DebugLevel.
func NewLogger(level string) (*zap.Logger, error) {
	switch Level(strings.ToLower(strings.TrimSpace(level))) {
	case LevelSilent:
		return zap.NewNop(), nil
	case LevelError:
		return build(zapcore.ErrorLevel)
	case LevelWarn:
		return build(zapcore.WarnLevel)
	case LevelVerbose, LevelDebug:
		return build(zapcore.DebugLevel)
	default:
		return build(zapcore.InfoLevel)
	}
}

func build(lvl zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "json"
	cfg.DisableStacktrace = lvl != zapcore.DebugLevel
	return cfg.Build()
}

// NopLogger returns a logger that discards everything, for callers
// (tests, library embedders) that don't pass one explicitly.
func NopLogger() *zap.Logger { return zap.NewNop() }

// Convenience typed fields.
func String(k, v string) zap.Field          { return zap.String(k, v) }
func Int(k string, v int) zap.Field         { return zap.Int(k, v) }
func Bool(k string, v bool) zap.Field       { return zap.Bool(k, v) }
func Err(err error) zap.Field               { return zap.Error(err) }
func Float64(k string, v float64) zap.Field { return zap.Float64(k, v) }
