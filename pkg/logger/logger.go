// Package logger builds the structured zap logger every pass of the
// solver writes through (spec.md §4.11, SPEC_FULL.md §A.1).
package logger

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edu-sched/cpsolver/pkg/config"
)

// New builds a zap.Logger honoring cfg.Log, the same selection the teacher
// repository's pkg/logger makes between development and production
// encoder configs.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg != nil && cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	format := "json"
	level := ""
	if cfg != nil {
		format = cfg.Log.Format
		level = cfg.Log.Level
	}
	switch format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Solver log (append-only): every pass of every run writes through the
	// same <Dir>/solve.log in addition to stderr (spec.md §6 Outputs). Zap opens
	// a plain file path with O_APPEND, so concurrent passes interleave
	// without truncating each other.
	if cfg != nil && cfg.Log.Dir != "" {
		if err := os.MkdirAll(cfg.Log.Dir, 0o755); err == nil {
			logPath := filepath.Join(cfg.Log.Dir, "solve.log")
			zapCfg.OutputPaths = append(zapCfg.OutputPaths, logPath)
			zapCfg.ErrorOutputPaths = append(zapCfg.ErrorOutputPaths, logPath)
		}
	}

	return zapCfg.Build()
}

// ForRun returns a child logger tagged with a fresh run id (a
// github.com/google/uuid value, the same generator the teacher repo uses
// for every other entity ID), so every line across both passes of a
// single solve can be correlated.
func ForRun(base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return base.With(zap.String("run_id", uuid.NewString()))
}

// ForPass tags an already run_id-stamped logger with its pass number, so
// that every line an anytime callback emits (spec.md §4.11) can be
// correlated back to a single Pass-1 or Pass-2 solve.
func ForPass(base *zap.Logger, pass int) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return base.With(zap.Int("pass", pass))
}
