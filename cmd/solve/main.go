// Command solve runs the full pipeline of spec.md end to end: load
// config, ingest already-parsed rows, normalize, pre-filter, solve, and
// log a summary of the result bundle. No exporter is wired in here.
// Input parsing itself is out of scope (spec.md §1, "CSV/JSON file
// reading") — this binary expects a caller to have already populated
// ingest.Input, demonstrating the pipeline's wiring rather than shipping
// a parser.
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/edu-sched/cpsolver/internal/cache"
	"github.com/edu-sched/cpsolver/internal/ingest"
	"github.com/edu-sched/cpsolver/internal/prefilter"
	"github.com/edu-sched/cpsolver/internal/result"
	"github.com/edu-sched/cpsolver/internal/solve"
	pkgcache "github.com/edu-sched/cpsolver/pkg/cache"
	"github.com/edu-sched/cpsolver/pkg/config"
	appErrors "github.com/edu-sched/cpsolver/pkg/errors"
	"github.com/edu-sched/cpsolver/pkg/logger"
	"github.com/edu-sched/cpsolver/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		failFast("config load failed", err)
	}
	if err := cfg.Validate(); err != nil {
		failFast("config validation failed", err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		failFast("logger construction failed", err)
	}
	defer log.Sync()

	solverMetrics := metrics.NewSolver()

	var store *cache.Store
	if cfg.Redis.Host != "" {
		client, err := pkgcache.NewRedis(cfg.Redis)
		if err != nil {
			log.Warn("main: redis unavailable, continuing without idempotence cache", zap.Error(err))
		} else {
			store = cache.New(client, 24*time.Hour)
		}
	}

	// Input rows are the caller's responsibility (spec.md §1); an
	// operator wires their own CSV/JSON reader here.
	in := ingest.Input{}

	normalized, warnings, err := ingest.Normalize(in, cfg, log)
	if err != nil {
		failFast("ingest failed", err)
	}
	for _, w := range warnings {
		log.Warn("main: ingest warning", zap.String("code", w.Code), zap.String("message", w.Message))
	}

	filtered := prefilter.Run(normalized, log)
	log.Info("main: prefilter complete", zap.Int("removed", len(filtered.Removed)), zap.String("report", prefilter.Report(filtered.Removed)))

	ctx := context.Background()
	cacheKey := cache.Key(cfg, filtered.Subjects, filtered.Faculty, normalized.Rooms, filtered.Batches)
	if bundle, hit := store.Get(ctx, cacheKey); hit {
		solverMetrics.RecordCacheLookup(true)
		log.Info("main: idempotence-cache hit, skipping solve", zap.String("key", cacheKey))
		emit(log, bundle)
		return
	}
	solverMetrics.RecordCacheLookup(false)

	opts := solve.Options{Controller: solve.GridGhost}
	start := time.Now()
	outcome, err := solve.Run(cfg, filtered.Subjects, filtered.Faculty, normalized.Rooms, filtered.Batches, opts, log)
	if err != nil {
		appErr := appErrors.FromError(err)
		log.Error("main: solve failed", zap.String("code", appErr.Code), zap.String("severity", appErr.Severity.String()))
		if appErr.Fatal() || appErr.Severity == appErrors.SeveritySolverInfeasible {
			os.Exit(1)
		}
		return
	}

	solverMetrics.ObservePass("pass1", time.Since(start), outcome.Pass1.ObjectiveValue, 0, 0)
	if outcome.Pass2Ran {
		solverMetrics.ObservePass("pass2", time.Since(start), outcome.Pass2.ObjectiveValue, 0, 0)
	}

	bundle := result.Extract(outcome)
	store.Put(ctx, cacheKey, bundle)
	emit(log, bundle)
}

func emit(log *zap.Logger, bundle result.Bundle) {
	log.Info("main: solve complete",
		zap.Int("result_code", bundle.ResultCode),
		zap.Float64("pass1_objective", bundle.Pass1Objective),
		zap.Int("sections", len(bundle.Sections)),
	)
}

func failFast(msg string, err error) {
	zap.NewExample().Error(msg, zap.Error(err))
	os.Exit(1)
}
