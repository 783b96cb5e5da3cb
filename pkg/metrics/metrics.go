// Package metrics instruments the two-pass solve pipeline with a
// private Prometheus registry, adapted from the teacher's
// internal/service/metrics_service.go. Unlike the teacher, this module
// never exposes an HTTP handler — spec.md's Non-goals exclude "any
// external service API" — so Registry() is the only read path; an
// operator that wants a /metrics endpoint wires promhttp.HandlerFor
// against Registry() themselves.
package metrics

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Solver collects per-pass solve observability counters and gauges
// (spec.md §4.11): pass duration, branch/conflict counts, objective
// values, and cache hit ratio for the optional idempotence cache.
type Solver struct {
	registry *prometheus.Registry

	passDuration  *prometheus.HistogramVec
	passObjective *prometheus.GaugeVec
	passBranches  *prometheus.CounterVec
	passConflicts *prometheus.CounterVec
	cacheHitRatio prometheus.Gauge
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewSolver registers the solver's collectors against a fresh, private
// registry (never the global DefaultRegisterer — two solver instances
// in the same process must not collide).
func NewSolver() *Solver {
	registry := prometheus.NewRegistry()

	passDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cpsolver_pass_duration_seconds",
		Help:    "Wall-clock duration of each solve pass",
		Buckets: prometheus.DefBuckets,
	}, []string{"pass"})

	passObjective := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cpsolver_pass_objective",
		Help: "Final objective value reported by each solve pass",
	}, []string{"pass"})

	passBranches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cpsolver_pass_branches_total",
		Help: "Cumulative search branches explored per pass",
	}, []string{"pass"})

	passConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cpsolver_pass_conflicts_total",
		Help: "Cumulative search conflicts encountered per pass",
	}, []string{"pass"})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cpsolver_cache_hit_ratio",
		Help: "Ratio of idempotence-cache hits to total lookups",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cpsolver_cache_hits_total",
		Help: "Total idempotence-cache hits",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cpsolver_cache_misses_total",
		Help: "Total idempotence-cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cpsolver_goroutines",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(passDuration, passObjective, passBranches, passConflicts, cacheHitRatio, cacheHits, cacheMisses, goroutines)

	return &Solver{
		registry:      registry,
		passDuration:  passDuration,
		passObjective: passObjective,
		passBranches:  passBranches,
		passConflicts: passConflicts,
		cacheHitRatio: cacheHitRatio,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
	}
}

// Registry exposes the private registry for a caller that wants to wire
// its own promhttp handler or push gateway.
func (s *Solver) Registry() *prometheus.Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

// ObservePass records one pass's terminal statistics.
func (s *Solver) ObservePass(pass string, duration time.Duration, objective float64, branches, conflicts int64) {
	if s == nil {
		return
	}
	s.passDuration.WithLabelValues(pass).Observe(duration.Seconds())
	s.passObjective.WithLabelValues(pass).Set(objective)
	if branches > 0 {
		s.passBranches.WithLabelValues(pass).Add(float64(branches))
	}
	if conflicts > 0 {
		s.passConflicts.WithLabelValues(pass).Add(float64(conflicts))
	}
}

// RecordCacheLookup updates the hit/miss counters and hit-ratio gauge
// for the idempotence cache (internal/cache).
func (s *Solver) RecordCacheLookup(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.cacheHits.Inc()
		atomic.AddUint64(&s.cacheHitCount, 1)
	} else {
		s.cacheMisses.Inc()
		atomic.AddUint64(&s.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&s.cacheHitCount)
	misses := atomic.LoadUint64(&s.cacheMissCount)
	if total := hits + misses; total > 0 {
		s.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}
