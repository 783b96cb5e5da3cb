// Package cache provides an optional content-addressed cache for solve
// results: in deterministic mode, re-running the pipeline on unchanged
// subjects/faculty/rooms/batches/config should short-circuit to the
// previously solved bundle rather than re-solving (spec.md §5, §8
// round-trip/idempotence). Adapted from pkg/cache's redis.Client
// construction; disabled by default (nil client means no caching, never
// required for correctness).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/result"
	"github.com/edu-sched/cpsolver/pkg/config"
)

const keyPrefix = "cpsolver:bundle:"

// Store wraps a redis client with the get/put pair the driver calls
// around solve.Run. A nil Store (or one built with a nil client) is a
// safe no-op.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing client. Passing nil disables caching.
func New(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// Key hashes the normalized input set plus the penalties, the solver
// config (time budgets, workers, seed) and the Pass-2 lock mode into a
// deterministic cache key. Other Config fields and the solve.Options
// controller are not part of it. json.Marshal writes map keys in sorted
// order, so map construction order does not change the key; slice order
// does.
func Key(cfg *config.Config, subjects []domain.Subject, faculty []domain.Faculty, rooms []domain.Room, batches []domain.Batch) string {
	payload := struct {
		Penalties config.ConstraintPenalties
		Solver    config.SolverConfig
		LockMode  config.LockMode
		Subjects  []domain.Subject
		Faculty   []domain.Faculty
		Rooms     []domain.Room
		Batches   []domain.Batch
	}{cfg.Penalties, cfg.Solver, cfg.Pass2LockMode, subjects, faculty, rooms, batches}

	b, err := json.Marshal(payload)
	if err != nil {
		// Marshal failure means the payload is unhashable; caching is
		// best-effort, so fall back to a key that will simply never hit.
		return keyPrefix + "unhashable"
	}
	sum := sha256.Sum256(b)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached bundle for key, or (Bundle{}, false) on a miss
// or when the store is disabled.
func (s *Store) Get(ctx context.Context, key string) (result.Bundle, bool) {
	if s == nil || s.client == nil {
		return result.Bundle{}, false
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return result.Bundle{}, false
	}
	var b result.Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return result.Bundle{}, false
	}
	return b, true
}

// Put stores a bundle under key. Errors are swallowed — a cache write
// failure must never fail the pipeline (caching is a speed-up, not a
// correctness requirement).
func (s *Store) Put(ctx context.Context, key string, b result.Bundle) {
	if s == nil || s.client == nil {
		return
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return
	}
	s.client.Set(ctx, key, raw, s.ttl)
}
