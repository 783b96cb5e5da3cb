package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/result"
	"github.com/edu-sched/cpsolver/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Penalties: config.ConstraintPenalties{FacultyOverloadPerMinute: 1},
		Solver:    config.SolverConfig{Deterministic: true, Seed: 7},
	}
}

func TestKeyIsStableAcrossEquivalentInputs(t *testing.T) {
	cfg := testConfig()
	subjects := []domain.Subject{{ID: 1, Code: "CS101"}}
	faculty := []domain.Faculty{{ID: 1, Name: "A"}}
	rooms := []domain.Room{{ID: 1, Capacity: 40}}
	batches := []domain.Batch{{ID: 1, Population: 30}}

	k1 := Key(cfg, subjects, faculty, rooms, batches)
	k2 := Key(cfg, subjects, faculty, rooms, batches)
	assert.Equal(t, k1, k2)
}

func TestKeyChangesWithInput(t *testing.T) {
	cfg := testConfig()
	subjects := []domain.Subject{{ID: 1, Code: "CS101"}}
	faculty := []domain.Faculty{{ID: 1, Name: "A"}}
	rooms := []domain.Room{{ID: 1, Capacity: 40}}
	batches := []domain.Batch{{ID: 1, Population: 30}}

	k1 := Key(cfg, subjects, faculty, rooms, batches)
	batches[0].Population = 31
	k2 := Key(cfg, subjects, faculty, rooms, batches)
	assert.NotEqual(t, k1, k2)
}

func TestStoreDisabledIsNoop(t *testing.T) {
	var store *Store
	_, hit := store.Get(context.Background(), "anything")
	assert.False(t, hit)
	store.Put(context.Background(), "anything", result.Bundle{ResultCode: 1})
}

func TestNewWithNilClientIsNoop(t *testing.T) {
	store := New(nil, 0)
	_, hit := store.Get(context.Background(), "k")
	require.False(t, hit)
}
