package solve

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/or-tools/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// testConfig builds the smallest fully-populated Config a Run needs: one
// scheduling day, loose enough streak bounds that a single short meeting
// never trips a hard constraint, and a real Log.Dir so the per-pass
// statistics summary (spec.md §4.11) can be asserted against.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		SchedulingDays:          []string{"Monday"},
		DayStartMinutes:         480,
		DayEndMinutes:           600,
		FridayEndMinutes:        600,
		TimeGranularity:         30,
		MaxContinuousClassHours: 3,
		MinContinuousClassHours: 0.5,
		MaxGapHours:             2,
		MinGapHours:             0.5,
		Pass2LockMode:           config.LockModeExact,
		Penalties: config.ConstraintPenalties{
			FacultyOverloadPerMinute:      1,
			RoomOvercapacityPerStudent:    5,
			SectionOverfillPerStudent:     2,
			SectionUnderfillPerStudent:    2,
			ExcessContinuousClassPerHour:  10,
			UnderMinimumBlockPerHour:      10,
			ExcessGapPerHour:              5,
			UnderfillGapPerHour:           5,
			NonPreferredSubjectPerSection: 3,
			DayGapPenalty:                 8,
		},
		Solver: config.SolverConfig{
			Deterministic:   true,
			Seed:            1,
			Pass1TimeBudget: 5 * time.Second,
			Pass2TimeBudget: 5 * time.Second,
			RunPass2:        true,
		},
		Log: config.LogConfig{Dir: t.TempDir()},
	}
}

func oneSubjectEntities() ([]domain.Subject, []domain.Faculty, []domain.Room, []domain.Batch) {
	min, max := 1, 1
	subjects := []domain.Subject{{ID: 1, RequiredWeeklyMinutes: 60, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max}}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}}}
	rooms := []domain.Room{{ID: 0, Capacity: 40}}
	batches := []domain.Batch{{ID: 1, Population: 20, EnrolledSubjects: []int{1}}}
	return subjects, faculty, rooms, batches
}

func TestRunPass1OnlySkipsPass2(t *testing.T) {
	cfg := testConfig(t)
	subjects, faculty, rooms, batches := oneSubjectEntities()

	outcome, err := Run(cfg, subjects, faculty, rooms, batches, Options{Pass1Only: true}, nil)
	require.NoError(t, err)

	assert.False(t, outcome.Pass2Ran)
	assert.Equal(t, 0, outcome.ResultCode)
	assert.True(t, outcome.Pass1.Status == sat.Optimal || outcome.Pass1.Status == sat.Feasible)
	assert.Same(t, outcome.Pass1.Solver, outcome.Solver())
}

func TestRunFullPipelineSolvesPass2AndWritesStats(t *testing.T) {
	cfg := testConfig(t)
	subjects, faculty, rooms, batches := oneSubjectEntities()

	outcome, err := Run(cfg, subjects, faculty, rooms, batches, Options{}, nil)
	require.NoError(t, err)

	require.True(t, outcome.Pass2Ran)
	assert.True(t, outcome.Pass2.Status == sat.Optimal || outcome.Pass2.Status == sat.Feasible)
	assert.Same(t, outcome.Pass2.Solver, outcome.Solver())

	for _, pass := range []int{1, 2} {
		_, err := os.Stat(filepath.Join(cfg.Log.Dir, "pass"+strconv.Itoa(pass)+"-stats.txt"))
		assert.NoError(t, err, "expected a per-pass statistics summary file for pass %d", pass)
	}
}
