package result

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/solve"
	"github.com/edu-sched/cpsolver/pkg/config"
)

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
			UnderMinimumBlockPerHour:      10,
			ExcessGapPerHour:              5,
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

// TestExtractPopulatesViolationTrackers checks spec.md §6 Outputs:
// Extract's Bundle carries every violation-tracker family of §4.8/§4.9,
// not just the solved section assignments.
func TestExtractPopulatesViolationTrackers(t *testing.T) {
	cfg := testConfig(t)
	min, max := 1, 1
	subjects := []domain.Subject{{ID: 1, RequiredWeeklyMinutes: 90, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max}}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}, MaxMinutes: 30}}
	rooms := []domain.Room{{ID: 0, Capacity: 20}}
	batches := []domain.Batch{{ID: 1, Population: 35, EnrolledSubjects: []int{1}}}

	outcome, err := solve.Run(cfg, subjects, faculty, rooms, batches, solve.Options{}, nil)
	require.NoError(t, err)
	require.True(t, outcome.Pass2Ran)

	bundle := Extract(outcome)

	require.Len(t, bundle.Sections, 1)
	assert.Contains(t, bundle.Violations.FacultyOverloadMinutes, 0)
	assert.Contains(t, bundle.Violations.SectionOverfillStudents, "1#0")
	assert.Contains(t, bundle.Violations.RoomOvercapacityStudents, "1#0")
	assert.NotNil(t, bundle.Violations.FacultyDayGaps)
	assert.NotNil(t, bundle.Violations.BatchDayGaps)
}
