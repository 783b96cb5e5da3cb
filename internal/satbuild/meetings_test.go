package satbuild

import (
	"testing"

	"github.com/google/or-tools/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// TestBuildMeetingsSolvesToRequiredDuration checks §8 invariant 1: a
// scheduled section's total active duration equals its required weekly
// minutes, chosen from the discrete duration set D(sub) (spec.md §4.3).
func TestBuildMeetingsSolvesToRequiredDuration(t *testing.T) {
	cfg := &config.Config{TimeGranularity: 30}
	min, max := 1, 1
	subjects := []domain.Subject{{ID: 1, RequiredWeeklyMinutes: 90, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max}}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}}}
	rooms := []domain.Room{{ID: 0, Capacity: 40}}
	batches := []domain.Batch{{ID: 1, Population: 20, EnrolledSubjects: []int{1}}}
	sentinels := domain.Sentinels{DummyFaculty: 1, DummyRoom: 1}
	days := []domain.Day{0}
	window := func(domain.Day) domain.DayWindow { return domain.DayWindow{Start: 480, End: 600} }

	m := BuildVariables(cfg, subjects, faculty, rooms, batches, sentinels, days, window)
	m.BuildMeetings()

	// The duration violation is a slack, so minimize it the way the
	// Pass-1 objective does; otherwise any feasible assignment may stand.
	key := m.Sections[0].Key()
	obj := m.CP.NewLinearExpr()
	obj.AddTerm(m.DurationViolationOf[key], 1)
	m.CP.Minimize(obj)

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)

	mv := m.Meetings[key][0]
	assert.True(t, solver.BooleanValue(mv.Active))
	assert.EqualValues(t, 90, solver.Value(mv.Duration))
	assert.False(t, solver.BooleanValue(m.DurationViolationOf[key]))
}

// TestBuildMeetingsZeroMaxMeetingsForcesZeroDuration exercises
// domain.DurationSet's max_meetings==0 branch end to end: the only
// legal duration is 0, so the section never actually meets even though
// a batch picks it.
func TestBuildMeetingsZeroMaxMeetingsForcesZeroDuration(t *testing.T) {
	cfg := &config.Config{TimeGranularity: 30}
	zero := 0
	one := 1
	subjects := []domain.Subject{{ID: 1, RequiredWeeklyMinutes: 0, IdealNumSections: 1, MinMeetings: &one, MaxMeetings: &zero}}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}}}
	rooms := []domain.Room{{ID: 0, Capacity: 40}}
	batches := []domain.Batch{{ID: 1, Population: 20, EnrolledSubjects: []int{1}}}
	sentinels := domain.Sentinels{DummyFaculty: 1, DummyRoom: 1}
	days := []domain.Day{0}
	window := func(domain.Day) domain.DayWindow { return domain.DayWindow{Start: 480, End: 600} }

	m := BuildVariables(cfg, subjects, faculty, rooms, batches, sentinels, days, window)
	m.BuildMeetings()

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)

	key := m.Sections[0].Key()
	assert.EqualValues(t, 0, solver.Value(m.Meetings[key][0].Duration))
}
