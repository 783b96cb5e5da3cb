package constraints

import (
	"testing"

	"github.com/google/or-tools/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// TestSectionOverfillStudentsComputesExcess checks spec.md §4.9: a
// section's overfill tracker equals total enrolled students minus the
// subject's effective max enrollment (default 40), floored at 0.
func TestSectionOverfillStudentsComputesExcess(t *testing.T) {
	cfg := &config.Config{TimeGranularity: 30}
	min, max := 1, 1
	subjects := []domain.Subject{{ID: 1, RequiredWeeklyMinutes: 60, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max}}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}}}
	rooms := []domain.Room{{ID: 0, Capacity: 100}}
	batches := []domain.Batch{{ID: 1, Population: 55, EnrolledSubjects: []int{1}}}
	sentinels := domain.Sentinels{DummyFaculty: len(faculty), DummyRoom: len(rooms)}
	days := []domain.Day{0}
	window := func(domain.Day) domain.DayWindow { return domain.DayWindow{Start: 480, End: 600} }

	m := satbuild.BuildVariables(cfg, subjects, faculty, rooms, batches, sentinels, days, window)
	m.BuildMeetings()
	p := BuildPreference(m)

	obj := m.CP.NewLinearExpr()
	obj.AddTerm(p.SectionOverfillStudents["1#0"], 1)
	m.CP.Minimize(obj)

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)

	assert.EqualValues(t, 15, solver.Value(p.SectionOverfillStudents["1#0"]))
}

// TestFacultyOverloadMinutesComputesExcess checks spec.md §4.9: a
// faculty's overload tracker equals their scheduled minutes minus
// max_minutes. max_minutes is 0 here, so the hard cap (applied only when
// max_minutes > 0) stays off and all 90 scheduled minutes count as excess.
func TestFacultyOverloadMinutesComputesExcess(t *testing.T) {
	cfg := &config.Config{TimeGranularity: 30}
	min, max := 1, 1
	subjects := []domain.Subject{{ID: 1, RequiredWeeklyMinutes: 90, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max}}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}, MaxMinutes: 0}}
	rooms := []domain.Room{{ID: 0, Capacity: 100}}
	batches := []domain.Batch{{ID: 1, Population: 20, EnrolledSubjects: []int{1}}}
	sentinels := domain.Sentinels{DummyFaculty: len(faculty), DummyRoom: len(rooms)}
	days := []domain.Day{0}
	window := func(domain.Day) domain.DayWindow { return domain.DayWindow{Start: 480, End: 600} }

	m := satbuild.BuildVariables(cfg, subjects, faculty, rooms, batches, sentinels, days, window)
	m.BuildMeetings()
	// Force the section onto the real faculty, actually meeting, so its
	// required 90 minutes land on faculty 0's load.
	m.CP.AddEquality(m.AssignedFaculty["1#0"], m.CP.NewConstant(0))
	m.CP.AddEquality(m.Meetings["1#0"][0].Active, m.CP.NewConstant(1))

	p := BuildPreference(m)

	obj := m.CP.NewLinearExpr()
	obj.AddTerm(p.FacultyOverloadMinutes[0], 1)
	m.CP.Minimize(obj)

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)

	assert.EqualValues(t, 90, solver.Value(p.FacultyOverloadMinutes[0]))
}

// TestNonPreferredSubjectFlagsQualifiedButNotPreferred checks spec.md
// §4.9: a faculty who is qualified but not preferred for a subject gets
// a non_preferred_subject boolean tied to their assignment.
func TestNonPreferredSubjectFlagsQualifiedButNotPreferred(t *testing.T) {
	cfg := &config.Config{TimeGranularity: 30}
	min, max := 1, 1
	subjects := []domain.Subject{{ID: 1, RequiredWeeklyMinutes: 60, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max}}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}}}
	rooms := []domain.Room{{ID: 0, Capacity: 100}}
	batches := []domain.Batch{{ID: 1, Population: 20, EnrolledSubjects: []int{1}}}
	sentinels := domain.Sentinels{DummyFaculty: len(faculty), DummyRoom: len(rooms)}
	days := []domain.Day{0}
	window := func(domain.Day) domain.DayWindow { return domain.DayWindow{Start: 480, End: 600} }

	m := satbuild.BuildVariables(cfg, subjects, faculty, rooms, batches, sentinels, days, window)
	m.BuildMeetings()
	m.CP.AddEquality(m.AssignedFaculty["1#0"], m.CP.NewConstant(0))
	p := BuildPreference(m)

	flag, ok := p.NonPreferredSubject["1#0#0"]
	require.True(t, ok, "expected a non_preferred_subject entry for qualified-not-preferred faculty 0")

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)
	assert.True(t, solver.BooleanValue(flag))
}
