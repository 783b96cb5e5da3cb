package satbuild

import (
	"testing"

	"github.com/google/or-tools/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// TestResourceExclusionPreventsOverlap checks §8 invariant 3: no two
// active meetings sharing the same faculty (here forced identical)
// overlap in time, once ApplyResourceNoOverlap has run (spec.md §4.4).
func TestResourceExclusionPreventsOverlap(t *testing.T) {
	cfg := &config.Config{TimeGranularity: 30}
	min, max := 1, 1
	subjects := []domain.Subject{
		{ID: 1, RequiredWeeklyMinutes: 90, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max},
		{ID: 2, RequiredWeeklyMinutes: 90, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max},
	}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true, 2: true}}}
	rooms := []domain.Room{{ID: 0, Capacity: 40}}
	batches := []domain.Batch{
		{ID: 1, Population: 20, EnrolledSubjects: []int{1}},
		{ID: 2, Population: 20, EnrolledSubjects: []int{2}},
	}
	sentinels := domain.Sentinels{DummyFaculty: 1, DummyRoom: 1}
	days := []domain.Day{0}
	window := func(domain.Day) domain.DayWindow { return domain.DayWindow{Start: 480, End: 600} }

	m := BuildVariables(cfg, subjects, faculty, rooms, batches, sentinels, days, window)
	m.BuildMeetings()
	m.BuildResourceExclusion()
	m.ApplyResourceNoOverlap()

	// Force both sections onto the same faculty and room so NoOverlap
	// (not resource choice) is what has to keep them apart.
	for _, section := range m.Sections {
		key := section.Key()
		m.CP.AddEquality(m.AssignedFaculty[key], m.CP.NewConstant(0))
		m.CP.AddEquality(m.AssignedRoom[key], m.CP.NewConstant(0))
	}

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)

	type window2 struct{ start, end int64 }
	var actives []window2
	for _, section := range m.Sections {
		mv := m.Meetings[section.Key()][0]
		if solver.BooleanValue(mv.Active) {
			actives = append(actives, window2{solver.Value(mv.Start), solver.Value(mv.End)})
		}
	}
	if len(actives) == 2 {
		a, b := actives[0], actives[1]
		assert.True(t, a.end <= b.start || b.end <= a.start, "overlapping meetings on the same faculty/room")
	}
}
