package timeslot

import (
	"testing"

	"github.com/google/or-tools/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// TestSlotOracleControllerPinsExternalMeetingSlots is scenario E4: a
// batch's fixed external meeting forces time_slot=1 for every slot it
// overlaps, regardless of the solver's own choices (spec.md §4.5, §8).
func TestSlotOracleControllerPinsExternalMeetingSlots(t *testing.T) {
	cfg := &config.Config{TimeGranularity: 30}
	min, max := 1, 1
	subjects := []domain.Subject{{ID: 1, RequiredWeeklyMinutes: 60, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max}}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}}}
	rooms := []domain.Room{{ID: 0, Capacity: 40}}
	batches := []domain.Batch{{
		ID: 1, Population: 20, EnrolledSubjects: []int{1},
		ExternalMeetings: []domain.ExternalMeeting{{Day: 0, Start: 510, End: 570, Label: "Assembly"}},
	}}
	sentinels := domain.Sentinels{DummyFaculty: 1, DummyRoom: 1}
	days := []domain.Day{0}
	window := func(domain.Day) domain.DayWindow { return domain.DayWindow{Start: 480, End: 600} }

	m := satbuild.BuildVariables(cfg, subjects, faculty, rooms, batches, sentinels, days, window)
	m.BuildMeetings()
	m.BuildResourceExclusion()

	grid := SlotOracleController{}.Build(m, Entities(m.Faculty, m.Batches, m.Days))
	m.ApplyResourceNoOverlap()

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)

	batchRef := domain.EntityRef{Kind: domain.EntityBatch, ID: 1, Day: 0}
	ts := grid.TimeSlot[batchRef]
	// Slots 1 (510-540) and 2 (540-570) fall inside 510-570.
	assert.True(t, solver.BooleanValue(ts[1]))
	assert.True(t, solver.BooleanValue(ts[2]))
}
