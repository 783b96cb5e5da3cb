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

func oneDayModel(t *testing.T) (*satbuild.Model, domain.EntityRef) {
	t.Helper()
	cfg := &config.Config{TimeGranularity: 30}
	min, max := 1, 1
	subjects := []domain.Subject{{ID: 1, RequiredWeeklyMinutes: 60, IdealNumSections: 1, MinMeetings: &min, MaxMeetings: &max}}
	faculty := []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}}}
	rooms := []domain.Room{{ID: 0, Capacity: 40}}
	batches := []domain.Batch{{ID: 1, Population: 20, EnrolledSubjects: []int{1}}}
	sentinels := domain.Sentinels{DummyFaculty: 1, DummyRoom: 1}
	days := []domain.Day{0}
	window := func(domain.Day) domain.DayWindow { return domain.DayWindow{Start: 480, End: 600} }

	m := satbuild.BuildVariables(cfg, subjects, faculty, rooms, batches, sentinels, days, window)
	m.BuildMeetings()
	m.BuildResourceExclusion()

	ref := domain.EntityRef{Kind: domain.EntityFaculty, ID: 0, Day: 0}
	return m, ref
}

// TestGhostControllerConservationLaw checks §8 invariant 9: for the
// ghost-interval controller, G·Σghost_active + Σ active-class durations
// (+ external minutes for batches) equals the total day minutes.
func TestGhostControllerConservationLaw(t *testing.T) {
	m, facultyRef := oneDayModel(t)
	grid := GhostController{}.Build(m, Entities(m.Faculty, m.Batches, m.Days))
	m.ApplyResourceNoOverlap()

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)

	ts := grid.TimeSlot[facultyRef]
	require.Len(t, ts, 4) // 120 minutes / 30-minute granularity

	var occupiedSlots int64
	for _, b := range ts {
		if solver.BooleanValue(b) {
			occupiedSlots++
		}
	}
	var classMinutes int64
	for _, dur := range m.EntityActiveDurations[facultyRef] {
		classMinutes += solver.Value(dur)
	}
	// time_slot = ¬ghost_active, so occupied slots * granularity must equal
	// the scheduled class minutes on a day with no external commitments.
	assert.Equal(t, classMinutes, occupiedSlots*30)
}
