package streak

import (
	"strconv"
	"testing"

	"github.com/google/or-tools/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
	"github.com/edu-sched/cpsolver/internal/timeslot"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// forcedGrid builds a single-entity, n-slot grid whose time_slot booleans
// are pinned to values, bypassing satbuild/timeslot entirely so the
// recurrence and constraint logic can be tested in isolation.
func forcedGrid(m *satbuild.Model, ref domain.EntityRef, values []int64) *timeslot.Grid {
	ts := make([]*sat.BoolVar, len(values))
	for i, v := range values {
		b := m.CP.NewBoolVar(ref.Key() + "/forced/" + strconv.Itoa(i))
		m.CP.AddEquality(b, m.CP.NewConstant(v))
		ts[i] = b
	}
	return &timeslot.Grid{TimeSlot: map[domain.EntityRef][]*sat.BoolVar{ref: ts}}
}

func newModel() *satbuild.Model {
	return &satbuild.Model{CP: sat.NewCpModel()}
}

// TestBuildRecurrenceMatchesExpectedStreaks checks spec.md §4.6's
// active_streak/vacant_streak recurrence against a hand-worked occupancy
// pattern: 1,1,0,1 -> active 1,2,0,1 and vacant 0,0,1,0.
func TestBuildRecurrenceMatchesExpectedStreaks(t *testing.T) {
	m := newModel()
	ref := domain.EntityRef{Kind: domain.EntityFaculty, ID: 0, Day: 0}
	grid := forcedGrid(m, ref, []int64{1, 1, 0, 1})

	tr := Build(m, grid)

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)

	pairs := tr.Streaks[ref]
	wantActive := []int64{1, 2, 0, 1}
	wantVacant := []int64{0, 0, 1, 0}
	for i, p := range pairs {
		assert.Equal(t, wantActive[i], solver.Value(p.Active), "active_streak[%d]", i)
		assert.Equal(t, wantVacant[i], solver.Value(p.Vacant), "vacant_streak[%d]", i)
	}
}

// TestMaxClassSlotsHardConstraintRejectsOverlongBlock checks §8 invariant
// 4: a block of consecutive classes longer than MAX_CLASS_SLOTS cannot be
// solved feasibly once AttachConstraints has run.
func TestMaxClassSlotsHardConstraintRejectsOverlongBlock(t *testing.T) {
	m := newModel()
	ref := domain.EntityRef{Kind: domain.EntityFaculty, ID: 0, Day: 0}
	// Three consecutive active slots, MAX_CLASS_SLOTS=2: infeasible.
	grid := forcedGrid(m, ref, []int64{1, 1, 1})
	tr := Build(m, grid)
	bounds := Bounds{MaxClassSlots: 2, MinGapSlots: 1, MinClassSlots: 1, MaxGapSlots: 4}
	AttachConstraints(m, grid, tr, bounds)

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	assert.Equal(t, sat.Infeasible, status)
}

// TestMinGapSlotsHardConstraintRejectsShortGap checks the MIN_GAP floor:
// a one-slot gap between two classes (vacant, class, vacant, class) is
// shorter than MinGapSlots=2, so no feasible solution exists once the
// gap_ends_here implication fires. The gap is placed after slot 0 on
// purpose: AttachConstraints only recognizes a gap as "between classes"
// once vacant_streak[i] < i, which a gap starting at slot 0 never
// satisfies.
func TestMinGapSlotsHardConstraintRejectsShortGap(t *testing.T) {
	m := newModel()
	ref := domain.EntityRef{Kind: domain.EntityFaculty, ID: 0, Day: 0}
	grid := forcedGrid(m, ref, []int64{0, 1, 0, 1})
	tr := Build(m, grid)
	bounds := Bounds{MaxClassSlots: 4, MinGapSlots: 2, MinClassSlots: 1, MaxGapSlots: 4}
	AttachConstraints(m, grid, tr, bounds)

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	assert.Equal(t, sat.Infeasible, status)
}

// TestBlockUnderfillTrackerScoresSlack confirms the block-underfill soft
// tracker: a lone one-slot class against MinClassSlots=2 should report a
// block underfill of 1 at the slot where the block ends.
func TestBlockUnderfillTrackerScoresSlack(t *testing.T) {
	m := newModel()
	ref := domain.EntityRef{Kind: domain.EntityFaculty, ID: 0, Day: 0}
	grid := forcedGrid(m, ref, []int64{1, 0, 0, 0})
	tr := Build(m, grid)
	bounds := Bounds{MaxClassSlots: 4, MinGapSlots: 0, MinClassSlots: 2, MaxGapSlots: 4}
	v := AttachConstraints(m, grid, tr, bounds)

	obj := m.CP.NewLinearExpr()
	obj.AddTerm(v.BlockUnderfill[ref][0], 1)
	m.CP.Minimize(obj)

	solver := sat.NewCpSolver()
	status := solver.Solve(m.CP)
	require.True(t, status == sat.Optimal || status == sat.Feasible)

	assert.EqualValues(t, 1, solver.Value(v.BlockUnderfill[ref][0]))
}

func TestSlotsPerHourAndBoundsFromConfig(t *testing.T) {
	cfg := &config.Config{
		TimeGranularity:          30,
		MaxContinuousClassHours:  3,
		MinContinuousClassHours:  1,
		MaxGapHours:              2,
		MinGapHours:              0.5,
	}
	assert.Equal(t, 2.0, SlotsPerHour(cfg))
	b := BoundsFromConfig(cfg)
	assert.Equal(t, Bounds{MaxClassSlots: 6, MinGapSlots: 1, MinClassSlots: 2, MaxGapSlots: 4}, b)
}
