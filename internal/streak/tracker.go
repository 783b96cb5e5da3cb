// Package streak builds the active/vacant streak recurrences of
// spec.md §4.6 over a timeslot.Grid, and the hard/soft constraints of
// §4.7 that read them (MAX_CLASS, MIN_GAP, MIN_CLASS block, MAX_GAP).
package streak

import (
	"strconv"

	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
	"github.com/edu-sched/cpsolver/internal/timeslot"
)

// Pair is the per-slot (active_streak, vacant_streak) variable pair of
// spec.md §4.6.
type Pair struct {
	Active *sat.IntVar
	Vacant *sat.IntVar
}

// Tracker owns the streak variables for every (entity, day) row of a
// grid.
type Tracker struct {
	Streaks map[domain.EntityRef][]Pair
}

// Build attaches active_streak/vacant_streak recurrences for every slot
// of every entity-day in grid (spec.md §4.6):
//
//	active_streak[0] = ts[0]; active_streak[i] = 0 if ¬ts[i], else
//	active_streak[i-1]+1.
//	vacant_streak[0] = 1-ts[0]; vacant_streak[i] = 0 if ts[i], else
//	vacant_streak[i-1]+1.
func Build(m *satbuild.Model, grid *timeslot.Grid) *Tracker {
	t := &Tracker{Streaks: map[domain.EntityRef][]Pair{}}

	for ref, ts := range grid.TimeSlot {
		n := len(ts)
		pairs := make([]Pair, n)
		for i := 0; i < n; i++ {
			active := m.CP.NewIntVar(0, int64(n), streakName(ref, i, "active"))
			vacant := m.CP.NewIntVar(0, int64(n), streakName(ref, i, "vacant"))
			pairs[i] = Pair{Active: active, Vacant: vacant}

			if i == 0 {
				m.CP.AddEquality(active, ts[0]).OnlyEnforceIf(ts[0])
				m.CP.AddEquality(active, m.CP.NewConstant(0)).OnlyEnforceIf(ts[0].Not())
				m.CP.AddEquality(vacant, m.CP.NewConstant(1)).OnlyEnforceIf(ts[0].Not())
				m.CP.AddEquality(vacant, m.CP.NewConstant(0)).OnlyEnforceIf(ts[0])
				continue
			}

			prev := pairs[i-1]
			m.CP.AddEquality(active, m.CP.NewConstant(0)).OnlyEnforceIf(ts[i].Not())
			plusOne := m.CP.NewLinearExpr()
			plusOne.AddTerm(prev.Active, 1)
			plusOne.AddConstant(1)
			m.CP.AddEqualToLinearExpr(active, plusOne).OnlyEnforceIf(ts[i])

			m.CP.AddEquality(vacant, m.CP.NewConstant(0)).OnlyEnforceIf(ts[i])
			vPlusOne := m.CP.NewLinearExpr()
			vPlusOne.AddTerm(prev.Vacant, 1)
			vPlusOne.AddConstant(1)
			m.CP.AddEqualToLinearExpr(vacant, vPlusOne).OnlyEnforceIf(ts[i].Not())
		}
		t.Streaks[ref] = pairs
	}

	return t
}

func streakName(ref domain.EntityRef, slot int, which string) string {
	return which + "/" + ref.Key() + "/" + strconv.Itoa(slot)
}
