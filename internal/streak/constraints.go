package streak

import (
	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
	"github.com/edu-sched/cpsolver/internal/timeslot"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// Bounds are the MAX_CLASS_SLOTS/MIN_GAP_SLOTS/MIN_CLASS_SLOTS/
// MAX_GAP_SLOTS integers of spec.md §4.7, derived from config hours
// divided by the time granularity G.
type Bounds struct {
	MaxClassSlots int
	MinGapSlots   int
	MinClassSlots int
	MaxGapSlots   int
}

// SlotsPerHour returns 60/G, the conversion factor §4.10 uses to turn
// per-hour penalty weights into per-slot weights.
func SlotsPerHour(cfg *config.Config) float64 {
	return 60.0 / float64(cfg.TimeGranularity)
}

func BoundsFromConfig(cfg *config.Config) Bounds {
	spH := SlotsPerHour(cfg)
	return Bounds{
		MaxClassSlots: int(cfg.MaxContinuousClassHours * spH),
		MinGapSlots:   int(cfg.MinGapHours * spH),
		MinClassSlots: int(cfg.MinContinuousClassHours * spH),
		MaxGapSlots:   int(cfg.MaxGapHours * spH),
	}
}

// Violations holds the soft per-slot trackers of spec.md §4.7, attached
// to the Pass-2 objective only (internal/solve).
type Violations struct {
	BlockUnderfill map[domain.EntityRef][]*sat.IntVar
	ExcessGap      map[domain.EntityRef][]*sat.IntVar
}

// AttachConstraints attaches the hard per-slot rules of spec.md §4.7
// (MAX_CLASS ceiling, MIN_GAP floor on a gap ending in a class) and
// builds the soft block/gap trackers for later objective assembly.
func AttachConstraints(m *satbuild.Model, grid *timeslot.Grid, t *Tracker, b Bounds) *Violations {
	v := &Violations{BlockUnderfill: map[domain.EntityRef][]*sat.IntVar{}, ExcessGap: map[domain.EntityRef][]*sat.IntVar{}}

	for ref, ts := range grid.TimeSlot {
		pairs := t.Streaks[ref]
		n := len(ts)
		blockViol := make([]*sat.IntVar, n)
		gapViol := make([]*sat.IntVar, n)

		for i := 0; i < n; i++ {
			// Hard: active_streak[i] <= MAX_CLASS_SLOTS.
			m.CP.AddLessOrEqual(pairs[i].Active, m.CP.NewConstant(int64(b.MaxClassSlots)))

			var gapEndsHere *sat.BoolVar
			if i < n-1 {
				notTsI := ts[i].Not()
				tsNext := ts[i+1]
				earlierClass := m.CP.NewBoolVar(streakName(ref, i, "earlier_class"))
				m.CP.AddLessThan(pairs[i].Vacant, m.CP.NewConstant(int64(i))).OnlyEnforceIf(earlierClass)
				m.CP.AddGreaterOrEqual(pairs[i].Vacant, m.CP.NewConstant(int64(i))).OnlyEnforceIf(earlierClass.Not())

				gapEndsHere = m.CP.NewBoolVar(streakName(ref, i, "gap_ends_here"))
				m.CP.AddBoolAnd([]*sat.BoolVar{notTsI, tsNext, earlierClass}).OnlyEnforceIf(gapEndsHere)
				m.CP.AddBoolOr([]*sat.BoolVar{ts[i], tsNext.Not(), earlierClass.Not()}).OnlyEnforceIf(gapEndsHere.Not())

				// Hard: gap_ends_here ⇒ vacant_streak[i] >= MIN_GAP_SLOTS.
				m.CP.AddGreaterOrEqual(pairs[i].Vacant, m.CP.NewConstant(int64(b.MinGapSlots))).OnlyEnforceIf(gapEndsHere)
			}

			// Soft: block_ends = ts[i] ∧ (i=N-1 ∨ ¬ts[i+1]).
			blockEnds := m.CP.NewBoolVar(streakName(ref, i, "block_ends"))
			if i == n-1 {
				m.CP.AddEquality(blockEnds, ts[i])
			} else {
				m.CP.AddBoolAnd([]*sat.BoolVar{ts[i], ts[i+1].Not()}).OnlyEnforceIf(blockEnds)
				m.CP.AddBoolOr([]*sat.BoolVar{ts[i].Not(), ts[i+1]}).OnlyEnforceIf(blockEnds.Not())
			}
			bv := m.CP.NewIntVar(0, int64(b.MinClassSlots), streakName(ref, i, "block_violation"))
			deficit := m.CP.NewLinearExpr()
			deficit.AddConstant(int64(b.MinClassSlots))
			deficit.AddTerm(pairs[i].Active, -1)
			m.CP.AddGreaterOrEqualToLinearExpr(bv, deficit).OnlyEnforceIf(blockEnds)
			m.CP.AddEquality(bv, m.CP.NewConstant(0)).OnlyEnforceIf(blockEnds.Not())
			blockViol[i] = bv

			// Soft: with gap_ends_here, violation >= vacant_streak[i] - MAX_GAP_SLOTS.
			gv := m.CP.NewIntVar(0, int64(n), streakName(ref, i, "gap_violation"))
			if gapEndsHere != nil {
				excess := m.CP.NewLinearExpr()
				excess.AddTerm(pairs[i].Vacant, 1)
				excess.AddConstant(int64(-b.MaxGapSlots))
				m.CP.AddGreaterOrEqualToLinearExpr(gv, excess).OnlyEnforceIf(gapEndsHere)
				m.CP.AddEquality(gv, m.CP.NewConstant(0)).OnlyEnforceIf(gapEndsHere.Not())
			} else {
				m.CP.AddEquality(gv, m.CP.NewConstant(0))
			}
			gapViol[i] = gv
		}

		v.BlockUnderfill[ref] = blockViol
		v.ExcessGap[ref] = gapViol
	}

	return v
}
