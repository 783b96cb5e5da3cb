package solve

import (
	"github.com/google/or-tools/sat"
	"go.uber.org/zap"

	"github.com/edu-sched/cpsolver/internal/constraints"
	"github.com/edu-sched/cpsolver/internal/streak"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// Pass2Result carries Pass 2's solved preference objective.
type Pass2Result struct {
	Status         sat.Status
	ObjectiveValue float64
	Solver         *sat.CpSolver
	Stats          Stats
}

// lockStructural pins (lock mode "exact") or bounds (lock mode "limit")
// Pass 2's own structural booleans to Pass 1's solved values, matching
// by construction-order index since both passes build their structural
// slices via the identical deterministic code path (spec.md §4.10).
func lockStructural(built *Built, pass1 Pass1Result, cfg *config.Config) {
	m := built.Model

	if cfg.Pass2LockMode == config.LockModeExact {
		for i, b := range m.StructuralViolations {
			if i >= len(pass1.StructuralValues) {
				break
			}
			pinBool(m, b, pass1.StructuralValues[i])
		}
		for i, b := range m.DayGapViolations {
			if i >= len(pass1.DayGapValues) {
				break
			}
			pinBool(m, b, pass1.DayGapValues[i])
		}
		return
	}

	// "limit": Σ structural <= S*.
	expr := m.CP.NewLinearExpr()
	dayGapWeight := int64(cfg.Penalties.DayGapPenalty)
	if dayGapWeight <= 0 {
		dayGapWeight = 1
	}
	for _, b := range m.StructuralViolations {
		expr.AddTerm(b, 1)
	}
	for _, b := range m.DayGapViolations {
		expr.AddTerm(b, dayGapWeight)
	}
	m.CP.AddLessOrEqualToLinearExpr(expr, m.CP.NewConstant(pass1.StructuralSum))
}

func pinBool(m interface {
	AddEquality(a, b sat.IntVarLike) *sat.Constraint
	NewConstant(v int64) *sat.IntVar
}, b *sat.BoolVar, value bool) {
	want := int64(0)
	if value {
		want = 1
	}
	m.AddEquality(b, m.NewConstant(want))
}

// RunPass2 builds the full soft objective P of spec.md §4.9 (per-hour
// weights converted to per-slot by dividing by slots_per_hour = 60/G)
// and minimizes it under the Pass-2 time budget, holding the Pass-1
// structural outcome fixed (or bounded).
func RunPass2(built *Built, pass1 Pass1Result, cfg *config.Config, log *zap.Logger) (Pass2Result, error) {
	m := built.Model
	lockStructural(built, pass1, cfg)

	slotsPerHour := streak.SlotsPerHour(cfg)
	w := cfg.Penalties

	obj := m.CP.NewLinearExpr()
	for _, key := range sortedIntKeys(built.Preference.FacultyOverloadMinutes) {
		obj.AddTerm(built.Preference.FacultyOverloadMinutes[key], int64(w.FacultyOverloadPerMinute))
	}
	for _, key := range sortedIntKeys(built.Preference.FacultyUnderfillMinutes) {
		// No distinct per-minute underfill weight is named in spec.md §6;
		// reuse FACULTY_OVERLOAD_PER_MINUTE symmetrically (see DESIGN.md).
		obj.AddTerm(built.Preference.FacultyUnderfillMinutes[key], int64(w.FacultyOverloadPerMinute))
	}
	for _, key := range constraints.SortedKeys(built.Preference.SectionOverfillStudents) {
		obj.AddTerm(built.Preference.SectionOverfillStudents[key], int64(w.SectionOverfillPerStudent))
	}
	for _, key := range constraints.SortedKeys(built.Preference.SectionUnderfillStudents) {
		obj.AddTerm(built.Preference.SectionUnderfillStudents[key], int64(w.SectionUnderfillPerStudent))
	}
	for _, key := range constraints.SortedKeys(built.Preference.RoomOvercapacityStudents) {
		obj.AddTerm(built.Preference.RoomOvercapacityStudents[key], int64(w.RoomOvercapacityPerStudent))
	}
	for _, key := range sortedNonPreferredKeys(built.Preference.NonPreferredSubject) {
		obj.AddTerm(built.Preference.NonPreferredSubject[key], int64(w.NonPreferredSubjectPerSection))
	}

	blockWeight := scaledWeight(w.UnderMinimumBlockPerHour, slotsPerHour)
	gapWeight := scaledWeight(w.ExcessGapPerHour, slotsPerHour)
	for _, ref := range sortedEntityRefs(built.StreakViol.BlockUnderfill) {
		for _, v := range built.StreakViol.BlockUnderfill[ref] {
			obj.AddTerm(v, blockWeight)
		}
	}
	for _, ref := range sortedEntityRefs(built.StreakViol.ExcessGap) {
		for _, v := range built.StreakViol.ExcessGap[ref] {
			obj.AddTerm(v, gapWeight)
		}
	}
	// EXCESS_CONTINUOUS_CLASS_PER_HOUR and UNDERFILL_GAP_PER_HOUR have no
	// live tracker: MAX_CLASS and MIN_GAP are enforced as hard caps
	// (spec.md §4.7), so their "excess"/"underfill" violations can never
	// be nonzero — see DESIGN.md's Open Question note on the two
	// historical violation-report definitions (spec.md §9).
	_ = w.ExcessContinuousClassPerHour
	_ = w.UnderfillGapPerHour
	_ = w.GenedUnderMinimumPerStudent // report-only, spec.md §6

	m.CP.Minimize(obj)

	budget := pass2Deadline(cfg)
	solver := sat.NewCpSolver()
	configureSolver(solver, cfg, budget)
	runLog := loggerFor(log, "pass2")
	sampler := &BranchRateSampler{}
	attachAnytimeCallback(solver, runLog, 2, sampler)

	status := solver.Solve(m.CP)
	runLog.Info("pass2: solve finished", zap.String("status", status.String()))

	stats := sampler.Summarize(budget)
	if err := writeStatsSummary(cfg.Log.Dir, 2, stats); err != nil {
		runLog.Warn("pass2: failed to write statistics summary", zap.Error(err))
	}

	res := Pass2Result{Status: status, Solver: solver, Stats: stats}
	if status == sat.Optimal || status == sat.Feasible {
		res.ObjectiveValue = solver.ObjectiveValue()
	}
	return res, nil
}

func scaledWeight(perHour float64, slotsPerHour float64) int64 {
	if slotsPerHour <= 0 {
		return int64(perHour)
	}
	return int64(perHour / slotsPerHour)
}
