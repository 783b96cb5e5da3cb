package solve

import (
	"github.com/google/or-tools/sat"
	"go.uber.org/zap"

	"github.com/edu-sched/cpsolver/pkg/config"
)

// Pass1Result carries Pass 1's solved structural snapshot, indexed by
// construction order so Pass 2 can pin (or limit) the same booleans in
// its own, freshly built model (spec.md §4.10).
type Pass1Result struct {
	Status              sat.Status
	ObjectiveValue      float64
	StructuralValues    []bool
	DayGapValues        []bool
	StructuralSum       int64
	Solver              *sat.CpSolver
	Stats               Stats
}

// RunPass1 minimizes Σ(structural booleans) + DAY_GAP_PENALTY·Σ(day-gap
// booleans) under the Pass-1 time budget (spec.md §4.10). Day-gap gets
// its own weight (see Model.DayGapViolations); every other structural
// boolean counts as 1 — see DESIGN.md for why DAY_GAP_PENALTY is split
// out instead of folded into a uniform count.
func RunPass1(built *Built, cfg *config.Config, log *zap.Logger) (Pass1Result, error) {
	m := built.Model

	obj := m.CP.NewLinearExpr()
	for _, b := range m.StructuralViolations {
		obj.AddTerm(b, 1)
	}
	dayGapWeight := int64(cfg.Penalties.DayGapPenalty)
	if dayGapWeight <= 0 {
		dayGapWeight = 1
	}
	for _, b := range m.DayGapViolations {
		obj.AddTerm(b, dayGapWeight)
	}
	m.CP.Minimize(obj)

	budget := pass1Deadline(cfg)
	solver := sat.NewCpSolver()
	configureSolver(solver, cfg, budget)

	runLog := loggerFor(log, "pass1")
	sampler := &BranchRateSampler{}
	attachAnytimeCallback(solver, runLog, 1, sampler)

	status := solver.Solve(m.CP)
	runLog.Info("pass1: solve finished", zap.String("status", status.String()))

	stats := sampler.Summarize(budget)
	if err := writeStatsSummary(cfg.Log.Dir, 1, stats); err != nil {
		runLog.Warn("pass1: failed to write statistics summary", zap.Error(err))
	}

	res := Pass1Result{Status: status, Solver: solver, Stats: stats}
	if status != sat.Optimal && status != sat.Feasible {
		return res, nil
	}

	res.ObjectiveValue = solver.ObjectiveValue()
	res.StructuralValues = make([]bool, len(m.StructuralViolations))
	for i, b := range m.StructuralViolations {
		v := solver.BooleanValue(b)
		res.StructuralValues[i] = v
		if v {
			res.StructuralSum++
		}
	}
	res.DayGapValues = make([]bool, len(m.DayGapViolations))
	for i, b := range m.DayGapViolations {
		v := solver.BooleanValue(b)
		res.DayGapValues[i] = v
		if v {
			res.StructuralSum += dayGapWeight
		}
	}
	return res, nil
}
