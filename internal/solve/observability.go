package solve

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/or-tools/sat"
	"go.uber.org/zap"

	"github.com/edu-sched/cpsolver/pkg/config"
	"github.com/edu-sched/cpsolver/pkg/logger"
)

func loggerFor(base *zap.Logger, pass string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return logger.ForPass(base, passNumber(pass))
}

func passNumber(pass string) int {
	if pass == "pass2" {
		return 2
	}
	return 1
}

// configureSolver sets worker count, time limit, and — in deterministic
// mode — a single worker plus fixed seed, so two runs over identical
// inputs reproduce identical schedules (spec.md §5).
func configureSolver(solver *sat.CpSolver, cfg *config.Config, budget time.Duration) {
	solver.SetTimeLimit(budget)
	if cfg.Solver.Deterministic {
		solver.SetNumWorkers(1)
		solver.SetRandomSeed(cfg.Solver.Seed)
		return
	}
	workers := cfg.Solver.NumWorkers
	if workers <= 0 {
		workers = 1
	}
	solver.SetNumWorkers(workers)
	solver.SetRandomSeed(cfg.Solver.Seed)
}

// attachAnytimeCallback registers the per-improving-solution log line of
// spec.md §4.11: elapsed time, penalty, delta-branches, delta-conflicts,
// bound, relative gap. Every callback firing is also recorded into
// sampler so Summarize can bucket branch rates once Solve returns.
func attachAnytimeCallback(solver *sat.CpSolver, log *zap.Logger, pass int, sampler *BranchRateSampler) {
	start := solver.WallTime()
	var lastBranches, lastConflicts int64

	solver.OnSolutionCallback(func() {
		elapsed := solver.WallTime() - start
		branches := solver.NumBranches()
		conflicts := solver.NumConflicts()
		deltaBranches := branches - lastBranches
		deltaConflicts := conflicts - lastConflicts
		lastBranches, lastConflicts = branches, conflicts

		sampler.Record(elapsed, branches)

		log.Info("solve: improving solution",
			zap.Int("pass", pass),
			zap.Float64("elapsed_seconds", elapsed),
			zap.Float64("objective", solver.ObjectiveValue()),
			zap.Int64("delta_branches", deltaBranches),
			zap.Int64("delta_conflicts", deltaConflicts),
			zap.Float64("best_bound", solver.BestObjectiveBound()),
			zap.Float64("relative_gap", relativeGap(solver.ObjectiveValue(), solver.BestObjectiveBound())),
		)
	})
}

func relativeGap(objective, bound float64) float64 {
	if objective == 0 {
		return 0
	}
	return (objective - bound) / objective
}

// Stats is the per-pass statistics summary of spec.md §4.11: early/mid/
// late branch rates and a plateau flag, computed from every sample the
// anytime callback records during Solve, bucketed into thirds of the
// budget.
type Stats struct {
	EarlyBranchRate float64
	MidBranchRate   float64
	LateBranchRate  float64
	Plateaued       bool
}

// BranchRateSampler accumulates (elapsed, branches) samples from the
// anytime callback so Stats can be derived once Solve returns.
type BranchRateSampler struct {
	samples []sample
}

type sample struct {
	elapsed  float64
	branches int64
}

func (s *BranchRateSampler) Record(elapsed float64, branches int64) {
	s.samples = append(s.samples, sample{elapsed, branches})
}

// Summarize buckets samples into thirds of the elapsed budget and
// reports a plateau when the late bucket's branch rate falls below 10%
// of the early bucket's.
func (s *BranchRateSampler) Summarize(budget time.Duration) Stats {
	if len(s.samples) == 0 {
		return Stats{}
	}
	total := budget.Seconds()
	if total <= 0 {
		total = s.samples[len(s.samples)-1].elapsed
	}
	var early, mid, late sample
	var earlyN, midN, lateN int
	for i, sm := range s.samples {
		switch {
		case sm.elapsed < total/3:
			early = accumulate(early, sm)
			earlyN++
		case sm.elapsed < 2*total/3:
			mid = accumulate(mid, sm)
			midN++
		default:
			late = accumulate(late, sm)
			lateN++
		}
		_ = i
	}
	rate := func(acc sample, n int) float64 {
		if n == 0 || acc.elapsed == 0 {
			return 0
		}
		return float64(acc.branches) / acc.elapsed
	}
	er, mr, lr := rate(early, earlyN), rate(mid, midN), rate(late, lateN)
	return Stats{
		EarlyBranchRate: er,
		MidBranchRate:   mr,
		LateBranchRate:  lr,
		Plateaued:       er > 0 && lr < 0.1*er,
	}
}

func accumulate(acc sample, s sample) sample {
	return sample{elapsed: acc.elapsed + s.elapsed, branches: acc.branches + s.branches}
}

// writeStatsSummary writes the per-pass statistics summary file of
// spec.md §4.11 ("a per-pass statistics summary file is written after
// each solve") and §6 Outputs ("statistics summary (text)"). A blank
// dir (logging to stderr only, cfg.Log.Dir == "") skips the file.
func writeStatsSummary(dir string, pass int, stats Stats) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("pass%d-stats.txt", pass))
	body := fmt.Sprintf(
		"pass=%d\nearly_branch_rate=%.4f\nmid_branch_rate=%.4f\nlate_branch_rate=%.4f\nplateaued=%t\n",
		pass, stats.EarlyBranchRate, stats.MidBranchRate, stats.LateBranchRate, stats.Plateaued,
	)
	return os.WriteFile(path, []byte(body), 0o644)
}
