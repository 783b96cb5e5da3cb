package solve

import (
	"runtime"

	"github.com/google/or-tools/sat"
	"go.uber.org/zap"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/pkg/config"
	appErrors "github.com/edu-sched/cpsolver/pkg/errors"
	"github.com/edu-sched/cpsolver/pkg/logger"
)

// Outcome is the pipeline's top-level result envelope (spec.md §4.11,
// §6 Outputs): the solved Pass-2 model for value lookups (or Pass-1's,
// when Pass 2 is skipped), both objective values, and the process
// result-code convention of spec.md §6.
type Outcome struct {
	Pass1         Pass1Result
	Pass2         Pass2Result
	Pass2Ran      bool
	Built         *Built
	ResultCode    int
}

// Run executes the full two-pass pipeline of spec.md §4.10 over an
// already-normalized, already-prefiltered entity set: build Pass 1,
// solve it, discard it, build Pass 2 fresh, lock the structural outcome,
// solve it. If Pass 1 returns infeasible, the pipeline returns
// immediately without attempting Pass 2 (spec.md §7 SolverInfeasible).
func Run(cfg *config.Config, subjects []domain.Subject, faculty []domain.Faculty, rooms []domain.Room, batches []domain.Batch, opts Options, log *zap.Logger) (*Outcome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = logger.ForRun(log)

	pass1Built := buildModel(cfg, subjects, faculty, rooms, batches, opts)
	pass1, err := RunPass1(pass1Built, cfg, log)
	if err != nil {
		return nil, err
	}
	if pass1.Status != sat.Optimal && pass1.Status != sat.Feasible {
		return &Outcome{Pass1: pass1, Built: pass1Built, ResultCode: 1}, appErrors.Clone(appErrors.ErrSolverInfeasiblePass1, "pass 1 found no feasible relaxed solution under the time budget")
	}

	if opts.Pass1Only || !cfg.Solver.RunPass2 {
		return &Outcome{Pass1: pass1, Built: pass1Built, ResultCode: 0}, nil
	}

	// Release Pass 1's model before building Pass 2 fresh and force
	// reclamation (spec.md §4.10, §5 — avoid doubling peak memory; mirrors
	// the original's triple gc.collect()+sleep).
	pass1Built = nil
	runtime.GC()
	runtime.GC()
	runtime.GC()

	pass2Built := buildModel(cfg, subjects, faculty, rooms, batches, opts)
	pass2, err := RunPass2(pass2Built, pass1, cfg, log)
	if err != nil {
		return nil, err
	}

	return &Outcome{Pass1: pass1, Pass2: pass2, Pass2Ran: true, Built: pass2Built, ResultCode: 0}, nil
}

// Solver returns whichever pass's solver holds the values callers should
// read: Pass 2's when it ran, Pass 1's otherwise.
func (o *Outcome) Solver() *sat.CpSolver {
	if o.Pass2Ran {
		return o.Pass2.Solver
	}
	return o.Pass1.Solver
}
