// Package solve implements the two-pass lexicographic driver of spec.md
// §4.10: Pass 1 minimizes structural violations, Pass 2 locks that
// minimum and minimizes a weighted preference objective, with the
// anytime-callback and per-pass logging of §4.11.
package solve

import (
	"time"

	"github.com/edu-sched/cpsolver/internal/timeslot"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// GridController selects which spec.md §4.5 controller builds the
// time-slot grid. Downstream code never branches on it (spec.md §9).
type GridController string

const (
	GridGhost  GridController = "ghost"
	GridOracle GridController = "slot_oracle"
)

// Options configures a single Run beyond what *config.Config already
// carries — split out because a caller may want to override the grid
// controller or run a structural-only solve without touching env vars.
type Options struct {
	Controller GridController
	Pass1Only  bool
}

func (o Options) controller() timeslot.Controller {
	if o.Controller == GridOracle {
		return timeslot.SlotOracleController{}
	}
	return timeslot.GhostController{}
}

func pass1Deadline(cfg *config.Config) time.Duration {
	if cfg.Solver.Pass1TimeBudget <= 0 {
		return 30 * time.Second
	}
	return cfg.Solver.Pass1TimeBudget
}

func pass2Deadline(cfg *config.Config) time.Duration {
	if cfg.Solver.Pass2TimeBudget <= 0 {
		return 30 * time.Second
	}
	return cfg.Solver.Pass2TimeBudget
}
