package solve

import (
	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/constraints"
	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
	"github.com/edu-sched/cpsolver/internal/streak"
	"github.com/edu-sched/cpsolver/internal/timeslot"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// Built bundles everything one pass's model construction produces: the
// CP model itself plus every downstream layer's output, so a pass can
// read values (Pass 1) or add a lock + preference objective (Pass 2)
// without re-deriving any of it.
type Built struct {
	Model          *satbuild.Model
	Grid           *timeslot.Grid
	Streaks        *streak.Tracker
	StreakViol     *streak.Violations
	FacultyDayGaps map[int]map[domain.Day]*sat.BoolVar
	BatchDayGaps   map[int]map[domain.Day]*sat.BoolVar
	Preference     *constraints.Preference
}

// dayWindowFunc returns the scheduling-day window spec.md §6 describes: the
// last-indexed day uses FRIDAY_END_MINUTES, every other day uses
// DAY_END_MINUTES.
func dayWindowFunc(cfg *config.Config, lastDay domain.Day) func(domain.Day) domain.DayWindow {
	return func(d domain.Day) domain.DayWindow {
		end := cfg.DayEndMinutes
		if d == lastDay {
			end = cfg.FridayEndMinutes
		}
		return domain.DayWindow{Start: domain.Minutes(cfg.DayStartMinutes), End: domain.Minutes(end)}
	}
}

// buildModel constructs one pass's full constraint model: variables and
// reification (§4.2), meetings (§4.3), resource exclusion (§4.4), the
// time-slot grid (§4.5), streak tracker and constraints (§4.6, §4.7),
// and the structural constraint families (§4.8). Each call returns a
// fresh *satbuild.Model — Pass 2 never reuses Pass 1's model (spec.md
// §4.10, §5).
func buildModel(cfg *config.Config, subjects []domain.Subject, faculty []domain.Faculty, rooms []domain.Room, batches []domain.Batch, opts Options) *Built {
	sentinels := domain.Sentinels{DummyFaculty: len(faculty), DummyRoom: len(rooms)}
	days := make([]domain.Day, len(cfg.SchedulingDays))
	for i := range cfg.SchedulingDays {
		days[i] = domain.Day(i)
	}
	lastDay := domain.Day(len(days) - 1)
	window := dayWindowFunc(cfg, lastDay)

	m := satbuild.BuildVariables(cfg, subjects, faculty, rooms, batches, sentinels, days, window)
	m.BuildMeetings()
	m.BuildResourceExclusion()

	grid := opts.controller().Build(m, timeslot.Entities(faculty, batches, days))
	m.ApplyResourceNoOverlap()

	tracker := streak.Build(m, grid)
	bounds := streak.BoundsFromConfig(cfg)
	streakViol := streak.AttachConstraints(m, grid, tracker, bounds)

	facultyIDs := make([]int, len(faculty))
	for i, f := range faculty {
		facultyIDs[i] = f.ID
	}
	batchIDs := make([]int, len(batches))
	for i, b := range batches {
		batchIDs[i] = b.ID
	}
	facDayGaps := constraints.DayGapBooleans(m, grid, domain.EntityFaculty, facultyIDs, days)
	batchDayGaps := constraints.DayGapBooleans(m, grid, domain.EntityBatch, batchIDs, days)
	constraints.MaxSubjectsPerFaculty(m)
	constraints.LinkedPairs(m)
	constraints.RoomCapacity(m)

	pref := constraints.BuildPreference(m)

	return &Built{
		Model: m, Grid: grid, Streaks: tracker, StreakViol: streakViol,
		FacultyDayGaps: facDayGaps, BatchDayGaps: batchDayGaps, Preference: pref,
	}
}
