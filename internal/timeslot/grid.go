// Package timeslot builds the per-entity-per-day occupancy grid of
// spec.md §4.5 behind a small controller interface: downstream code
// (internal/streak, internal/constraints) only ever reads Grid.TimeSlot,
// never which controller produced it (spec.md §9 — variant modeling).
package timeslot

import (
	"sort"

	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
)

// Grid exposes the boolean occupancy contract every controller produces:
// time_slot[i] ∈ {0,1} per (entity, day, slot) (spec.md §4.5).
type Grid struct {
	TimeSlot map[domain.EntityRef][]*sat.BoolVar
	Slots    map[domain.EntityRef][]domain.Slot
}

// Controller is the tagged-union interface spec.md §9 describes: "ghost"
// or "slot_oracle", both exposing the same Grid contract.
type Controller interface {
	Build(m *satbuild.Model, entities []domain.EntityRef) *Grid
}

// Entities enumerates every (kind, id, day) grid row the pipeline needs:
// one per faculty-day and one per batch-day (spec.md §3, §4.5), in
// deterministic (sorted) order.
func Entities(faculty []domain.Faculty, batches []domain.Batch, days []domain.Day) []domain.EntityRef {
	facultyIDs := satbuild.SortedFacultyIDs(faculty)
	batchIDs := satbuild.SortedBatchIDs(batches)
	var out []domain.EntityRef
	for _, fid := range facultyIDs {
		for _, d := range days {
			out = append(out, domain.EntityRef{Kind: domain.EntityFaculty, ID: fid, Day: d})
		}
	}
	for _, bid := range batchIDs {
		for _, d := range days {
			out = append(out, domain.EntityRef{Kind: domain.EntityBatch, ID: bid, Day: d})
		}
	}
	return out
}

func newGrid() *Grid {
	return &Grid{TimeSlot: map[domain.EntityRef][]*sat.BoolVar{}, Slots: map[domain.EntityRef][]domain.Slot{}}
}

func slotsFor(ref domain.EntityRef, window domain.DayWindow, granularity domain.Minutes) []domain.Slot {
	n := window.SlotCount(granularity)
	slots := make([]domain.Slot, n)
	for i := 0; i < n; i++ {
		slots[i] = domain.Slot{
			Entity: ref,
			Index:  i,
			Start:  window.Start + domain.Minutes(i)*granularity,
			End:    window.Start + domain.Minutes(i+1)*granularity,
		}
	}
	return slots
}

func externalMinutesOnDay(b domain.Batch, day domain.Day, window domain.DayWindow) int64 {
	var total int64
	for _, em := range b.ExternalMeetings {
		if em.Day != day {
			continue
		}
		start, end := em.Start, em.End
		if start < window.Start {
			start = window.Start
		}
		if end > window.End {
			end = window.End
		}
		if end > start {
			total += int64(end - start)
		}
	}
	return total
}

func batchByID(batches []domain.Batch) map[int]domain.Batch {
	out := make(map[int]domain.Batch, len(batches))
	for _, b := range batches {
		out[b.ID] = b
	}
	return out
}

// GridSnapshot is the solved-value rendering of a Grid: one row per
// entity-day, one bool per slot, in the deterministic entity order. A
// debug-grid dumper (named out of scope by spec.md — "debug grid
// dumps") would render this; this module ships only the hook point.
type GridSnapshot struct {
	Entities []domain.EntityRef
	Slots    map[domain.EntityRef][]domain.Slot
	Values   map[domain.EntityRef][]bool
}

// Snapshot reads every time_slot boolean's solved value out of g using
// solver, producing the data a debug-grid renderer would need without
// this module taking a position on how to render it.
func (g *Grid) Snapshot(solver interface{ BooleanValue(*sat.BoolVar) bool }) GridSnapshot {
	snap := GridSnapshot{
		Slots:  g.Slots,
		Values: make(map[domain.EntityRef][]bool, len(g.TimeSlot)),
	}
	for _, ref := range sortedRefs(refsOf(g.TimeSlot)) {
		snap.Entities = append(snap.Entities, ref)
		vals := make([]bool, len(g.TimeSlot[ref]))
		for i, b := range g.TimeSlot[ref] {
			vals[i] = solver.BooleanValue(b)
		}
		snap.Values[ref] = vals
	}
	return snap
}

func refsOf(m map[domain.EntityRef][]*sat.BoolVar) []domain.EntityRef {
	out := make([]domain.EntityRef, 0, len(m))
	for ref := range m {
		out = append(out, ref)
	}
	return out
}

func sortedRefs(refs []domain.EntityRef) []domain.EntityRef {
	out := append([]domain.EntityRef{}, refs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Day < out[j].Day
	})
	return out
}
