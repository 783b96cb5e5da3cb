package timeslot

import (
	"strconv"

	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
)

// GhostController is the preferred controller of spec.md §4.5: a fixed-
// position optional "ghost" interval per slot, added to the same
// per-entity NoOverlap collection as class intervals, with
// time_slot[i] = ¬ghost_active[i] and a conservation law preventing the
// solver from "killing" a ghost without a covering class.
type GhostController struct{}

func (GhostController) Build(m *satbuild.Model, entities []domain.EntityRef) *Grid {
	grid := newGrid()
	batches := batchByID(m.Batches)

	for _, ref := range sortedRefs(entities) {
		window := m.DayWindow(ref.Day)
		slots := slotsFor(ref, window, domain.Minutes(m.Config.TimeGranularity))
		grid.Slots[ref] = slots

		timeSlot := make([]*sat.BoolVar, len(slots))
		conservation := m.CP.NewLinearExpr()

		for i, slot := range slots {
			ghostActive := m.CP.NewBoolVar(ghostName(ref, i))
			fixedLen := int64(slot.End - slot.Start)
			ghostIv := m.CP.NewOptionalIntervalVar(
				m.CP.NewConstant(int64(slot.Start)), m.CP.NewConstant(fixedLen), m.CP.NewConstant(int64(slot.End)),
				ghostActive, ghostName(ref, i)+"/iv",
			)
			switch ref.Kind {
			case domain.EntityFaculty:
				if m.FacultyIntervals[ref.ID] == nil {
					m.FacultyIntervals[ref.ID] = map[domain.Day][]*sat.IntervalVar{}
				}
				m.FacultyIntervals[ref.ID][ref.Day] = append(m.FacultyIntervals[ref.ID][ref.Day], ghostIv)
			case domain.EntityBatch:
				if m.BatchIntervals[ref.ID] == nil {
					m.BatchIntervals[ref.ID] = map[domain.Day][]*sat.IntervalVar{}
				}
				m.BatchIntervals[ref.ID][ref.Day] = append(m.BatchIntervals[ref.ID][ref.Day], ghostIv)
			}

			// ts = ¬ghost_active (spec.md §4.5).
			ts := m.CP.NewBoolVar(ghostName(ref, i) + "/ts")
			m.CP.AddBoolOr([]*sat.BoolVar{ghostActive, ts})
			m.CP.AddBoolOr([]*sat.BoolVar{ghostActive.Not(), ts.Not()})
			timeSlot[i] = ts

			conservation.AddTerm(ghostActive, fixedLen)
		}
		grid.TimeSlot[ref] = timeSlot

		for _, dur := range m.EntityActiveDurations[ref] {
			conservation.AddTerm(dur, 1)
		}
		if ref.Kind == domain.EntityBatch {
			conservation.AddConstant(externalMinutesOnDay(batches[ref.ID], ref.Day, window))
		}
		m.CP.AddEqualToLinearExpr(m.CP.NewConstant(int64(window.End-window.Start)), conservation)
	}

	return grid
}

func ghostName(ref domain.EntityRef, slot int) string {
	return "ghost/" + strconv.Itoa(int(ref.Kind)) + "/" + strconv.Itoa(ref.ID) + "/" + strconv.Itoa(int(ref.Day)) + "/" + strconv.Itoa(slot)
}
