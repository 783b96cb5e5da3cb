package timeslot

import (
	"strconv"

	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
)

// SlotOracleController is the alternative controller of spec.md §4.5: a
// coverage boolean per (slot, meeting) derived from the meeting's own
// start/end/active variables, with time_slot[i] = OR over covering
// meetings. No ghost intervals, no conservation law; correctness relies
// on NoOverlap already preventing double-coverage.
type SlotOracleController struct{}

func (SlotOracleController) Build(m *satbuild.Model, entities []domain.EntityRef) *Grid {
	grid := newGrid()
	batches := batchByID(m.Batches)

	meetingsByEntity := meetingsPerEntity(m)

	for _, ref := range sortedRefs(entities) {
		window := m.DayWindow(ref.Day)
		slots := slotsFor(ref, window, domain.Minutes(m.Config.TimeGranularity))
		grid.Slots[ref] = slots

		meetings := meetingsByEntity[ref]
		timeSlot := make([]*sat.BoolVar, len(slots))

		for i, slot := range slots {
			var covers []*sat.BoolVar
			for _, cm := range meetings {
				mv := cm.meeting
				c := m.CP.NewBoolVar(oracleName(ref, i) + "/covers")
				// covers(m,i) = active_for_entity(m) ∧ start(m) < slot_end(i)
				// ∧ end(m) > slot_start(i) — gated by the entity's own
				// activation boolean, not the meeting's bare is_active, so a
				// meeting only covers the entity it is actually assigned to.
				startBefore := m.CP.NewBoolVar(oracleName(ref, i) + "/start_lt")
				m.CP.AddLessThan(mv.Start, m.CP.NewConstant(int64(slot.End))).OnlyEnforceIf(startBefore)
				m.CP.AddGreaterOrEqual(mv.Start, m.CP.NewConstant(int64(slot.End))).OnlyEnforceIf(startBefore.Not())
				endAfter := m.CP.NewBoolVar(oracleName(ref, i) + "/end_gt")
				m.CP.AddGreaterThan(mv.End, m.CP.NewConstant(int64(slot.Start))).OnlyEnforceIf(endAfter)
				m.CP.AddLessOrEqual(mv.End, m.CP.NewConstant(int64(slot.Start))).OnlyEnforceIf(endAfter.Not())

				m.CP.AddBoolAnd([]*sat.BoolVar{cm.active, startBefore, endAfter}).OnlyEnforceIf(c)
				m.CP.AddBoolOr([]*sat.BoolVar{cm.active.Not(), startBefore.Not(), endAfter.Not()}).OnlyEnforceIf(c.Not())
				covers = append(covers, c)
			}

			ts := m.CP.NewBoolVar(oracleName(ref, i))
			if len(covers) > 0 {
				m.CP.AddBoolOr(covers).OnlyEnforceIf(ts)
				var negated []*sat.BoolVar
				for _, c := range covers {
					negated = append(negated, c.Not())
				}
				m.CP.AddBoolAnd(negated).OnlyEnforceIf(ts.Not())
			} else {
				m.CP.AddEquality(ts, m.CP.NewConstant(0))
			}

			// Batch slots overlapped by a fixed external meeting are
			// pinned to 1 (spec.md §4.5, §8 invariant — E4).
			if ref.Kind == domain.EntityBatch && overlapsExternal(batches[ref.ID], ref.Day, slot) {
				m.CP.AddEquality(ts, m.CP.NewConstant(1))
			}

			timeSlot[i] = ts
		}
		grid.TimeSlot[ref] = timeSlot
	}

	return grid
}

// coveringMeeting pairs a meeting's own start/end/duration vars with the
// entity-scoped activation boolean that gates whether it belongs to the
// entity asking (spec.md §4.2's active_for_X).
type coveringMeeting struct {
	meeting *satbuild.MeetingVars
	active  *sat.BoolVar
}

// meetingsPerEntity groups every section-day meeting a faculty or batch
// could be assigned, keyed by EntityRef, pairing each with its
// entity-scoped activation boolean (spec.md §4.5).
func meetingsPerEntity(m *satbuild.Model) map[domain.EntityRef][]coveringMeeting {
	out := map[domain.EntityRef][]coveringMeeting{}
	for _, section := range m.Sections {
		key := section.Key()
		for fid, byDay := range m.ActiveForFaculty[key] {
			for day, active := range byDay {
				ref := domain.EntityRef{Kind: domain.EntityFaculty, ID: fid, Day: day}
				out[ref] = append(out[ref], coveringMeeting{meeting: m.Meetings[key][day], active: active})
			}
		}
		for bid, byDay := range m.ActiveForBatch[key] {
			for day, active := range byDay {
				ref := domain.EntityRef{Kind: domain.EntityBatch, ID: bid, Day: day}
				out[ref] = append(out[ref], coveringMeeting{meeting: m.Meetings[key][day], active: active})
			}
		}
	}
	return out
}

func overlapsExternal(b domain.Batch, day domain.Day, slot domain.Slot) bool {
	for _, em := range b.ExternalMeetings {
		if em.Day == day && em.Start < slot.End && em.End > slot.Start {
			return true
		}
	}
	return false
}

func oracleName(ref domain.EntityRef, slot int) string {
	return "oracle/" + strconv.Itoa(int(ref.Kind)) + "/" + strconv.Itoa(ref.ID) + "/" + strconv.Itoa(int(ref.Day)) + "/" + strconv.Itoa(slot)
}
