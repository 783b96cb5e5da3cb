package satbuild

import (
	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
)

// BuildResourceExclusion collects the optional intervals of spec.md §4.4
// per faculty, per room, and per batch (plus each batch's fixed external
// meetings, trimmed to day bounds) into Model's interval collections.
// Call ApplyResourceNoOverlap afterward — the time-slot grid
// (internal/timeslot) gets a chance to inject ghost intervals into the
// same collections first (spec.md §4.5).
func (m *Model) BuildResourceExclusion() {
	facultyIntervals := map[int]map[domain.Day][]*sat.IntervalVar{}
	roomIntervals := map[int]map[domain.Day][]*sat.IntervalVar{}
	batchIntervals := map[int]map[domain.Day][]*sat.IntervalVar{}

	for _, section := range m.Sections {
		key := section.Key()
		for day, mv := range m.Meetings[key] {
			for fid := range m.ActiveForFaculty[key] {
				optIv := m.CP.NewOptionalIntervalVar(mv.Start, mv.Duration, mv.End, m.ActiveForFaculty[key][fid][day], m.name("fac_iv", key, itoa(fid), itoa(int(day))))
				addInterval(facultyIntervals, fid, day, optIv)
			}
			for rid := range m.ActiveForRoom[key] {
				optIv := m.CP.NewOptionalIntervalVar(mv.Start, mv.Duration, mv.End, m.ActiveForRoom[key][rid][day], m.name("room_iv", key, itoa(rid), itoa(int(day))))
				addInterval(roomIntervals, rid, day, optIv)
			}
			for bid := range m.ActiveForBatch[key] {
				optIv := m.CP.NewOptionalIntervalVar(mv.Start, mv.Duration, mv.End, m.ActiveForBatch[key][bid][day], m.name("batch_iv", key, itoa(bid), itoa(int(day))))
				addInterval(batchIntervals, bid, day, optIv)
			}
		}
	}

	// Fixed external meetings participate in the batch's NoOverlap set
	// (spec.md §4.4, §8 invariant 3).
	for _, b := range m.Batches {
		for i, em := range b.ExternalMeetings {
			window := m.DayWindow(em.Day)
			start := clampMinutes(em.Start, window.Start, window.End)
			end := clampMinutes(em.End, window.Start, window.End)
			if end <= start {
				continue
			}
			fixed := m.CP.NewFixedInterval(int64(start), int64(end), m.name("external", itoa(b.ID), itoa(i)))
			if batchIntervals[b.ID] == nil {
				batchIntervals[b.ID] = map[domain.Day][]*sat.IntervalVar{}
			}
			batchIntervals[b.ID][em.Day] = append(batchIntervals[b.ID][em.Day], fixed)
		}
	}

	m.FacultyIntervals = facultyIntervals
	m.RoomIntervals = roomIntervals
	m.BatchIntervals = batchIntervals
}

// ApplyResourceNoOverlap applies one NoOverlap per (resource, day) over
// whatever intervals have accumulated in Model's interval collections,
// including any ghost intervals the time-slot grid injected (spec.md
// §4.4, §4.5).
func (m *Model) ApplyResourceNoOverlap() {
	for _, byDay := range m.FacultyIntervals {
		for _, ivs := range byDay {
			if len(ivs) > 1 {
				m.CP.AddNoOverlap(ivs)
			}
		}
	}
	for _, byDay := range m.RoomIntervals {
		for _, ivs := range byDay {
			if len(ivs) > 1 {
				m.CP.AddNoOverlap(ivs)
			}
		}
	}
	for _, byDay := range m.BatchIntervals {
		for _, ivs := range byDay {
			if len(ivs) > 1 {
				m.CP.AddNoOverlap(ivs)
			}
		}
	}
}

func addInterval(m map[int]map[domain.Day][]*sat.IntervalVar, id int, day domain.Day, iv *sat.IntervalVar) {
	if m[id] == nil {
		m[id] = map[domain.Day][]*sat.IntervalVar{}
	}
	m[id][day] = append(m[id][day], iv)
}

func clampMinutes(v, lo, hi domain.Minutes) domain.Minutes {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
