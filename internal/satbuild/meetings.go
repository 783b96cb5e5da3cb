package satbuild

import (
	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
)

// BuildMeetings attaches the per-(section,day) meeting variable bundle of
// spec.md §4.3: start aligned to the granularity, duration drawn from the
// discrete set D(sub), end = start+duration, is_active, and the optional
// interval built from them. It also builds the activation maps
// active_for_X = is_assigned_X ∧ is_active that §4.2 names, and the
// duration/total-minutes structural wiring.
func (m *Model) BuildMeetings() {
	granularity := int64(m.Config.TimeGranularity)

	for _, section := range m.Sections {
		key := section.Key()
		subj := m.SubjectMap[section.SubjectID]
		durations := domain.DurationSet(subj.RequiredWeeklyMinutes, subj.MinMeetings, subj.MaxMeetings)
		durationDomain := toInt64(durations)

		m.Meetings[key] = map[domain.Day]*MeetingVars{}
		var activeDurationTerms []*sat.IntVar
		var activeBools []*sat.BoolVar

		for _, day := range m.Days {
			window := m.DayWindow(day)
			start := m.CP.NewIntVarFromDomain(alignedDomain(int64(window.Start), int64(window.End), granularity), m.name("start", key, itoa(int(day))))
			duration := m.CP.NewIntVarFromDomain(sat.NewDomainFromValues(durationDomain), m.name("duration", key, itoa(int(day))))
			end := m.CP.NewIntVar(int64(window.Start), int64(window.End), m.name("end", key, itoa(int(day))))
			active := m.CP.NewBoolVar(m.name("active", key, itoa(int(day))))

			sum := m.CP.NewLinearExpr()
			sum.AddTerm(start, 1)
			sum.AddTerm(duration, 1)
			m.CP.AddEqualToLinearExpr(end, sum)
			m.CP.AddLessOrEqual(end, m.CP.NewConstant(int64(window.End)))

			activeDuration := m.CP.NewIntVar(0, int64(window.End-window.Start), m.name("active_duration", key, itoa(int(day))))
			m.CP.AddMultiplicationEquality(activeDuration, []sat.IntVarLike{duration, active})

			interval := m.CP.NewOptionalIntervalVar(start, duration, end, active, m.name("interval", key, itoa(int(day))))

			m.Meetings[key][day] = &MeetingVars{
				Start: start, Duration: duration, End: end, Active: active,
				ActiveDuration: activeDuration, Interval: interval,
			}
			activeDurationTerms = append(activeDurationTerms, activeDuration)
			activeBools = append(activeBools, active)

			// Forced-unused sections never meet (§4.2, §4.3).
			m.CP.AddEquality(active, m.CP.NewConstant(0)).OnlyEnforceIf(m.SectionHasBatch[key].Not())
		}

		// Two consecutive scheduling days cannot both be active for the
		// same section (§4.3 — at least one day of separation).
		for i := 0; i+1 < len(m.Days); i++ {
			d0, d1 := m.Days[i], m.Days[i+1]
			m.CP.AddBoolOr([]*sat.BoolVar{m.Meetings[key][d0].Active.Not(), m.Meetings[key][d1].Active.Not()})
		}

		totalDuration := m.CP.NewLinearExpr()
		for _, term := range activeDurationTerms {
			totalDuration.AddTerm(term, 1)
		}
		totalVar := m.CP.NewIntVar(0, int64(subj.RequiredWeeklyMinutes*2+1), m.name("total_duration", key))
		m.CP.AddEqualToLinearExpr(totalVar, totalDuration)

		durationViolation := m.CP.NewBoolVar(m.name("duration_violation", key))
		m.CP.AddEquality(totalVar, m.CP.NewConstant(int64(subj.RequiredWeeklyMinutes))).OnlyEnforceIf(durationViolation.Not())
		m.CP.AddNotEqual(totalVar, m.CP.NewConstant(int64(subj.RequiredWeeklyMinutes))).OnlyEnforceIf(durationViolation)
		// Gated by section_has_batch: an unused section never reports a
		// duration violation (§4.8).
		m.CP.AddEquality(durationViolation, m.CP.NewConstant(0)).OnlyEnforceIf(m.SectionHasBatch[key].Not())
		m.DurationViolation(key, durationViolation)

		// Real faculty/room ⇒ at least minScheduledMinutes (fixed at 1,
		// not read from config) actually scheduled (§4.3).
		const minScheduledMinutes = 1
		hasRealFaculty := m.IsDummyFaculty[key].Not()
		hasRealRoom := m.IsDummyRoom[key].Not()
		m.CP.AddGreaterOrEqual(totalVar, m.CP.NewConstant(minScheduledMinutes)).OnlyEnforceIf(hasRealFaculty)
		m.CP.AddGreaterOrEqual(totalVar, m.CP.NewConstant(minScheduledMinutes)).OnlyEnforceIf(hasRealRoom)

		m.buildActivationMaps(section, key)
	}
}

// buildActivationMaps builds active_for_X(x, sub, s, d) = is_assigned_X ∧
// meeting.is_active for every x this section could be assigned (spec.md
// §4.2); these feed NoOverlap collection (§4.4) and the time-slot grid
// (§4.5).
func (m *Model) buildActivationMaps(section domain.Section, key string) {
	m.ActiveForFaculty[key] = map[int]map[domain.Day]*sat.BoolVar{}
	for fid, isAssigned := range m.IsAssignedFaculty[key] {
		m.ActiveForFaculty[key][fid] = map[domain.Day]*sat.BoolVar{}
		for day, mv := range m.Meetings[key] {
			active := m.CP.NewBoolVar(m.name("active_for_faculty", key, itoa(fid), itoa(int(day))))
			m.CP.AddBoolAnd([]*sat.BoolVar{isAssigned, mv.Active}).OnlyEnforceIf(active)
			m.CP.AddBoolOr([]*sat.BoolVar{isAssigned.Not(), mv.Active.Not()}).OnlyEnforceIf(active.Not())
			m.ActiveForFaculty[key][fid][day] = active

			w := m.DayWindow(day)
			dur := m.CP.NewIntVar(0, int64(w.End-w.Start), m.name("entdur_faculty", key, itoa(fid), itoa(int(day))))
			m.CP.AddMultiplicationEquality(dur, []sat.IntVarLike{mv.Duration, active})
			ref := domain.EntityRef{Kind: domain.EntityFaculty, ID: fid, Day: day}
			m.EntityActiveDurations[ref] = append(m.EntityActiveDurations[ref], dur)
		}
	}
	m.ActiveForRoom[key] = map[int]map[domain.Day]*sat.BoolVar{}
	for rid, isAssigned := range m.IsAssignedRoom[key] {
		m.ActiveForRoom[key][rid] = map[domain.Day]*sat.BoolVar{}
		for day, mv := range m.Meetings[key] {
			active := m.CP.NewBoolVar(m.name("active_for_room", key, itoa(rid), itoa(int(day))))
			m.CP.AddBoolAnd([]*sat.BoolVar{isAssigned, mv.Active}).OnlyEnforceIf(active)
			m.CP.AddBoolOr([]*sat.BoolVar{isAssigned.Not(), mv.Active.Not()}).OnlyEnforceIf(active.Not())
			m.ActiveForRoom[key][rid][day] = active
		}
	}
	m.ActiveForBatch[key] = map[int]map[domain.Day]*sat.BoolVar{}
	for bid, isAssigned := range m.IsAssignedBatch[key] {
		m.ActiveForBatch[key][bid] = map[domain.Day]*sat.BoolVar{}
		for day, mv := range m.Meetings[key] {
			active := m.CP.NewBoolVar(m.name("active_for_batch", key, itoa(bid), itoa(int(day))))
			m.CP.AddBoolAnd([]*sat.BoolVar{isAssigned, mv.Active}).OnlyEnforceIf(active)
			m.CP.AddBoolOr([]*sat.BoolVar{isAssigned.Not(), mv.Active.Not()}).OnlyEnforceIf(active.Not())
			m.ActiveForBatch[key][bid][day] = active

			w := m.DayWindow(day)
			dur := m.CP.NewIntVar(0, int64(w.End-w.Start), m.name("entdur_batch", key, itoa(bid), itoa(int(day))))
			m.CP.AddMultiplicationEquality(dur, []sat.IntVarLike{mv.Duration, active})
			ref := domain.EntityRef{Kind: domain.EntityBatch, ID: bid, Day: day}
			m.EntityActiveDurations[ref] = append(m.EntityActiveDurations[ref], dur)
		}
	}
}

// alignedDomain returns the set {start, start+g, ..., end} a meeting's
// start variable may take (spec.md §4.3).
func alignedDomain(start, end, g int64) sat.Domain {
	var values []int64
	for v := start; v <= end; v += g {
		values = append(values, v)
	}
	return sat.NewDomainFromValues(values)
}
