// Package constraints attaches the structural (spec.md §4.8) and
// preference (spec.md §4.9) constraint families on top of the variables,
// meetings, resource exclusion, and time-slot grid already built.
package constraints

import (
	"sort"

	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
	"github.com/edu-sched/cpsolver/internal/timeslot"
)

// DayGapBooleans builds the structural day-gap booleans of spec.md §4.8
// for every entity (faculty or batch) the grid tracks: for every
// interior scheduling day d, has_class_before ∧ has_class_after ∧
// ¬has_class[d] ⇒ day_gap[d] = 1.
func DayGapBooleans(m *satbuild.Model, grid *timeslot.Grid, kind domain.EntityKind, ids []int, days []domain.Day) map[int]map[domain.Day]*sat.BoolVar {
	out := map[int]map[domain.Day]*sat.BoolVar{}
	sortedIDs := append([]int{}, ids...)
	sort.Ints(sortedIDs)

	hasClass := map[domain.Day]*sat.BoolVar{}
	for _, id := range sortedIDs {
		out[id] = map[domain.Day]*sat.BoolVar{}
		for _, d := range days {
			ref := domain.EntityRef{Kind: kind, ID: id, Day: d}
			ts, ok := grid.TimeSlot[ref]
			hc := m.CP.NewBoolVar("has_class/" + ref.Key())
			if ok && len(ts) > 0 {
				m.CP.AddBoolOr(ts).OnlyEnforceIf(hc)
				var negated []*sat.BoolVar
				for _, b := range ts {
					negated = append(negated, b.Not())
				}
				m.CP.AddBoolAnd(negated).OnlyEnforceIf(hc.Not())
			} else {
				m.CP.AddEquality(hc, m.CP.NewConstant(0))
			}
			hasClass[d] = hc
		}

		for i := 1; i < len(days)-1; i++ {
			d := days[i]
			before := m.CP.NewBoolVar("has_class_before/" + domain.EntityRef{Kind: kind, ID: id, Day: d}.Key())
			var beforeDays []*sat.BoolVar
			for j := 0; j < i; j++ {
				beforeDays = append(beforeDays, hasClass[days[j]])
			}
			m.CP.AddBoolOr(beforeDays).OnlyEnforceIf(before)
			var negBefore []*sat.BoolVar
			for _, b := range beforeDays {
				negBefore = append(negBefore, b.Not())
			}
			m.CP.AddBoolAnd(negBefore).OnlyEnforceIf(before.Not())

			after := m.CP.NewBoolVar("has_class_after/" + domain.EntityRef{Kind: kind, ID: id, Day: d}.Key())
			var afterDays []*sat.BoolVar
			for j := i + 1; j < len(days); j++ {
				afterDays = append(afterDays, hasClass[days[j]])
			}
			m.CP.AddBoolOr(afterDays).OnlyEnforceIf(after)
			var negAfter []*sat.BoolVar
			for _, b := range afterDays {
				negAfter = append(negAfter, b.Not())
			}
			m.CP.AddBoolAnd(negAfter).OnlyEnforceIf(after.Not())

			dayGap := m.CP.NewBoolVar("day_gap/" + domain.EntityRef{Kind: kind, ID: id, Day: d}.Key())
			m.CP.AddBoolAnd([]*sat.BoolVar{before, after, hasClass[d].Not()}).OnlyEnforceIf(dayGap)
			m.CP.AddImplication(dayGap, before)
			m.CP.AddImplication(dayGap, after)
			m.CP.AddImplication(dayGap, hasClass[d].Not())
			m.AddDayGapViolation(dayGap)
			out[id][d] = dayGap
		}
	}
	return out
}

// canonicalSubject resolves the linked-pair root: a lab's canonical
// subject is its linked lecture, so teaching both counts once against
// max_subjects (spec.md §4.8).
func canonicalSubject(subj domain.Subject) int {
	if subj.LinkedSubjectID != nil && subj.IsLab() {
		return *subj.LinkedSubjectID
	}
	return subj.ID
}

// MaxSubjectsPerFaculty enforces: per faculty with max_subjects set,
// Σ(teaches_canonical_subject) ≤ max (spec.md §4.8).
func MaxSubjectsPerFaculty(m *satbuild.Model) {
	canonicalOf := map[int]int{}
	for _, s := range m.Subjects {
		canonicalOf[s.ID] = canonicalSubject(s)
	}

	for _, f := range m.Faculty {
		if f.MaxSubjects == nil {
			continue
		}
		teaches := map[int][]*sat.BoolVar{}
		for _, section := range m.Sections {
			key := section.Key()
			b, ok := m.IsAssignedFaculty[key][f.ID]
			if !ok {
				continue
			}
			canon := canonicalOf[section.SubjectID]
			teaches[canon] = append(teaches[canon], b)
		}
		var perSubject []*sat.BoolVar
		canons := make([]int, 0, len(teaches))
		for c := range teaches {
			canons = append(canons, c)
		}
		sort.Ints(canons)
		for _, c := range canons {
			bools := teaches[c]
			teachesCanon := m.CP.NewBoolVar("teaches_canon/" + itoa(f.ID) + "/" + itoa(c))
			m.CP.AddBoolOr(bools).OnlyEnforceIf(teachesCanon)
			var negated []*sat.BoolVar
			for _, b := range bools {
				negated = append(negated, b.Not())
			}
			m.CP.AddBoolAnd(negated).OnlyEnforceIf(teachesCanon.Not())
			perSubject = append(perSubject, teachesCanon)
		}
		m.CP.AddLinearConstraint(perSubject, 0, int64(*f.MaxSubjects))
	}
}

// LinkedPairs enforces §4.8's lab-lecture pairing: identical students
// per (section,batch), identical faculty/room, joint active/inactive per
// day, and lab.start = lecture.end when active.
func LinkedPairs(m *satbuild.Model) {
	for _, subj := range m.Subjects {
		if !subj.IsLab() {
			continue
		}
		labSections := sectionsOf(m.Sections, subj.ID)
		lecSections := sectionsOf(m.Sections, *subj.LinkedSubjectID)
		n := minInt(len(labSections), len(lecSections))
		for i := 0; i < n; i++ {
			lab, lec := labSections[i], lecSections[i]
			labKey, lecKey := lab.Key(), lec.Key()

			m.CP.AddEquality(m.AssignedFaculty[labKey], m.AssignedFaculty[lecKey])
			m.CP.AddEquality(m.AssignedRoom[labKey], m.AssignedRoom[lecKey])

			for bid, labPop := range m.SectionPop[labKey] {
				if lecPop, ok := m.SectionPop[lecKey][bid]; ok {
					m.CP.AddEquality(labPop, lecPop)
				}
			}

			for day, labMV := range m.Meetings[labKey] {
				lecMV, ok := m.Meetings[lecKey][day]
				if !ok {
					continue
				}
				m.CP.AddEquality(labMV.Active, lecMV.Active)
				m.CP.AddEquality(labMV.Start, lecMV.End).OnlyEnforceIf(labMV.Active)
			}
		}
	}
}

// RoomCapacity enforces: assigned_room's capacity must be >= total
// students in the section, via Element indexing into a capacities array
// (DUMMY_ROOM has "infinite" capacity) (spec.md §4.8).
func RoomCapacity(m *satbuild.Model) {
	capacities := make([]int64, m.Sentinels.DummyRoom+1)
	for _, r := range m.Rooms {
		capacities[r.ID] = int64(r.Capacity)
	}
	capacities[m.Sentinels.DummyRoom] = 1 << 30

	for _, section := range m.Sections {
		key := section.Key()
		total := m.CP.NewLinearExpr()
		for _, pop := range m.SectionPop[key] {
			total.AddTerm(pop, 1)
		}
		totalStudents := m.CP.NewIntVar(0, 1<<20, "total_students/"+key)
		m.CP.AddEqualToLinearExpr(totalStudents, total)

		capacityVar := m.CP.NewIntVar(0, 1<<30, "room_capacity/"+key)
		m.CP.AddElement(m.AssignedRoom[key], capacities, capacityVar)
		m.CP.AddLessOrEqual(totalStudents, capacityVar)
	}
}

func sectionsOf(sections []domain.Section, subjectID int) []domain.Section {
	var out []domain.Section
	for _, s := range sections {
		if s.SubjectID == subjectID {
			out = append(out, s)
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
