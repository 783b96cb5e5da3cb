package constraints

import (
	"sort"

	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/satbuild"
)

// Preference holds the Pass-2-only soft trackers of spec.md §4.9. Every
// field is an IntVar (or slice of them); internal/solve sums them,
// weighted, into the Pass-2 objective.
type Preference struct {
	FacultyOverloadMinutes   map[int]*sat.IntVar
	FacultyUnderfillMinutes  map[int]*sat.IntVar
	SectionOverfillStudents  map[string]*sat.IntVar
	SectionUnderfillStudents map[string]*sat.IntVar
	RoomOvercapacityStudents map[string]*sat.IntVar
	NonPreferredSubject      map[string]*sat.BoolVar
}

const genedUnderfillFloor = 20

// BuildPreference attaches the per-minute/per-student trackers of
// spec.md §4.9.
func BuildPreference(m *satbuild.Model) *Preference {
	p := &Preference{
		FacultyOverloadMinutes:   map[int]*sat.IntVar{},
		FacultyUnderfillMinutes:  map[int]*sat.IntVar{},
		SectionOverfillStudents:  map[string]*sat.IntVar{},
		SectionUnderfillStudents: map[string]*sat.IntVar{},
		RoomOvercapacityStudents: map[string]*sat.IntVar{},
		NonPreferredSubject:      map[string]*sat.BoolVar{},
	}

	facultyLoad := map[int]*sat.LinearExpr{}
	for _, f := range m.Faculty {
		facultyLoad[f.ID] = m.CP.NewLinearExpr()
	}
	for _, f := range m.Faculty {
		for _, day := range m.Days {
			if dur, ok := entityDurationTerm(m, domain.EntityRef{Kind: domain.EntityFaculty, ID: f.ID, Day: day}); ok {
				facultyLoad[f.ID].AddTerm(dur, 1)
			}
		}
	}
	for _, f := range m.Faculty {
		total := m.CP.NewIntVar(0, 1<<20, "faculty_total_minutes/"+itoa(f.ID))
		m.CP.AddEqualToLinearExpr(total, facultyLoad[f.ID])

		overload := m.CP.NewIntVar(0, 1<<20, "faculty_overload/"+itoa(f.ID))
		overloadExpr := m.CP.NewLinearExpr()
		overloadExpr.AddTerm(total, 1)
		overloadExpr.AddConstant(int64(-f.MaxMinutes))
		m.CP.AddGreaterOrEqualToLinearExpr(overload, overloadExpr)
		m.CP.AddGreaterOrEqual(overload, m.CP.NewConstant(0))
		p.FacultyOverloadMinutes[f.ID] = overload
		if f.MaxMinutes > 0 {
			m.CP.AddLessOrEqual(total, m.CP.NewConstant(int64(f.MaxMinutes)))
		}

		underfill := m.CP.NewIntVar(0, 1<<20, "faculty_underfill/"+itoa(f.ID))
		if f.MinMinutes > 0 {
			underExpr := m.CP.NewLinearExpr()
			underExpr.AddConstant(int64(f.MinMinutes))
			underExpr.AddTerm(total, -1)
			m.CP.AddGreaterOrEqualToLinearExpr(underfill, underExpr)
			m.CP.AddGreaterOrEqual(underfill, m.CP.NewConstant(0))
		} else {
			m.CP.AddEquality(underfill, m.CP.NewConstant(0))
		}
		p.FacultyUnderfillMinutes[f.ID] = underfill
	}

	for _, section := range m.Sections {
		key := section.Key()
		subj := m.SubjectMap[section.SubjectID]
		effMax := subj.EffectiveMaxEnrollment()

		total := m.CP.NewLinearExpr()
		for _, pop := range m.SectionPop[key] {
			total.AddTerm(pop, 1)
		}
		totalStudents := m.CP.NewIntVar(0, 1<<20, "pref_total_students/"+key)
		m.CP.AddEqualToLinearExpr(totalStudents, total)

		overfill := m.CP.NewIntVar(0, 1<<20, "section_overfill/"+key)
		ofExpr := m.CP.NewLinearExpr()
		ofExpr.AddTerm(totalStudents, 1)
		ofExpr.AddConstant(int64(-effMax))
		m.CP.AddGreaterOrEqualToLinearExpr(overfill, ofExpr)
		m.CP.AddGreaterOrEqual(overfill, m.CP.NewConstant(0))
		p.SectionOverfillStudents[key] = overfill

		underfill := m.CP.NewIntVar(0, 1<<20, "section_underfill/"+key)
		ufExpr := m.CP.NewLinearExpr()
		ufExpr.AddConstant(genedUnderfillFloor)
		ufExpr.AddTerm(totalStudents, -1)
		m.CP.AddGreaterOrEqualToLinearExpr(underfill, ufExpr)
		m.CP.AddGreaterOrEqual(underfill, m.CP.NewConstant(0))
		p.SectionUnderfillStudents[key] = underfill

		// room_overcapacity_students: reporting-only tracker (the hard
		// capacity rule in RoomCapacity normally keeps this at 0, spec.md
		// §4.9, §9 open question).
		roomCapOf := map[int]int64{}
		for _, r := range m.Rooms {
			roomCapOf[r.ID] = int64(r.Capacity)
		}
		cap := m.CP.NewIntVar(0, 1<<30, "pref_room_capacity/"+key)
		capacities := make([]int64, m.Sentinels.DummyRoom+1)
		for id, c := range roomCapOf {
			capacities[id] = c
		}
		capacities[m.Sentinels.DummyRoom] = 1 << 30
		m.CP.AddElement(m.AssignedRoom[key], capacities, cap)
		overcap := m.CP.NewIntVar(0, 1<<20, "room_overcapacity/"+key)
		ocExpr := m.CP.NewLinearExpr()
		ocExpr.AddTerm(totalStudents, 1)
		ocExpr.AddTerm(cap, -1)
		m.CP.AddGreaterOrEqualToLinearExpr(overcap, ocExpr)
		m.CP.AddGreaterOrEqual(overcap, m.CP.NewConstant(0))
		p.RoomOvercapacityStudents[key] = overcap

		// faculty_non_preferred_subject(f, sub, s): true iff assigned to a
		// faculty qualified-but-not-preferred (spec.md §4.9).
		for fid, isAssigned := range m.IsAssignedFaculty[key] {
			f := facultyByID(m.Faculty, fid)
			if f.Prefers(subj.ID) {
				continue
			}
			p.NonPreferredSubject[key+"#"+itoa(fid)] = isAssigned
		}
	}

	return p
}

func entityDurationTerm(m *satbuild.Model, ref domain.EntityRef) (*sat.IntVar, bool) {
	terms := m.EntityActiveDurations[ref]
	if len(terms) == 0 {
		return nil, false
	}
	if len(terms) == 1 {
		return terms[0], true
	}
	sum := m.CP.NewLinearExpr()
	for _, term := range terms {
		sum.AddTerm(term, 1)
	}
	combined := m.CP.NewIntVar(0, 1<<20, "entdur_sum/"+ref.Key())
	m.CP.AddEqualToLinearExpr(combined, sum)
	return combined, true
}

func facultyByID(faculty []domain.Faculty, id int) domain.Faculty {
	for _, f := range faculty {
		if f.ID == id {
			return f
		}
	}
	return domain.Faculty{}
}

// SortedKeys returns a tracker map's keys in sorted order, for
// deterministic objective assembly (spec.md §5).
func SortedKeys(m map[string]*sat.IntVar) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
