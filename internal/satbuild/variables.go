package satbuild

import (
	"strconv"

	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// BuildVariables constructs the CP model and every per-section decision
// variable and reified indicator from spec.md §4.2: assigned_faculty,
// assigned_room, section_pop/y per (section,batch), is_dummy_faculty,
// is_dummy_room, and section_has_batch. Meeting variables (§4.3) and the
// activation maps built from them are attached by BuildMeetings.
func BuildVariables(cfg *config.Config, subjects []domain.Subject, faculty []domain.Faculty, rooms []domain.Room, batches []domain.Batch, sentinels domain.Sentinels, days []domain.Day, dayWindow func(domain.Day) domain.DayWindow) *Model {
	m := &Model{
		CP:                sat.NewCpModel(),
		Config:            cfg,
		Subjects:          subjects,
		Faculty:           faculty,
		Rooms:             rooms,
		Batches:           batches,
		Sentinels:         sentinels,
		Days:              days,
		DayWindow:         dayWindow,
		AssignedFaculty:   map[string]*sat.IntVar{},
		AssignedRoom:      map[string]*sat.IntVar{},
		IsDummyFaculty:    map[string]*sat.BoolVar{},
		IsDummyRoom:       map[string]*sat.BoolVar{},
		SectionHasBatch:   map[string]*sat.BoolVar{},
		SectionPop:        map[string]map[int]*sat.IntVar{},
		BatchPicksSection: map[string]map[int]*sat.BoolVar{},
		Meetings:          map[string]map[domain.Day]*MeetingVars{},
		IsAssignedFaculty: map[string]map[int]*sat.BoolVar{},
		IsAssignedRoom:    map[string]map[int]*sat.BoolVar{},
		IsAssignedBatch:   map[string]map[int]*sat.BoolVar{},
		ActiveForFaculty:  map[string]map[int]map[domain.Day]*sat.BoolVar{},
		ActiveForRoom:     map[string]map[int]map[domain.Day]*sat.BoolVar{},
		ActiveForBatch:    map[string]map[int]map[domain.Day]*sat.BoolVar{},
		EntityActiveDurations: map[domain.EntityRef][]*sat.IntVar{},
	}
	m.SubjectMap = make(map[int]domain.Subject, len(subjects))
	for _, s := range subjects {
		m.SubjectMap[s.ID] = s
	}

	qualifiedFacultyOf := make(map[int][]int, len(subjects))
	compatibleRoomsOf := make(map[int][]int, len(subjects))
	for _, f := range faculty {
		for sid := range f.QualifiedSubjects {
			qualifiedFacultyOf[sid] = append(qualifiedFacultyOf[sid], f.ID)
		}
		for sid := range f.PreferredSubjects {
			if !f.QualifiedSubjects[sid] {
				qualifiedFacultyOf[sid] = append(qualifiedFacultyOf[sid], f.ID)
			}
		}
	}
	for _, r := range rooms {
		for _, s := range subjects {
			if s.RoomTypeID == nil || *s.RoomTypeID == r.RoomTypeID {
				compatibleRoomsOf[s.ID] = append(compatibleRoomsOf[s.ID], r.ID)
			}
		}
	}

	enrollingBatches := make(map[int][]domain.Batch, len(subjects))
	for _, b := range batches {
		for _, sid := range b.EnrolledSubjects {
			enrollingBatches[sid] = append(enrollingBatches[sid], b)
		}
	}

	for _, subj := range subjects {
		for idx := 0; idx < maxInt(subj.IdealNumSections, 1); idx++ {
			section := domain.Section{SubjectID: subj.ID, Index: idx}
			key := section.Key()
			m.Sections = append(m.Sections, section)

			facultyDomain := append(append([]int64{}, toInt64(qualifiedFacultyOf[subj.ID])...), int64(sentinels.DummyFaculty))
			roomDomain := append(append([]int64{}, toInt64(compatibleRoomsOf[subj.ID])...), int64(sentinels.DummyRoom))

			m.AssignedFaculty[key] = m.CP.NewIntVarFromDomain(sat.NewDomainFromValues(facultyDomain), m.name("faculty", key))
			m.AssignedRoom[key] = m.CP.NewIntVarFromDomain(sat.NewDomainFromValues(roomDomain), m.name("room", key))

			isDummyFaculty := m.CP.NewBoolVar(m.name("is_dummy_faculty", key))
			m.CP.AddEquality(m.AssignedFaculty[key], m.CP.NewConstant(int64(sentinels.DummyFaculty))).OnlyEnforceIf(isDummyFaculty)
			m.CP.AddNotEqual(m.AssignedFaculty[key], m.CP.NewConstant(int64(sentinels.DummyFaculty))).OnlyEnforceIf(isDummyFaculty.Not())
			m.IsDummyFaculty[key] = isDummyFaculty

			isDummyRoom := m.CP.NewBoolVar(m.name("is_dummy_room", key))
			m.CP.AddEquality(m.AssignedRoom[key], m.CP.NewConstant(int64(sentinels.DummyRoom))).OnlyEnforceIf(isDummyRoom)
			m.CP.AddNotEqual(m.AssignedRoom[key], m.CP.NewConstant(int64(sentinels.DummyRoom))).OnlyEnforceIf(isDummyRoom.Not())
			m.IsDummyRoom[key] = isDummyRoom

			m.SectionPop[key] = map[int]*sat.IntVar{}
			m.BatchPicksSection[key] = map[int]*sat.BoolVar{}

			m.IsAssignedFaculty[key] = map[int]*sat.BoolVar{}
			for _, fid := range qualifiedFacultyOf[subj.ID] {
				b := m.CP.NewBoolVar(m.name("is_assigned_faculty", key, itoa(fid)))
				m.CP.AddEquality(m.AssignedFaculty[key], m.CP.NewConstant(int64(fid))).OnlyEnforceIf(b)
				m.CP.AddNotEqual(m.AssignedFaculty[key], m.CP.NewConstant(int64(fid))).OnlyEnforceIf(b.Not())
				m.IsAssignedFaculty[key][fid] = b
			}
			m.IsAssignedRoom[key] = map[int]*sat.BoolVar{}
			for _, rid := range compatibleRoomsOf[subj.ID] {
				b := m.CP.NewBoolVar(m.name("is_assigned_room", key, itoa(rid)))
				m.CP.AddEquality(m.AssignedRoom[key], m.CP.NewConstant(int64(rid))).OnlyEnforceIf(b)
				m.CP.AddNotEqual(m.AssignedRoom[key], m.CP.NewConstant(int64(rid))).OnlyEnforceIf(b.Not())
				m.IsAssignedRoom[key][rid] = b
			}
			m.IsAssignedBatch[key] = map[int]*sat.BoolVar{}
		}
	}

	// section_pop / y per (batch, subject): exactly one section is fully
	// picked per (batch, subject) — "no batch is split across sections".
	for _, subj := range subjects {
		batchesHere := enrollingBatches[subj.ID]
		sectionKeys := sectionKeysOf(m.Sections, subj.ID)
		for _, b := range batchesHere {
			var picks []*sat.BoolVar
			for _, key := range sectionKeys {
				pop := m.CP.NewIntVar(0, int64(b.Population), m.name("section_pop", key, itoa(b.ID)))
				y := m.CP.NewBoolVar(m.name("y", key, itoa(b.ID)))
				m.CP.AddEquality(pop, m.CP.NewConstant(int64(b.Population))).OnlyEnforceIf(y)
				m.CP.AddEquality(pop, m.CP.NewConstant(0)).OnlyEnforceIf(y.Not())
				m.SectionPop[key][b.ID] = pop
				m.BatchPicksSection[key][b.ID] = y
				m.IsAssignedBatch[key][b.ID] = y
				picks = append(picks, y)
			}
			m.CP.AddExactlyOne(picks)
		}
	}

	// section_has_batch = OR of the batch-picked y's for this section; an
	// unused section is forced to dummy resources (§4.2).
	for _, section := range m.Sections {
		key := section.Key()
		var ys []*sat.BoolVar
		for _, y := range m.BatchPicksSection[key] {
			ys = append(ys, y)
		}
		hasBatch := m.CP.NewBoolVar(m.name("section_has_batch", key))
		if len(ys) > 0 {
			m.CP.AddBoolOr(ys).OnlyEnforceIf(hasBatch)
			for _, y := range ys {
				m.CP.AddImplication(y, hasBatch)
			}
		} else {
			m.CP.AddEquality(hasBatch, m.CP.NewConstant(0))
		}
		m.SectionHasBatch[key] = hasBatch

		// Unused ⇒ dummy faculty and room (gates dummy indicators so an
		// unused section contributes no structural violation, §4.2).
		m.CP.AddEquality(m.IsDummyFaculty[key], m.CP.NewConstant(1)).OnlyEnforceIf(hasBatch.Not())
		m.CP.AddEquality(m.IsDummyRoom[key], m.CP.NewConstant(1)).OnlyEnforceIf(hasBatch.Not())

		// Gate the structural contribution itself: an unused section's
		// forced dummy indicators must not count (§4.2, §4.8).
		gatedDummyFaculty := m.CP.NewBoolVar(m.name("gated_dummy_faculty", key))
		m.CP.AddBoolAnd([]*sat.BoolVar{m.IsDummyFaculty[key], hasBatch}).OnlyEnforceIf(gatedDummyFaculty)
		m.CP.AddBoolOr([]*sat.BoolVar{m.IsDummyFaculty[key].Not(), hasBatch.Not()}).OnlyEnforceIf(gatedDummyFaculty.Not())
		m.AddStructural(gatedDummyFaculty)

		gatedDummyRoom := m.CP.NewBoolVar(m.name("gated_dummy_room", key))
		m.CP.AddBoolAnd([]*sat.BoolVar{m.IsDummyRoom[key], hasBatch}).OnlyEnforceIf(gatedDummyRoom)
		m.CP.AddBoolOr([]*sat.BoolVar{m.IsDummyRoom[key].Not(), hasBatch.Not()}).OnlyEnforceIf(gatedDummyRoom.Not())
		m.AddStructural(gatedDummyRoom)
	}

	if cfg.Solver.SymmetryBreak {
		breakSectionSymmetry(m, subjects)
	}

	return m
}

// breakSectionSymmetry cuts the interchangeable-section symmetry of
// spec.md §4.2: sections of the same subject are identical until a
// batch picks one. This pins used sections to the front and makes
// assigned_faculty and assigned_room each nondecreasing across a
// subject's section indices (SOLVER_SYMMETRY_BREAK), which cuts the
// search space. Both orders hold at once, so a schedule whose faculty
// and room orders disagree (section A: faculty 0, room 1; section B:
// faculty 1, room 0) is excluded.
func breakSectionSymmetry(m *Model, subjects []domain.Subject) {
	for _, subj := range subjects {
		keys := sectionKeysOf(m.Sections, subj.ID)
		for i := 0; i < len(keys)-1; i++ {
			a, b := keys[i], keys[i+1]
			m.CP.AddGreaterOrEqual(m.SectionHasBatch[a], m.SectionHasBatch[b])
			m.CP.AddLessOrEqual(m.AssignedFaculty[a], m.AssignedFaculty[b])
			m.CP.AddLessOrEqual(m.AssignedRoom[a], m.AssignedRoom[b])
		}
	}
}

func sectionKeysOf(sections []domain.Section, subjectID int) []string {
	var keys []string
	for _, s := range sections {
		if s.SubjectID == subjectID {
			keys = append(keys, s.Key())
		}
	}
	return keys
}

func toInt64(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
