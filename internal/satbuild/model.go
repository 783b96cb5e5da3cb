// Package satbuild builds the CP-SAT decision variables, reified
// indicators, meeting intervals, and resource-exclusion constraints of
// spec.md §4.2-§4.4, on top of the github.com/google/or-tools/sat facade
// (the CP solver collaborator spec.md §1 names).
package satbuild

import (
	"sort"

	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/pkg/config"
)

// Var is satisfied by both *sat.BoolVar and *sat.IntVar — CP-SAT treats a
// boolean as a 0/1 integer variable, so both can appear wherever the
// builder needs a linear-expression term or constraint operand.
type Var = sat.IntVarLike

// Model owns the CP-SAT model plus every decision variable and reified
// indicator the rest of the pipeline (timeslot, streak, constraints,
// solve) reads from. Built once per pass; Pass 2 gets a fresh Model
// (spec.md §4.10, §5 — Pass-1 objects must be released before Pass-2
// construction).
type Model struct {
	CP *sat.CpModel

	Config     *config.Config
	Subjects   []domain.Subject
	SubjectMap map[int]domain.Subject
	Faculty    []domain.Faculty
	Rooms      []domain.Room
	Batches    []domain.Batch

	Sentinels domain.Sentinels
	Days      []domain.Day
	DayWindow func(domain.Day) domain.DayWindow

	Sections []domain.Section

	AssignedFaculty map[string]*sat.IntVar
	AssignedRoom    map[string]*sat.IntVar

	IsDummyFaculty   map[string]*sat.BoolVar
	IsDummyRoom      map[string]*sat.BoolVar
	SectionHasBatch  map[string]*sat.BoolVar

	// SectionPop[sectionKey][batchID] is the integer population a batch
	// contributes to a section (spec.md §4.2).
	SectionPop map[string]map[int]*sat.IntVar
	// BatchPicksSection[sectionKey][batchID] is the "this batch fully
	// enrolls in this section" boolean y (spec.md §4.2).
	BatchPicksSection map[string]map[int]*sat.BoolVar

	// Meetings[sectionKey][day] is the five-per-section meeting variable
	// bundle (spec.md §4.3).
	Meetings map[string]map[domain.Day]*MeetingVars

	// Pre-built reified assignment maps, [sectionKey][entityID] (spec.md
	// §4.2): is_assigned_faculty, is_assigned_room, is_assigned_batch.
	IsAssignedFaculty map[string]map[int]*sat.BoolVar
	IsAssignedRoom    map[string]map[int]*sat.BoolVar
	IsAssignedBatch   map[string]map[int]*sat.BoolVar

	// Reified activation maps (spec.md §4.2):
	// active_for_X(x, sub, s, d) = is_assigned_X ∧ meeting.is_active.
	ActiveForFaculty map[string]map[int]map[domain.Day]*sat.BoolVar
	ActiveForRoom    map[string]map[int]map[domain.Day]*sat.BoolVar
	ActiveForBatch   map[string]map[int]map[domain.Day]*sat.BoolVar

	// EntityActiveDurations[entityRef] accumulates duration·active_for_X
	// terms per (faculty|batch, day) — the conservation-law operand the
	// ghost-interval controller needs (spec.md §4.5, §8 invariant 9).
	EntityActiveDurations map[domain.EntityRef][]*sat.IntVar

	// Per-resource, per-day interval collections (spec.md §4.4). Exposed
	// so the time-slot grid (internal/timeslot) can inject ghost
	// intervals before NoOverlap is applied via ApplyResourceNoOverlap.
	FacultyIntervals map[int]map[domain.Day][]*sat.IntervalVar
	RoomIntervals    map[int]map[domain.Day][]*sat.IntervalVar
	BatchIntervals   map[int]map[domain.Day][]*sat.IntervalVar

	// StructuralViolations accumulates every boolean slack spec.md §4.8
	// counts toward the Pass-1 objective (the per-section duration
	// violations and the gated dummy faculty/room booleans; day-gap
	// booleans go to DayGapViolations instead); DurationViolationOf indexes the
	// per-section boolean for testability (spec.md §8 invariant 1).
	StructuralViolations []*sat.BoolVar
	DurationViolationOf  map[string]*sat.BoolVar

	// DayGapViolations is tracked apart from StructuralViolations because
	// spec.md §6 gives day-gap its own configurable weight
	// (DAY_GAP_PENALTY) alongside the Pass-2 per-hour/per-student
	// weights, unlike the other (unweighted, count-only) Pass-1
	// structural booleans — see DESIGN.md for this Open-Question call.
	DayGapViolations []*sat.BoolVar

	varSeq int
}

// AddStructural registers a boolean as part of the Pass-1 objective
// (spec.md §4.8, §4.10).
func (m *Model) AddStructural(b *sat.BoolVar) {
	m.StructuralViolations = append(m.StructuralViolations, b)
}

// DurationViolation records the per-section duration-mismatch boolean
// and also registers it as structural.
func (m *Model) DurationViolation(key string, b *sat.BoolVar) {
	if m.DurationViolationOf == nil {
		m.DurationViolationOf = map[string]*sat.BoolVar{}
	}
	m.DurationViolationOf[key] = b
	m.AddStructural(b)
}

// AddDayGapViolation registers a day-gap boolean (spec.md §4.8); counted
// in the Pass-1 objective with its own configurable weight.
func (m *Model) AddDayGapViolation(b *sat.BoolVar) {
	m.DayGapViolations = append(m.DayGapViolations, b)
}

// MeetingVars is the per-(section,day) variable bundle of spec.md §4.3.
type MeetingVars struct {
	Start         *sat.IntVar
	Duration      *sat.IntVar
	End           *sat.IntVar
	Active        *sat.BoolVar
	ActiveDuration *sat.IntVar // duration * is_active, via multiplication-equality
	Interval      *sat.IntervalVar
}

// name generates a stable, deterministic variable name; CP-SAT variable
// names only matter for debugging, but a deterministic name keeps two
// runs byte-identical in solver logs (spec.md §5).
func (m *Model) name(parts ...string) string {
	m.varSeq++
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}

// SortedFacultyIDs and friends give the deterministic iteration order
// spec.md §5 requires in deterministic mode: sort keys before iterating.
func SortedFacultyIDs(faculty []domain.Faculty) []int {
	ids := make([]int, len(faculty))
	for i, f := range faculty {
		ids[i] = f.ID
	}
	sort.Ints(ids)
	return ids
}

func SortedRoomIDs(rooms []domain.Room) []int {
	ids := make([]int, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	sort.Ints(ids)
	return ids
}

func SortedBatchIDs(batches []domain.Batch) []int {
	ids := make([]int, len(batches))
	for i, b := range batches {
		ids[i] = b.ID
	}
	sort.Ints(ids)
	return ids
}
