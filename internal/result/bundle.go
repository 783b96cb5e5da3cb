// Package result extracts the final bundle external exporters read
// (spec.md §4.11, §6 Outputs): per-section assignment and meeting
// values, violation trackers, both objective values, and the dummy
// indices. Extraction only ever reads solver values — it never mutates
// the model (spec.md §5: after Solve returns, the solver is read-only).
package result

import (
	"github.com/google/or-tools/sat"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/solve"
)

// MeetingResult is one section-day's solved meeting.
type MeetingResult struct {
	Day      domain.Day
	Start    int
	Duration int
	Active   bool
}

// SectionResult is one section's full solved assignment (spec.md §6
// Outputs).
type SectionResult struct {
	Section           domain.Section
	AssignedFaculty   int
	AssignedRoom      int
	BatchPopulation   map[int]int
	Meetings          []MeetingResult
	DurationViolation bool
}

// Violations carries the solved values of every violation tracker family
// in spec.md §4.8 and §4.9, so exporters can report on them instead of
// them being solved and discarded (spec.md §6 Outputs).
type Violations struct {
	FacultyOverloadMinutes   map[int]int
	FacultyUnderfillMinutes  map[int]int
	SectionOverfillStudents  map[string]int
	SectionUnderfillStudents map[string]int
	RoomOvercapacityStudents map[string]int
	NonPreferredSubject      map[string]bool
	BlockUnderfill           map[domain.EntityRef][]int
	ExcessGap                map[domain.EntityRef][]int
	FacultyDayGaps           map[int]map[domain.Day]bool
	BatchDayGaps             map[int]map[domain.Day]bool
}

// Bundle is the result envelope passed to exporters.
type Bundle struct {
	ResultCode     int
	Pass1Objective float64
	Pass2Objective *float64
	DummyFaculty   int
	DummyRoom      int
	Sections       []SectionResult
	Violations     Violations
}

// Extract reads every solved value out of outcome.Built's model using
// whichever solver produced them — Pass 2's when it ran, Pass 1's
// otherwise (outcome.Solver()).
func Extract(outcome *solve.Outcome) Bundle {
	m := outcome.Built.Model
	solver := outcome.Solver()
	b := Bundle{
		ResultCode:     outcome.ResultCode,
		Pass1Objective: outcome.Pass1.ObjectiveValue,
		DummyFaculty:   m.Sentinels.DummyFaculty,
		DummyRoom:      m.Sentinels.DummyRoom,
	}
	if outcome.Pass2Ran {
		v := outcome.Pass2.ObjectiveValue
		b.Pass2Objective = &v
	}

	for _, section := range m.Sections {
		key := section.Key()
		sr := SectionResult{
			Section:           section,
			AssignedFaculty:   int(solver.Value(m.AssignedFaculty[key])),
			AssignedRoom:      int(solver.Value(m.AssignedRoom[key])),
			BatchPopulation:   map[int]int{},
			DurationViolation: solver.BooleanValue(m.DurationViolationOf[key]),
		}
		for bid, pop := range m.SectionPop[key] {
			if v := solver.Value(pop); v > 0 {
				sr.BatchPopulation[bid] = int(v)
			}
		}
		for _, day := range m.Days {
			mv := m.Meetings[key][day]
			sr.Meetings = append(sr.Meetings, MeetingResult{
				Day:      day,
				Start:    int(solver.Value(mv.Start)),
				Duration: int(solver.Value(mv.Duration)),
				Active:   solver.BooleanValue(mv.Active),
			})
		}
		b.Sections = append(b.Sections, sr)
	}

	b.Violations = extractViolations(outcome.Built, solver)

	return b
}

// extractViolations reads every tracker's solved values out of built's
// model using solver (spec.md §6 Outputs: "Violation trackers for each
// family in §4.8 and §4.9").
func extractViolations(built *solve.Built, solver *sat.CpSolver) Violations {
	v := Violations{
		FacultyOverloadMinutes:   map[int]int{},
		FacultyUnderfillMinutes:  map[int]int{},
		SectionOverfillStudents:  map[string]int{},
		SectionUnderfillStudents: map[string]int{},
		RoomOvercapacityStudents: map[string]int{},
		NonPreferredSubject:      map[string]bool{},
		BlockUnderfill:           map[domain.EntityRef][]int{},
		ExcessGap:                map[domain.EntityRef][]int{},
		FacultyDayGaps:           map[int]map[domain.Day]bool{},
		BatchDayGaps:             map[int]map[domain.Day]bool{},
	}

	if pref := built.Preference; pref != nil {
		for fid, iv := range pref.FacultyOverloadMinutes {
			v.FacultyOverloadMinutes[fid] = int(solver.Value(iv))
		}
		for fid, iv := range pref.FacultyUnderfillMinutes {
			v.FacultyUnderfillMinutes[fid] = int(solver.Value(iv))
		}
		for key, iv := range pref.SectionOverfillStudents {
			v.SectionOverfillStudents[key] = int(solver.Value(iv))
		}
		for key, iv := range pref.SectionUnderfillStudents {
			v.SectionUnderfillStudents[key] = int(solver.Value(iv))
		}
		for key, iv := range pref.RoomOvercapacityStudents {
			v.RoomOvercapacityStudents[key] = int(solver.Value(iv))
		}
		for key, bv := range pref.NonPreferredSubject {
			v.NonPreferredSubject[key] = solver.BooleanValue(bv)
		}
	}

	if sv := built.StreakViol; sv != nil {
		for ref, ivs := range sv.BlockUnderfill {
			vals := make([]int, len(ivs))
			for i, iv := range ivs {
				vals[i] = int(solver.Value(iv))
			}
			v.BlockUnderfill[ref] = vals
		}
		for ref, ivs := range sv.ExcessGap {
			vals := make([]int, len(ivs))
			for i, iv := range ivs {
				vals[i] = int(solver.Value(iv))
			}
			v.ExcessGap[ref] = vals
		}
	}

	for fid, byDay := range built.FacultyDayGaps {
		out := map[domain.Day]bool{}
		for day, bv := range byDay {
			out[day] = solver.BooleanValue(bv)
		}
		v.FacultyDayGaps[fid] = out
	}
	for bid, byDay := range built.BatchDayGaps {
		out := map[domain.Day]bool{}
		for day, bv := range byDay {
			out[day] = solver.BooleanValue(bv)
		}
		v.BatchDayGaps[bid] = out
	}

	return v
}
