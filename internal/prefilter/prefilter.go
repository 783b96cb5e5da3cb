// Package prefilter implements the infeasibility pre-filter of spec.md
// §4.1: a single pass (no cascade) that drops subjects no assignment could
// ever satisfy, and strips every reference to them from batches and
// faculty.
package prefilter

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/ingest"
)

// Removal records why a subject was dropped, for the human-readable
// "removed" report spec.md §4.1 names.
type Removal struct {
	SubjectID int
	Reason    string
}

// Result is the filtered entity set plus the removal report.
type Result struct {
	Subjects []domain.Subject
	Batches  []domain.Batch
	Faculty  []domain.Faculty
	Removed  []Removal
}

// Run applies spec.md §4.1 rules (a)-(d) in a single pass:
//
//	(a) both max_meetings and required_weekly_minutes are zero
//	(b) no faculty lists it as qualified or preferred
//	(c) no batch enrolls it
//	(d) its required room_type_id (if set) is not offered by any room
func Run(n *ingest.Normalized, log *zap.Logger) Result {
	if log == nil {
		log = zap.NewNop()
	}

	roomTypesOffered := make(map[domain.RoomTypeID]bool)
	for _, r := range n.Rooms {
		roomTypesOffered[r.RoomTypeID] = true
	}

	qualifiedOrPreferred := make(map[int]bool)
	for _, f := range n.Faculty {
		for sid := range f.QualifiedSubjects {
			qualifiedOrPreferred[sid] = true
		}
		for sid := range f.PreferredSubjects {
			qualifiedOrPreferred[sid] = true
		}
	}

	enrolledBy := make(map[int]bool)
	for _, b := range n.Batches {
		for _, sid := range b.EnrolledSubjects {
			enrolledBy[sid] = true
		}
	}

	removedIDs := make(map[int]string)
	var removed []Removal
	for _, s := range n.Subjects {
		reason := ""
		switch {
		case s.MaxMeetings != nil && *s.MaxMeetings == 0 && s.RequiredWeeklyMinutes == 0:
			reason = "No Meetings"
		case !qualifiedOrPreferred[s.ID]:
			reason = "No Qualified Faculty"
		case !enrolledBy[s.ID]:
			reason = "No Enrolled Batch"
		case s.RoomTypeID != nil && !roomTypesOffered[*s.RoomTypeID]:
			reason = "No Room Type"
		}
		if reason != "" {
			removedIDs[s.ID] = reason
			removed = append(removed, Removal{SubjectID: s.ID, Reason: reason})
			log.Info("prefilter: removing unschedulable subject", zap.Int("subject_id", s.ID), zap.String("reason", reason))
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].SubjectID < removed[j].SubjectID })

	keptSubjects := make([]domain.Subject, 0, len(n.Subjects))
	for _, s := range n.Subjects {
		if _, gone := removedIDs[s.ID]; !gone {
			keptSubjects = append(keptSubjects, s)
		}
	}

	keptBatches := make([]domain.Batch, 0, len(n.Batches))
	for _, b := range n.Batches {
		nb := b
		nb.EnrolledSubjects = filterIDs(b.EnrolledSubjects, removedIDs)
		keptBatches = append(keptBatches, nb)
	}

	keptFaculty := make([]domain.Faculty, 0, len(n.Faculty))
	for _, f := range n.Faculty {
		nf := f
		nf.QualifiedSubjects = filterSet(f.QualifiedSubjects, removedIDs)
		nf.PreferredSubjects = filterSet(f.PreferredSubjects, removedIDs)
		keptFaculty = append(keptFaculty, nf)
	}

	return Result{Subjects: keptSubjects, Batches: keptBatches, Faculty: keptFaculty, Removed: removed}
}

// Report renders the human-readable removal report spec.md §4.1 names.
func Report(removed []Removal) string {
	if len(removed) == 0 {
		return "No subjects removed by the infeasibility pre-filter."
	}
	out := "Subjects removed by the infeasibility pre-filter:\n"
	for _, r := range removed {
		out += fmt.Sprintf("  subject %d: %s\n", r.SubjectID, r.Reason)
	}
	return out
}

func filterIDs(ids []int, removed map[int]string) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, gone := removed[id]; !gone {
			out = append(out, id)
		}
	}
	return out
}

func filterSet(set map[int]bool, removed map[int]string) map[int]bool {
	out := make(map[int]bool, len(set))
	for id := range set {
		if _, gone := removed[id]; !gone {
			out[id] = true
		}
	}
	return out
}
