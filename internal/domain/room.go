package domain

// Room is a physical space sections can be assigned to (spec.md §3).
type Room struct {
	ID         int
	ExternalID string
	Capacity   int
	RoomTypeID RoomTypeID
}

// Faculty is an instructor who may teach a subset of subjects (spec.md §3).
// All hour fields are expressed in minutes internally.
type Faculty struct {
	ID                int
	ExternalID        string
	Name              string
	MaxMinutes        int
	MinMinutes        int
	QualifiedSubjects map[int]bool
	PreferredSubjects map[int]bool
	MaxSubjects       *int
}

// Qualifies reports whether this faculty may teach subjectID at all
// (qualified or preferred — preferred is a subset of qualified, spec.md §3).
func (f Faculty) Qualifies(subjectID int) bool {
	return f.QualifiedSubjects[subjectID] || f.PreferredSubjects[subjectID]
}

// Prefers reports whether subjectID is in this faculty's preferred set.
func (f Faculty) Prefers(subjectID int) bool {
	return f.PreferredSubjects[subjectID]
}

// BannedWindow is a time range during which a batch may not be scheduled.
type BannedWindow struct {
	Day   Day
	Start Minutes
	End   Minutes
}

// ExternalMeeting is a fixed, non-negotiable commitment already on a
// batch's calendar (spec.md §3); it participates in the batch's NoOverlap
// set (spec.md §4.4) and, under the slot-oracle controller, pins the
// time-slot booleans it overlaps (spec.md §4.5).
type ExternalMeeting struct {
	Day         Day
	Start       Minutes
	End         Minutes
	Label       string
	Description string
}

// Batch is a cohort of students sharing an enrollment list (spec.md §3).
type Batch struct {
	ID               int
	ExternalID       string
	ProgramID        string
	Population       int
	EnrolledSubjects []int
	BannedWindows    []BannedWindow
	ExternalMeetings []ExternalMeeting
}

// Enrolls reports whether this batch enrolls subjectID.
func (b Batch) Enrolls(subjectID int) bool {
	for _, id := range b.EnrolledSubjects {
		if id == subjectID {
			return true
		}
	}
	return false
}
