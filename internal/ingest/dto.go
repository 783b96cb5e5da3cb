// Package ingest normalizes the tabular rows spec.md §6 describes into
// domain entities, running the InputError/IngestWarning boundary of
// spec.md §7 through a single validator.Struct call per row (SPEC_FULL.md
// §A.4) instead of hand-rolled field checks.
package ingest

// RoomTypeRow mirrors the room_types input file.
type RoomTypeRow struct {
	ID          int    `validate:"required"`
	Name        string `validate:"required"`
	Description string
}

// SubjectTypeRow mirrors the subject_types input file.
type SubjectTypeRow struct {
	ID          int    `validate:"required"`
	Name        string `validate:"required"`
	Description string
}

// FacultyRow mirrors the faculty input file. Load values are multiplied by
// 3 to obtain hours (spec.md §6), then by 60 to obtain minutes (spec.md §3).
type FacultyRow struct {
	FacultyID           string `validate:"required"`
	Name                string `validate:"required"`
	MaxLoad             int    `validate:"gte=0"`
	MinLoad             int    `validate:"gte=0"`
	QualifiedSubjects   string
	PreferredSubjects   string
	MaxSubjects         *int
	ID                  int
}

// RoomRow mirrors the rooms input file.
type RoomRow struct {
	RoomID     string `validate:"required"`
	Capacity   int    `validate:"gte=0"`
	RoomTypeID int    `validate:"required"`
	ID         int
}

// SubjectRow mirrors the subjects input file.
type SubjectRow struct {
	ID                int     `validate:"required"`
	SubjectCode        string  `validate:"required"`
	LectureUnits       float64 `validate:"gte=0"`
	LabUnits           float64 `validate:"gte=0"`
	MaxEnrollment      *int
	MinEnrollment      *int
	MinMeetings        *int
	MaxMeetings        *int
	SubjectTypeID      *int
	RoomTypeID         *int
	LinkedSubjectID    *int
}

// StudentBatchRow mirrors the student_batches input file. Rows with
// population <= 0 are dropped on ingest (spec.md §6).
type StudentBatchRow struct {
	BatchID          string `validate:"required"`
	ProgramID        string `validate:"required"`
	Population       int
	EnrolledSubjects string
	ID               int
}

// BannedTimeRow mirrors the banned_times input file (missing/empty file
// tolerated, spec.md §6 — an IngestWarning, not a failure).
type BannedTimeRow struct {
	BatchID string `validate:"required"`
	Day     int    `validate:"gte=0"`
	Start   int    `validate:"gte=0"`
	End     int    `validate:"gtfield=Start"`
}

// ExternalMeetingRow mirrors the external_meetings input file (missing/
// empty file tolerated, spec.md §6).
type ExternalMeetingRow struct {
	BatchID     string `validate:"required"`
	Day         int    `validate:"gte=0"`
	Start       int    `validate:"gte=0"`
	End         int    `validate:"gtfield=Start"`
	Label       string
	Description string
}
