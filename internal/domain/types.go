// Package domain holds the entities and invariants from which the
// constraint model is built: subjects, rooms, faculty, batches, and the
// derived sections/meetings/slots produced for a single solve.
package domain

import "strings"

// Minutes is a clock offset or duration expressed in minutes from midnight.
type Minutes int

// Day indexes into the scheduling week (0-based, matches config.SchedulingDays).
type Day int

// RoomTypeID, SubjectTypeID identify lookup rows.
type RoomTypeID int
type SubjectTypeID int

// Sentinels carries the dummy faculty/room indices resolved for a run
// (they equal len(faculty) and len(rooms) after the pre-filter, so they
// cannot be hardcoded constants).
type Sentinels struct {
	DummyFaculty int
	DummyRoom    int
}

// RoomType is a lookup entry for room categories (e.g. "lecture hall", "lab").
type RoomType struct {
	ID          RoomTypeID
	Name        string
	Description string
}

// SubjectType is a lookup entry; a name containing "lab" (case-insensitive)
// marks every subject of that type as a lab subject (spec.md §3, §6).
type SubjectType struct {
	ID          SubjectTypeID
	Name        string
	Description string
}

// IsLab reports whether this subject type denotes a laboratory subject.
func (t SubjectType) IsLab() bool {
	return strings.Contains(strings.ToLower(t.Name), "lab")
}
