package domain

import "strconv"

// Section is a logical slot (subject_id, section_index) in
// [0, ideal_num_sections) conceptually owned by its Subject; its lifecycle
// equals a single solve (spec.md §3).
type Section struct {
	SubjectID int
	Index     int
}

// Key returns a stable identifier suitable for map keys and variable names.
func (s Section) Key() string {
	return strconv.Itoa(s.SubjectID) + "#" + strconv.Itoa(s.Index)
}
