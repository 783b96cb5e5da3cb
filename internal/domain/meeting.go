package domain

// Meeting is the tuple (subject_id, section_index, day_index): one of the
// five per-day meetings a section owns. is_active ⇒ end = start + duration;
// duration lies in the section's discrete duration set (spec.md §3, §4.3).
type Meeting struct {
	Section  Section
	Day      Day
	Start    Minutes
	Duration Minutes
	Active   bool
}

// End returns start+duration for an active meeting; callers must not read
// End on an inactive meeting (its start/duration may be left at their
// solver-chosen-but-unused values).
func (m Meeting) End() Minutes {
	return m.Start + m.Duration
}

// DurationSet computes D(sub) from spec.md §4.3: for n = min_meetings to
// max_meetings, d = floor(required/n); include d if d >= 60; stop once d
// drops below 60 (including the boundary value 60, i.e. 60 is the last
// value included before iteration halts). If max_meetings == 0, D = {0}.
//
// minMeetings and maxMeetings must both be set (non-nil) whenever
// requiredWeeklyMinutes > 0 — the ingest layer enforces this as InputError
// (spec.md §7); this function panics if called with an ill-formed subject,
// since a correct pipeline never reaches it in that state.
func DurationSet(requiredWeeklyMinutes int, minMeetings, maxMeetings *int) []int {
	if maxMeetings != nil && *maxMeetings == 0 {
		return []int{0}
	}
	if minMeetings == nil || maxMeetings == nil {
		panic("domain: DurationSet requires min/max meetings when max_meetings != 0")
	}
	var durations []int
	for n := *minMeetings; n <= *maxMeetings; n++ {
		d := requiredWeeklyMinutes / n
		if d < 60 {
			break
		}
		durations = append(durations, d)
		if d == 60 {
			break
		}
	}
	return durations
}
