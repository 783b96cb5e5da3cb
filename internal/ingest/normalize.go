package ingest

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/pkg/config"
	appErrors "github.com/edu-sched/cpsolver/pkg/errors"
)

// Input is the full set of tabular rows spec.md §6 describes, already
// read from whatever source a caller chose (CSV ingestion mechanics are
// out of scope per spec.md §1).
type Input struct {
	RoomTypes        []RoomTypeRow
	SubjectTypes     []SubjectTypeRow
	Faculty          []FacultyRow
	Rooms            []RoomRow
	Subjects         []SubjectRow
	StudentBatches   []StudentBatchRow
	BannedTimes      []BannedTimeRow
	ExternalMeetings []ExternalMeetingRow
}

// Normalized is the full domain entity set a solve runs against, before
// the infeasibility pre-filter (spec.md §4.1).
type Normalized struct {
	RoomTypes    map[domain.RoomTypeID]domain.RoomType
	SubjectTypes map[domain.SubjectTypeID]domain.SubjectType
	Faculty      []domain.Faculty
	Rooms        []domain.Room
	Subjects     []domain.Subject
	Batches      []domain.Batch
}

// Warnings accumulates IngestWarning-severity findings (spec.md §7): a
// missing optional file, or a dropped zero-population batch.
type Warnings []*appErrors.Error

// Normalize validates every row with a single validator.Struct call
// (SPEC_FULL.md §A.4), then builds the domain entity set, computing
// required_weekly_minutes and converting load/unit values to minutes
// (spec.md §6). It fails fast with an InputError the moment a subject
// declares required_weekly_minutes > 0 but omits min/max meetings
// (spec.md §7).
func Normalize(in Input, cfg *config.Config, log *zap.Logger) (*Normalized, Warnings, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v := validator.New()
	var warnings Warnings

	roomTypes := make(map[domain.RoomTypeID]domain.RoomType, len(in.RoomTypes))
	for _, row := range in.RoomTypes {
		if err := v.Struct(row); err != nil {
			return nil, nil, appErrors.Wrap(err, "INVALID_ROOM_TYPE", appErrors.SeverityInputError, "invalid room_types row")
		}
		roomTypes[domain.RoomTypeID(row.ID)] = domain.RoomType{ID: domain.RoomTypeID(row.ID), Name: row.Name, Description: row.Description}
	}

	subjectTypes := make(map[domain.SubjectTypeID]domain.SubjectType, len(in.SubjectTypes))
	for _, row := range in.SubjectTypes {
		if err := v.Struct(row); err != nil {
			return nil, nil, appErrors.Wrap(err, "INVALID_SUBJECT_TYPE", appErrors.SeverityInputError, "invalid subject_types row")
		}
		subjectTypes[domain.SubjectTypeID(row.ID)] = domain.SubjectType{ID: domain.SubjectTypeID(row.ID), Name: row.Name, Description: row.Description}
	}

	rooms := make([]domain.Room, 0, len(in.Rooms))
	for i, row := range in.Rooms {
		if err := v.Struct(row); err != nil {
			return nil, nil, appErrors.Wrap(err, "INVALID_ROOM", appErrors.SeverityInputError, "invalid rooms row")
		}
		id := row.ID
		if id == 0 {
			id = i
		}
		rooms = append(rooms, domain.Room{ID: id, ExternalID: row.RoomID, Capacity: row.Capacity, RoomTypeID: domain.RoomTypeID(row.RoomTypeID)})
	}

	faculty := make([]domain.Faculty, 0, len(in.Faculty))
	for i, row := range in.Faculty {
		if err := v.Struct(row); err != nil {
			return nil, nil, appErrors.Wrap(err, "INVALID_FACULTY", appErrors.SeverityInputError, "invalid faculty row")
		}
		id := row.ID
		if id == 0 {
			id = i
		}
		faculty = append(faculty, domain.Faculty{
			ID:                id,
			ExternalID:        row.FacultyID,
			Name:              row.Name,
			MaxMinutes:        row.MaxLoad * 3 * 60,
			MinMinutes:        row.MinLoad * 3 * 60,
			QualifiedSubjects: parseIDSet(row.QualifiedSubjects),
			PreferredSubjects: parseIDSet(row.PreferredSubjects),
			MaxSubjects:       row.MaxSubjects,
		})
	}

	subjects := make([]domain.Subject, 0, len(in.Subjects))
	for _, row := range in.Subjects {
		if err := v.Struct(row); err != nil {
			return nil, nil, appErrors.Wrap(err, "INVALID_SUBJECT", appErrors.SeverityInputError, "invalid subjects row")
		}
		requiredMinutes := int((row.LectureUnits*cfg.LectureUnitToHours + row.LabUnits*cfg.LabUnitToHours) * 60)
		if requiredMinutes > 0 && (row.MinMeetings == nil || row.MaxMeetings == nil) {
			return nil, nil, appErrors.Clone(appErrors.ErrSubjectMissingMeetings, "subject "+strconv.Itoa(row.ID)+" declares required_weekly_minutes > 0 but omits min/max meetings")
		}
		var roomTypeID *domain.RoomTypeID
		if row.RoomTypeID != nil {
			rt := domain.RoomTypeID(*row.RoomTypeID)
			roomTypeID = &rt
		}
		typeName := ""
		if row.SubjectTypeID != nil {
			if st, ok := subjectTypes[domain.SubjectTypeID(*row.SubjectTypeID)]; ok {
				typeName = st.Name
			}
		}
		subj := domain.Subject{
			ID:                    row.ID,
			Code:                  row.SubjectCode,
			RequiredWeeklyMinutes: requiredMinutes,
			LinkedSubjectID:       row.LinkedSubjectID,
			RoomTypeID:            roomTypeID,
			MinEnrollment:         row.MinEnrollment,
			MaxEnrollment:         row.MaxEnrollment,
			MinMeetings:           row.MinMeetings,
			MaxMeetings:           row.MaxMeetings,
			SubjectTypeName:       typeName,
		}
		if err := subj.Validate(); err != nil {
			return nil, nil, appErrors.Wrap(err, "INVALID_SUBJECT_INVARIANT", appErrors.SeverityInputError, "subject fails structural invariant")
		}
		subjects = append(subjects, subj)
	}
	// linked_subject_id must reference an existing subject (spec.md §3).
	subjectIDs := make(map[int]bool, len(subjects))
	for _, s := range subjects {
		subjectIDs[s.ID] = true
	}
	for _, s := range subjects {
		if s.LinkedSubjectID != nil && !subjectIDs[*s.LinkedSubjectID] {
			return nil, nil, appErrors.Wrap(nil, "DANGLING_LINKED_SUBJECT", appErrors.SeverityInputError, "subject "+strconv.Itoa(s.ID)+" links to a nonexistent subject")
		}
	}

	batches := make([]domain.Batch, 0, len(in.StudentBatches))
	for i, row := range in.StudentBatches {
		if row.Population <= 0 {
			warnings = append(warnings, appErrors.New("BATCH_DROPPED", appErrors.SeverityIngestWarning, "batch "+row.BatchID+" dropped: population <= 0"))
			log.Warn("ingest: dropping batch with non-positive population", zap.String("batch_id", row.BatchID))
			continue
		}
		if err := v.Struct(row); err != nil {
			return nil, nil, appErrors.Wrap(err, "INVALID_BATCH", appErrors.SeverityInputError, "invalid student_batches row")
		}
		id := row.ID
		if id == 0 {
			id = i
		}
		batches = append(batches, domain.Batch{
			ID:               id,
			ExternalID:       row.BatchID,
			ProgramID:        row.ProgramID,
			Population:       row.Population,
			EnrolledSubjects: parseIDList(row.EnrolledSubjects),
		})
	}

	batchByExternalID := make(map[string]int, len(batches))
	for i, b := range batches {
		batchByExternalID[b.ExternalID] = i
	}

	if len(in.BannedTimes) == 0 {
		warnings = append(warnings, appErrors.New("BANNED_TIMES_MISSING", appErrors.SeverityIngestWarning, "banned_times file missing or empty; treated as empty"))
	}
	for _, row := range in.BannedTimes {
		if err := v.Struct(row); err != nil {
			return nil, nil, appErrors.Wrap(err, "INVALID_BANNED_TIME", appErrors.SeverityInputError, "invalid banned_times row")
		}
		idx, ok := batchByExternalID[row.BatchID]
		if !ok {
			continue
		}
		batches[idx].BannedWindows = append(batches[idx].BannedWindows, domain.BannedWindow{
			Day: domain.Day(row.Day), Start: domain.Minutes(row.Start), End: domain.Minutes(row.End),
		})
	}

	if len(in.ExternalMeetings) == 0 {
		warnings = append(warnings, appErrors.New("EXTERNAL_MEETINGS_MISSING", appErrors.SeverityIngestWarning, "external_meetings file missing or empty; treated as empty"))
	}
	for _, row := range in.ExternalMeetings {
		if err := v.Struct(row); err != nil {
			return nil, nil, appErrors.Wrap(err, "INVALID_EXTERNAL_MEETING", appErrors.SeverityInputError, "invalid external_meetings row")
		}
		idx, ok := batchByExternalID[row.BatchID]
		if !ok {
			continue
		}
		batches[idx].ExternalMeetings = append(batches[idx].ExternalMeetings, domain.ExternalMeeting{
			Day: domain.Day(row.Day), Start: domain.Minutes(row.Start), End: domain.Minutes(row.End),
			Label: row.Label, Description: row.Description,
		})
	}

	assignIdealNumSections(subjects, batches)

	return &Normalized{
		RoomTypes:    roomTypes,
		SubjectTypes: subjectTypes,
		Faculty:      faculty,
		Rooms:        rooms,
		Subjects:     subjects,
		Batches:      batches,
	}, warnings, nil
}

// assignIdealNumSections computes each subject's ideal_num_sections as
// ceil(total enrolled population / effective max enrollment), mirroring
// the original implementation's post-enrollment pass (original_source/
// main.py). Subjects with zero enrolled population get zero sections —
// the pre-filter (spec.md §4.1 rule (c)) removes them anyway.
func assignIdealNumSections(subjects []domain.Subject, batches []domain.Batch) {
	totalEnrollment := make(map[int]int, len(subjects))
	for _, b := range batches {
		for _, sid := range b.EnrolledSubjects {
			totalEnrollment[sid] += b.Population
		}
	}
	for i := range subjects {
		total := totalEnrollment[subjects[i].ID]
		if total <= 0 {
			continue
		}
		maxSize := subjects[i].EffectiveMaxEnrollment()
		subjects[i].IdealNumSections = (total + maxSize - 1) / maxSize
	}
}

func parseIDSet(raw string) map[int]bool {
	out := map[int]bool{}
	for _, id := range parseIDList(raw) {
		out[id] = true
	}
	return out
}

func parseIDList(raw string) []int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
