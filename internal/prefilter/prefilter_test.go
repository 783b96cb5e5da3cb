package prefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/ingest"
)

func TestRunRemovesSubjectWithMissingRoomType(t *testing.T) {
	badRoomType := domain.RoomTypeID(99)
	n := &ingest.Normalized{
		Rooms: []domain.Room{{ID: 0, RoomTypeID: domain.RoomTypeID(1), Capacity: 40}},
		Faculty: []domain.Faculty{
			{ID: 0, QualifiedSubjects: map[int]bool{1: true}},
		},
		Batches: []domain.Batch{
			{ID: 0, Population: 30, EnrolledSubjects: []int{1}},
		},
		Subjects: []domain.Subject{
			{ID: 1, RequiredWeeklyMinutes: 180, RoomTypeID: &badRoomType},
		},
	}

	result := Run(n, nil)

	require.Len(t, result.Removed, 1)
	assert.Equal(t, 1, result.Removed[0].SubjectID)
	assert.Equal(t, "No Room Type", result.Removed[0].Reason)
	assert.Empty(t, result.Subjects)
	assert.Empty(t, result.Batches[0].EnrolledSubjects)
}

func TestRunKeepsSchedulableSubjects(t *testing.T) {
	goodRoomType := domain.RoomTypeID(1)
	n := &ingest.Normalized{
		Rooms:   []domain.Room{{ID: 0, RoomTypeID: goodRoomType, Capacity: 40}},
		Faculty: []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{1: true}}},
		Batches: []domain.Batch{{ID: 0, Population: 30, EnrolledSubjects: []int{1}}},
		Subjects: []domain.Subject{
			{ID: 1, RequiredWeeklyMinutes: 180, RoomTypeID: &goodRoomType},
		},
	}

	result := Run(n, nil)

	assert.Empty(t, result.Removed)
	require.Len(t, result.Subjects, 1)
	assert.Equal(t, 1, result.Subjects[0].ID)
}

func TestRunRemovesSubjectWithNoQualifiedFaculty(t *testing.T) {
	n := &ingest.Normalized{
		Faculty: []domain.Faculty{{ID: 0, QualifiedSubjects: map[int]bool{}}},
		Batches: []domain.Batch{{ID: 0, Population: 10, EnrolledSubjects: []int{2}}},
		Subjects: []domain.Subject{
			{ID: 2, RequiredWeeklyMinutes: 120},
		},
	}

	result := Run(n, nil)

	require.Len(t, result.Removed, 1)
	assert.Equal(t, "No Qualified Faculty", result.Removed[0].Reason)
}
