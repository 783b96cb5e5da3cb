package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/result"
)

func TestPDFExporterRendersASection(t *testing.T) {
	exporter := NewPDFExporter()
	bundle := result.Bundle{
		Sections: []result.SectionResult{
			{Section: domain.Section{SubjectID: 1, Index: 0}, AssignedFaculty: 7, AssignedRoom: 3},
		},
		Violations: result.Violations{
			FacultyOverloadMinutes: map[int]int{7: 45},
			NonPreferredSubject:    map[string]bool{"1/0#7": true},
		},
	}

	out, err := exporter.Render(bundle)
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestPDFExporterEmptyBundleErrors(t *testing.T) {
	exporter := NewPDFExporter()
	_, err := exporter.Render(result.Bundle{})
	require.Error(t, err)
}

func TestSectionsDatasetOneRowPerSection(t *testing.T) {
	bundle := result.Bundle{
		Sections: []result.SectionResult{
			{Section: domain.Section{SubjectID: 2, Index: 1}, AssignedFaculty: 4, AssignedRoom: 9, DurationViolation: true},
		},
	}
	data := sectionsDataset(bundle)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "true", data.Rows[0]["duration_violation"])
}
