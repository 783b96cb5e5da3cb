package export

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/edu-sched/cpsolver/internal/result"
)

// Dataset defines tabular export content, the same shape the teacher
// repository's CSVExporter/PDFExporter share.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// PDFExporter renders a solved Bundle into a basic tabular PDF report
// (spec.md §6 Outputs names "a human-facing report" a caller concern;
// this is the concrete adapter, matching SQLiteExporter's treatment of
// DBExporter rather than leaving ReportExporter unimplemented).
type PDFExporter struct{}

// NewPDFExporter constructs a PDF report exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render produces two pages: one table of all solved sections and one
// violation-tracker summary table, the way the teacher repository's PDFExporter renders a
// titled table per Dataset.
func (e *PDFExporter) Render(bundle result.Bundle) ([]byte, error) {
	if len(bundle.Sections) == 0 {
		return nil, fmt.Errorf("pdf report requires at least one solved section")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	renderTable(pdf, "Solved Sections", sectionsDataset(bundle))
	renderTable(pdf, "Violation Trackers", violationsDataset(bundle))

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf report: %w", err)
	}
	return buf.Bytes(), nil
}

func renderTable(pdf *gofpdf.Fpdf, title string, data Dataset) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	if len(data.Headers) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func sectionsDataset(bundle result.Bundle) Dataset {
	data := Dataset{Headers: []string{"subject", "section", "faculty", "room", "duration_violation"}}
	for _, s := range bundle.Sections {
		data.Rows = append(data.Rows, map[string]string{
			"subject":            strconv.Itoa(s.Section.SubjectID),
			"section":            strconv.Itoa(s.Section.Index),
			"faculty":            strconv.Itoa(s.AssignedFaculty),
			"room":               strconv.Itoa(s.AssignedRoom),
			"duration_violation": strconv.FormatBool(s.DurationViolation),
		})
	}
	return data
}

// violationsDataset flattens the faculty overload/underfill, section
// overfill/underfill, room overcapacity and non-preferred-subject
// families of Bundle.Violations into one (family, key, value) row per
// tracked entry. The block-underfill, excess-gap and day-gap families
// are not included.
func violationsDataset(bundle result.Bundle) Dataset {
	data := Dataset{Headers: []string{"family", "key", "value"}}
	v := bundle.Violations

	for _, fid := range sortedIntKeySet(v.FacultyOverloadMinutes) {
		data.Rows = append(data.Rows, vrow("faculty_overload_minutes", strconv.Itoa(fid), strconv.Itoa(v.FacultyOverloadMinutes[fid])))
	}
	for _, fid := range sortedIntKeySet(v.FacultyUnderfillMinutes) {
		data.Rows = append(data.Rows, vrow("faculty_underfill_minutes", strconv.Itoa(fid), strconv.Itoa(v.FacultyUnderfillMinutes[fid])))
	}
	for _, key := range sortedStringKeySet(v.SectionOverfillStudents) {
		data.Rows = append(data.Rows, vrow("section_overfill_students", key, strconv.Itoa(v.SectionOverfillStudents[key])))
	}
	for _, key := range sortedStringKeySet(v.SectionUnderfillStudents) {
		data.Rows = append(data.Rows, vrow("section_underfill_students", key, strconv.Itoa(v.SectionUnderfillStudents[key])))
	}
	for _, key := range sortedStringKeySet(v.RoomOvercapacityStudents) {
		data.Rows = append(data.Rows, vrow("room_overcapacity_students", key, strconv.Itoa(v.RoomOvercapacityStudents[key])))
	}
	for _, key := range sortedBoolKeySet(v.NonPreferredSubject) {
		data.Rows = append(data.Rows, vrow("non_preferred_subject", key, strconv.FormatBool(v.NonPreferredSubject[key])))
	}
	return data
}

func vrow(family, key, value string) map[string]string {
	return map[string]string{"family": family, "key": key, "value": value}
}

func sortedIntKeySet(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedStringKeySet(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedBoolKeySet(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
