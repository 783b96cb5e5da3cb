package export

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edu-sched/cpsolver/internal/result"
)

// sectionRow mirrors one exported row; exported via sqlx's NamedExecContext
// the same way the teacher repository's *Repository.Create methods bind
// struct fields to named query parameters.
type sectionRow struct {
	SubjectID       int       `db:"subject_id"`
	SectionIndex    int       `db:"section_index"`
	AssignedFaculty int       `db:"assigned_faculty"`
	AssignedRoom    int       `db:"assigned_room"`
	DurationViolation bool    `db:"duration_violation"`
	ExportedAt      time.Time `db:"exported_at"`
}

// SQLiteExporter writes a solved Bundle's sections into a caller-supplied
// sqlx.DB. The driver registered under that *sqlx.DB (sqlite3, or any
// other driver sharing its placeholder dialect) stays entirely the
// caller's choice — spec.md's Non-goals keep "SQLite export" itself out
// of the solver core; this adapter only defines the SQL shape.
type SQLiteExporter struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteExporter wraps db. now lets tests supply a fixed clock; nil
// defaults to time.Now.
func NewSQLiteExporter(db *sqlx.DB, now func() time.Time) *SQLiteExporter {
	if now == nil {
		now = time.Now
	}
	return &SQLiteExporter{db: db, now: now}
}

// Export writes every solved section as one row. It does not attempt an
// upsert: re-exporting the same Bundle twice produces duplicate rows,
// left to the caller's schema (e.g. a unique index on subject_id,
// section_index, exported_at) the way the teacher's BulkCreate leaves
// conflict handling to the table's own constraints.
func (e *SQLiteExporter) Export(ctx context.Context, bundle result.Bundle) error {
	if len(bundle.Sections) == 0 {
		return nil
	}
	rows := make([]sectionRow, 0, len(bundle.Sections))
	exportedAt := e.now().UTC()
	for _, s := range bundle.Sections {
		rows = append(rows, sectionRow{
			SubjectID:         s.Section.SubjectID,
			SectionIndex:      s.Section.Index,
			AssignedFaculty:   s.AssignedFaculty,
			AssignedRoom:      s.AssignedRoom,
			DurationViolation: s.DurationViolation,
			ExportedAt:        exportedAt,
		})
	}

	const query = `INSERT INTO solved_sections (subject_id, section_index, assigned_faculty, assigned_room, duration_violation, exported_at) VALUES (:subject_id, :section_index, :assigned_faculty, :assigned_room, :duration_violation, :exported_at)`
	for i := range rows {
		if _, err := e.db.NamedExecContext(ctx, query, &rows[i]); err != nil {
			return fmt.Errorf("export solved section %d#%d: %w", rows[i].SubjectID, rows[i].SectionIndex, err)
		}
	}
	return nil
}
