package export

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/edu-sched/cpsolver/internal/domain"
	"github.com/edu-sched/cpsolver/internal/result"
)

func newExporterMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSQLiteExporterExportsEverySection(t *testing.T) {
	db, mock, cleanup := newExporterMock(t)
	defer cleanup()

	fixed := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	exporter := NewSQLiteExporter(db, func() time.Time { return fixed })

	mock.ExpectExec("INSERT INTO solved_sections").
		WithArgs(1, 0, 7, 3, false, fixed).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO solved_sections").
		WithArgs(1, 1, 8, 3, true, fixed).
		WillReturnResult(sqlmock.NewResult(2, 1))

	bundle := result.Bundle{
		Sections: []result.SectionResult{
			{Section: domain.Section{SubjectID: 1, Index: 0}, AssignedFaculty: 7, AssignedRoom: 3, BatchPopulation: map[int]int{}},
			{Section: domain.Section{SubjectID: 1, Index: 1}, AssignedFaculty: 8, AssignedRoom: 3, BatchPopulation: map[int]int{}, DurationViolation: true},
		},
	}

	err := exporter.Export(context.Background(), bundle)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteExporterEmptyBundleIsNoop(t *testing.T) {
	db, mock, cleanup := newExporterMock(t)
	defer cleanup()

	exporter := NewSQLiteExporter(db, nil)
	err := exporter.Export(context.Background(), result.Bundle{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
