// Package export defines the output-side collaborator boundaries
// spec.md §6 (Outputs) and the Non-goals name as out of scope: a
// database write-back, a human-facing report, and a debug grid dump.
// This module ships the interfaces plus a minimal sqlx-based adapter
// for the first; callers bring their own report formatter and grid
// renderer.
package export

import (
	"context"

	"github.com/edu-sched/cpsolver/internal/result"
)

// DBExporter persists a solved Bundle somewhere durable. Spec.md names
// "writing results to a database" out of scope for the solver core; this
// interface is the seam a caller implements against.
type DBExporter interface {
	Export(ctx context.Context, bundle result.Bundle) error
}

// ReportExporter renders a Bundle into the human-facing report format a
// deployment chooses (spec.md §6 Outputs names this a caller concern).
type ReportExporter interface {
	Render(bundle result.Bundle) ([]byte, error)
}

// DebugDumper renders a timeslot.Grid snapshot for troubleshooting
// (spec.md names "debug grid dumps" out of scope). Takes an
// interface{} snapshot rather than importing internal/timeslot so this
// package stays a pure boundary definition.
type DebugDumper interface {
	Dump(snapshot interface{}) ([]byte, error)
}
