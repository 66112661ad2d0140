// Package store persists intake runs: the extracted record, each resolution
// summary, the autofill report, and the append-only history of resolved
// field versions.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sells-group/intake-cli/internal/model"
)

// RunStatus tracks where a run sits in the pipeline.
type RunStatus string

const (
	RunStatusExtracted  RunStatus = "extracted"
	RunStatusResolved   RunStatus = "resolved"
	RunStatusAutofilled RunStatus = "autofilled"
	RunStatusReviewed   RunStatus = "reviewed"
)

// Run is one intake pipeline execution.
type Run struct {
	ID        string                `json:"id"`
	Status    RunStatus             `json:"status"`
	Record    *model.Record         `json:"record"`
	Summary   json.RawMessage       `json:"summary,omitempty"`
	Autofill  *model.AutofillReport `json:"autofill,omitempty"`
	Coverage  json.RawMessage       `json:"coverage,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status RunStatus `json:"status,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for the intake pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, rec *model.Record) (*Run, error)
	UpdateRunRecord(ctx context.Context, runID string, rec *model.Record, status RunStatus) error
	UpdateRunSummary(ctx context.Context, runID string, summary json.RawMessage) error
	UpdateRunAutofill(ctx context.Context, runID string, report *model.AutofillReport) error
	UpdateRunCoverage(ctx context.Context, runID string, report json.RawMessage) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// Field audit trail. Versions are append-only; history returns them in
	// version order.
	AppendFieldVersion(ctx context.Context, runID string, field *model.ResolvedField) error
	FieldHistory(ctx context.Context, runID, path string) ([]model.ResolvedField, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
