package store

import (
	"context"
	"time"

	"github.com/sells-group/leadsync/internal/model"
)

// LeadFilter specifies criteria for listing journaled leads.
type LeadFilter struct {
	RunID  string    `json:"run_id,omitempty"`
	Since  time.Time `json:"since,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store is the local journal of pipeline runs and admitted leads. It backs
// the leads, export, and serve surfaces; the tabular sink remains the system
// of record, so journal writes are advisory.
type Store interface {
	// Runs
	CreateRun(ctx context.Context) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, report *model.RunReport, errMsg string) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Leads
	RecordLead(ctx context.Context, runID string, rec model.Record) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
