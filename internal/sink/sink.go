// Package sink defines the tabular-store boundary lead records are
// appended to. Implementations live in the sheets and notion subpackages.
package sink

import (
	"context"

	"github.com/sells-group/leadsync/internal/model"
)

// Sink is the append-only lead store. Append carries no transactional
// guarantee; idempotence comes from the identifier dedup step upstream,
// fed by SeenIDs.
type Sink interface {
	// SeenIDs returns every unique identifier already present in the
	// store's identifier column, excluding the header label and empty
	// cells. Loaded fresh once per pipeline run.
	SeenIDs(ctx context.Context) (map[string]struct{}, error)

	// Append adds one record as a new row.
	Append(ctx context.Context, rec model.Record) error
}
