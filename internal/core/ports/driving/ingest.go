package driving

import (
	"context"

	"github.com/praxis-labs/knowctl/internal/core/domain"
)

// Ingestor drives the full ingestion sequence for a single file:
// read, reconcile document, split, embed, reconcile chunks.
type Ingestor interface {
	// Ingest processes the file at path and returns a run summary.
	// File- and document-level failures are fatal and return an error
	// with no summary; per-chunk failures are absorbed into the
	// summary's failed count.
	Ingest(ctx context.Context, path string) (*domain.IngestionResult, error)
}
