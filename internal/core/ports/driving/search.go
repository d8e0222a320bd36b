package driving

import (
	"context"

	"github.com/praxis-labs/knowctl/internal/core/domain"
)

// Searcher exposes the query surface over ingested content.
type Searcher interface {
	// Text performs a lexical search against chunk content.
	Text(ctx context.Context, query string, limit int) []domain.SearchResult

	// Similar embeds the query and performs a similarity search.
	// Returns an empty slice when no embedding service is configured or
	// the store has no vector capability.
	Similar(ctx context.Context, query string, limit int) []domain.SearchResult
}
