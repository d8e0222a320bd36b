package services

import (
	"context"
	"strings"

	"github.com/praxis-labs/knowctl/internal/core/domain"
	"github.com/praxis-labs/knowctl/internal/core/ports/driven"
	"github.com/praxis-labs/knowctl/internal/core/ports/driving"
	"github.com/praxis-labs/knowctl/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.Searcher = (*SearchService)(nil)

// SearchService answers lexical and similarity queries over ingested
// content. Both paths recover failures to empty result sets; search
// never raises to its callers.
type SearchService struct {
	store    driven.DocumentStore
	embedder driven.EmbeddingService
}

// NewSearchService creates a search service.
// The embedder is optional; without it, Similar returns empty results.
func NewSearchService(store driven.DocumentStore, embedder driven.EmbeddingService) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
	}
}

// Text performs a lexical search against chunk content.
func (s *SearchService) Text(ctx context.Context, query string, limit int) []domain.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}
	}

	return s.store.TextSearch(ctx, query, limit)
}

// Similar embeds the query and performs a similarity search.
// Dispatch is by capability: a store that cannot answer vector queries
// simply does not implement VectorSearcher.
func (s *SearchService) Similar(ctx context.Context, query string, limit int) []domain.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}
	}

	if s.embedder == nil {
		logger.Debug("Similarity search skipped: no embedding service configured")
		return []domain.SearchResult{}
	}

	vs, ok := s.store.(driven.VectorSearcher)
	if !ok {
		logger.Debug("Similarity search skipped: store has no vector capability")
		return []domain.SearchResult{}
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return []domain.SearchResult{}
	}

	return vs.SimilaritySearch(ctx, embedding, limit)
}
