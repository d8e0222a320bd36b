package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-labs/knowctl/internal/core/domain"
)

// textStore records text queries.
type textStore struct {
	*stubStore
	lastQuery string
	lastLimit int
	results   []domain.SearchResult
}

func (s *textStore) TextSearch(_ context.Context, query string, limit int) []domain.SearchResult {
	s.lastQuery = query
	s.lastLimit = limit
	return s.results
}

// vectorStore adds the similarity capability.
type vectorStore struct {
	*textStore
	lastEmbedding []float32
	simResults    []domain.SearchResult
}

func (s *vectorStore) SimilaritySearch(_ context.Context, embedding []float32, _ int) []domain.SearchResult {
	s.lastEmbedding = embedding
	return s.simResults
}

func newTextStore() *textStore {
	return &textStore{stubStore: newStubStore(), results: []domain.SearchResult{}}
}

func TestSearchText_EmptyQuery(t *testing.T) {
	store := newTextStore()
	svc := NewSearchService(store, nil)

	results := svc.Text(context.Background(), "   ", 10)
	assert.Empty(t, results)
	assert.Empty(t, store.lastQuery, "an empty query must not reach the store")
}

func TestSearchText_Delegates(t *testing.T) {
	store := newTextStore()
	store.results = []domain.SearchResult{
		{Chunk: domain.Chunk{Content: "a match"}, Score: 1},
	}
	svc := NewSearchService(store, nil)

	results := svc.Text(context.Background(), "  match  ", 7)
	require.Len(t, results, 1)
	assert.Equal(t, "match", store.lastQuery, "queries are trimmed")
	assert.Equal(t, 7, store.lastLimit)
}

func TestSearchSimilar_NoEmbedder(t *testing.T) {
	store := &vectorStore{textStore: newTextStore()}
	svc := NewSearchService(store, nil)

	results := svc.Similar(context.Background(), "query", 10)
	assert.Empty(t, results)
	assert.Nil(t, store.lastEmbedding)
}

func TestSearchSimilar_StoreWithoutVectorCapability(t *testing.T) {
	embedder := &stubEmbedder{}
	svc := NewSearchService(newTextStore(), embedder)

	results := svc.Similar(context.Background(), "query", 10)
	assert.Empty(t, results)
	assert.Zero(t, embedder.calls, "without a capable store the query is never embedded")
}

func TestSearchSimilar_Delegates(t *testing.T) {
	store := &vectorStore{
		textStore: newTextStore(),
		simResults: []domain.SearchResult{
			{Chunk: domain.Chunk{Content: "similar"}, Score: 0.9},
		},
	}
	embedder := &stubEmbedder{}
	svc := NewSearchService(store, embedder)

	results := svc.Similar(context.Background(), "query", 10)
	require.Len(t, results, 1)
	assert.Equal(t, []float32{0.5, 0.5}, store.lastEmbedding)
	assert.Equal(t, 1, embedder.calls)
}

func TestSearchSimilar_EmbedFailureRecovered(t *testing.T) {
	store := &vectorStore{textStore: newTextStore()}
	embedder := &stubEmbedder{poison: "query"}
	svc := NewSearchService(store, embedder)

	results := svc.Similar(context.Background(), "query", 10)
	assert.Empty(t, results)
	assert.Nil(t, store.lastEmbedding, "a failed embedding must not reach the store")
}

func TestSearchSimilar_EmptyQuery(t *testing.T) {
	store := &vectorStore{textStore: newTextStore()}
	embedder := &stubEmbedder{}
	svc := NewSearchService(store, embedder)

	results := svc.Similar(context.Background(), "", 10)
	assert.Empty(t, results)
	assert.Zero(t, embedder.calls)
}
