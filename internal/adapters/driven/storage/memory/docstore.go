// Package memory provides an in-memory document store. It supports
// keyword search only; similarity queries require a store with vector
// capability.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/praxis-labs/knowctl/internal/core/domain"
	"github.com/praxis-labs/knowctl/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface. It intentionally does
// NOT implement driven.VectorSearcher.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Useful for tests and throwaway sessions; nothing survives the
// process.
type DocumentStore struct {
	mu        sync.RWMutex
	policy    driven.ReconcilePolicy
	documents map[string]domain.Document      // by ID
	byPath    map[string]string               // path -> ID
	chunks    map[string]map[int]domain.Chunk // document ID -> index -> chunk
}

// NewDocumentStore creates an in-memory store with the given policy.
func NewDocumentStore(policy driven.ReconcilePolicy) *DocumentStore {
	if policy != driven.PolicyReuse {
		policy = driven.PolicyDeleteRecreate
	}
	return &DocumentStore{
		policy:    policy,
		documents: make(map[string]domain.Document),
		byPath:    make(map[string]string),
		chunks:    make(map[string]map[int]domain.Chunk),
	}
}

// Policy returns the configured reconciliation policy.
func (s *DocumentStore) Policy() driven.ReconcilePolicy {
	return s.policy
}

// ReconcileDocument maps an incoming document onto stored state and
// returns its identifier, honouring the configured policy.
func (s *DocumentStore) ReconcileDocument(_ context.Context, doc *domain.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.byPath[doc.Path]; ok {
		if s.policy == driven.PolicyReuse {
			return existingID, nil
		}
		delete(s.documents, existingID)
		delete(s.chunks, existingID)
		delete(s.byPath, doc.Path)
	}

	stored := *doc
	stored.ID = uuid.New().String()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	s.documents[stored.ID] = stored
	s.byPath[stored.Path] = stored.ID
	return stored.ID, nil
}

// ReconcileChunk upserts one chunk keyed by (DocumentID, Index).
func (s *DocumentStore) ReconcileChunk(_ context.Context, chunk *domain.Chunk) (domain.ChunkOutcome, error) {
	failed := domain.ChunkOutcome{Status: domain.ChunkFailed}

	// Validate the embedding the same way a persistent store would,
	// before anything is written.
	if chunk.Embedding != nil {
		if _, err := domain.EncodeVector(chunk.Embedding); err != nil {
			return failed, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[chunk.DocumentID]; !ok {
		return failed, domain.ErrChunkStore
	}

	byIndex := s.chunks[chunk.DocumentID]
	if byIndex == nil {
		byIndex = make(map[int]domain.Chunk)
		s.chunks[chunk.DocumentID] = byIndex
	}

	status := domain.ChunkCreated
	id := uuid.New().String()
	if existing, ok := byIndex[chunk.Index]; ok {
		status = domain.ChunkUpdated
		id = existing.ID
	}

	stored := *chunk
	stored.ID = id
	byIndex[chunk.Index] = stored

	return domain.ChunkOutcome{Status: status, ChunkID: id}, nil
}

// GetDocumentByPath retrieves a document by its file path.
func (s *DocumentStore) GetDocumentByPath(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPath[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// GetChunks retrieves all chunks for a document, ordered by index.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byIndex, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(byIndex))
	for _, c := range byIndex {
		chunks = append(chunks, c)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.documents[id]; ok {
		delete(s.byPath, doc.Path)
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// CountDocuments returns the stored document count.
func (s *DocumentStore) CountDocuments(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// CountChunks returns the stored chunk count across all documents.
func (s *DocumentStore) CountChunks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, byIndex := range s.chunks {
		count += len(byIndex)
	}
	return count, nil
}

// TextSearch performs a substring match against chunk content.
func (s *DocumentStore) TextSearch(_ context.Context, query string, limit int) []domain.SearchResult {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []domain.SearchResult{}
	for docID, byIndex := range s.chunks {
		doc := s.documents[docID]
		for _, c := range byIndex {
			if !strings.Contains(c.Content, query) {
				continue
			}
			results = append(results, domain.SearchResult{
				Chunk:         c,
				DocumentPath:  doc.Path,
				DocumentTitle: doc.Title,
			})
			if len(results) >= limit {
				return results
			}
		}
	}
	return results
}

// HealthCheck always succeeds; the store lives in this process.
func (s *DocumentStore) HealthCheck(_ context.Context) bool {
	return true
}
