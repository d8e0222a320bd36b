package driven

import (
	"context"

	"github.com/praxis-labs/knowctl/internal/core/domain"
)

// ReconcilePolicy selects how re-ingestion of a known document path is
// handled. The policy is fixed when the store is constructed and applies
// to every call; mixing policies per call is undefined behaviour.
type ReconcilePolicy string

const (
	// PolicyDeleteRecreate destroys the existing document and all of its
	// chunks, then inserts a fresh row with a new identifier. Pairs with
	// insert-only chunk semantics: after the purge, every chunk write is
	// an insert.
	PolicyDeleteRecreate ReconcilePolicy = "delete-recreate"

	// PolicyReuse returns the existing identifier unchanged with no
	// write. Pairs with upsert chunk semantics: chunks at an existing
	// (document, index) are overwritten in place.
	PolicyReuse ReconcilePolicy = "reuse"
)

// DocumentStore is the persistence boundary for documents and chunks.
// Each operation owns its own connection lifecycle; no transaction spans
// the reconcile-then-chunk-loop sequence of an ingestion run.
type DocumentStore interface {
	// ReconcileDocument maps an incoming document onto an existing or
	// new persisted record and returns the stable document identifier.
	// The document's ID field is ignored; identifiers are store-assigned.
	ReconcileDocument(ctx context.Context, doc *domain.Document) (string, error)

	// ReconcileChunk writes one chunk keyed by (DocumentID, Index).
	// The embedding, if present, is validated and serialised before any
	// write; a malformed embedding fails with domain.ErrInvalidEmbedding
	// and never reaches storage.
	ReconcileChunk(ctx context.Context, chunk *domain.Chunk) (domain.ChunkOutcome, error)

	// GetDocumentByPath retrieves a document by its file path.
	GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document and cascades to its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// CountDocuments returns the full-table document count.
	CountDocuments(ctx context.Context) (int, error)

	// CountChunks returns the full-table chunk count.
	CountChunks(ctx context.Context) (int, error)

	// TextSearch performs a lexical match against chunk content.
	// Connectivity failures are recovered locally to an empty slice and
	// never surface as errors.
	TextSearch(ctx context.Context, query string, limit int) []domain.SearchResult

	// HealthCheck is a cheap connectivity probe. Failure returns false,
	// never an error.
	HealthCheck(ctx context.Context) bool
}

// VectorSearcher is the capability interface for stores that can answer
// similarity queries over stored embeddings. Stores without vector
// support simply do not implement it; callers dispatch via interface
// presence, never via concrete type checks.
type VectorSearcher interface {
	// SimilaritySearch returns up to limit chunks ordered by cosine
	// similarity descending, filtered by the store's similarity
	// threshold. Failures are recovered locally to an empty slice.
	SimilaritySearch(ctx context.Context, embedding []float32, limit int) []domain.SearchResult
}
