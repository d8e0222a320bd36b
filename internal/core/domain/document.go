package domain

import "time"

// Document represents one ingested source file.
// It is keyed by its file path: at most one live document exists per path.
type Document struct {
	// ID is the store-assigned unique identifier.
	ID string

	// Path is the source file path. Unique and stable across re-ingestion
	// of the same logical file.
	Path string

	// Title is the human-readable title (the file name on ingestion).
	Title string

	// FileType is the source file extension, including the dot.
	FileType string

	// FileSize is the content length in bytes at ingestion time.
	FileSize int64

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when this document row was created.
	CreatedAt time.Time
}

// Chunk is one positioned fragment of a document's content.
// Within a document, chunks are uniquely identified by Index.
type Chunk struct {
	// ID is the store-assigned unique identifier. Empty until the chunk
	// has been reconciled; callers never assign it.
	ID string

	// DocumentID links to the owning Document. Fragments coming out of a
	// chunking strategy carry no document ID; the ingestion pipeline
	// stamps it before reconciliation.
	DocumentID string

	// Index is the 0-based position within the document, contiguous per
	// ingestion run.
	Index int

	// Content is the text fragment.
	Content string

	// StartPos and EndPos are offsets of the fragment within the source
	// content. Nil when unknown.
	StartPos *int
	EndPos   *int

	// Type names the chunking strategy that produced this fragment.
	Type string

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any

	// Embedding is the vector representation for similarity search.
	// Nil means the chunk has no embedding.
	Embedding []float32
}

// ChunkStatus is the outcome of reconciling a single chunk.
type ChunkStatus string

const (
	// ChunkCreated means a new chunk row was inserted.
	ChunkCreated ChunkStatus = "created"

	// ChunkUpdated means an existing row at (document, index) was
	// overwritten in place.
	ChunkUpdated ChunkStatus = "updated"

	// ChunkFailed means the write did not land.
	ChunkFailed ChunkStatus = "failed"
)

// ChunkOutcome reports what a chunk reconciliation did.
type ChunkOutcome struct {
	// Status is created, updated or failed.
	Status ChunkStatus

	// ChunkID is the persisted chunk identifier. Empty when Status is
	// ChunkFailed.
	ChunkID string
}

// IngestionResult summarises one ingestion run. It is a report, not a
// transaction receipt: counts reveal partial failure.
type IngestionResult struct {
	// DocumentID is the identifier returned by document reconciliation.
	DocumentID string `json:"document_id"`

	// Filename is the base name of the ingested file.
	Filename string `json:"filename"`

	// ChunksCreated counts fragments stored as new rows.
	ChunksCreated int `json:"chunks_created"`

	// ChunksUpdated counts fragments that overwrote existing rows.
	ChunksUpdated int `json:"chunks_updated"`

	// ChunksFailed counts fragments that did not reach storage.
	ChunksFailed int `json:"chunks_failed"`

	// TotalChunks is the number of fragments the splitter emitted.
	TotalChunks int `json:"total_chunks"`
}

// SearchResult pairs a matched chunk with its parent document context.
type SearchResult struct {
	// Chunk is the matched fragment.
	Chunk Chunk `json:"chunk"`

	// DocumentPath is the owning document's file path.
	DocumentPath string `json:"document_path"`

	// DocumentTitle is the owning document's title.
	DocumentTitle string `json:"document_title"`

	// Score is the match score. Cosine similarity (0-1) for vector
	// matches, zero for lexical matches.
	Score float64 `json:"score"`
}
