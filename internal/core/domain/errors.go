package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFileNotFound indicates the source file path does not resolve to
	// a readable file. Fatal to the whole ingestion call.
	ErrFileNotFound = errors.New("source file not found")

	// ErrFileRead indicates the source file could not be read or decoded
	// as UTF-8 text. Fatal to the whole ingestion call.
	ErrFileRead = errors.New("source file unreadable")

	// ErrDocumentInsert indicates a document insert reported no row.
	// Ingestion cannot proceed without a document identifier.
	ErrDocumentInsert = errors.New("document insert returned no row")

	// ErrInvalidEmbedding indicates a malformed embedding vector.
	// Fatal to the affected chunk only, never to the whole run.
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrChunkStore indicates a chunk write did not land. Non-fatal to
	// the run; the chunk is accounted as failed.
	ErrChunkStore = errors.New("chunk write failed")
)
