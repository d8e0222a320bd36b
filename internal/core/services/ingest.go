package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/praxis-labs/knowctl/internal/core/domain"
	"github.com/praxis-labs/knowctl/internal/core/ports/driven"
	"github.com/praxis-labs/knowctl/internal/core/ports/driving"
	"github.com/praxis-labs/knowctl/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.Ingestor = (*IngestionPipeline)(nil)

// IngestionPipeline drives the full ingestion sequence for one file:
// read, reconcile document, split, embed, reconcile chunks.
//
// Processing is synchronous and strictly in fragment order. There is no
// transaction across the document and chunk steps: a crash mid-run
// leaves a partial chunk set, which a re-run heals through idempotent
// reconciliation. Concurrent ingestion of the same path is not
// serialised here; the storage layer's (document, index) uniqueness
// constraint turns that race into a reported conflict.
type IngestionPipeline struct {
	store    driven.DocumentStore
	chunker  driven.ChunkingStrategy
	embedder driven.EmbeddingService
}

// NewIngestionPipeline creates an ingestion pipeline.
// The embedder is optional; when nil, chunks are stored without
// embeddings and similarity search stays disabled.
func NewIngestionPipeline(
	store driven.DocumentStore,
	chunker driven.ChunkingStrategy,
	embedder driven.EmbeddingService,
) *IngestionPipeline {
	return &IngestionPipeline{
		store:    store,
		chunker:  chunker,
		embedder: embedder,
	}
}

// Ingest processes the file at path and returns a run summary.
func (p *IngestionPipeline) Ingest(ctx context.Context, path string) (*domain.IngestionResult, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFileRead, path, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: %s: not valid UTF-8", domain.ErrFileRead, path)
	}
	content := string(raw)

	filename := filepath.Base(path)
	metadata := map[string]any{
		"filename":          filename,
		"file_path":         path,
		"file_type":         filepath.Ext(path),
		"file_size":         len(raw),
		"chunking_strategy": p.chunker.Name(),
	}

	doc := &domain.Document{
		Path:     path,
		Title:    filename,
		FileType: filepath.Ext(path),
		FileSize: int64(len(raw)),
		Metadata: metadata,
	}

	docID, err := p.store.ReconcileDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("reconcile document: %w", err)
	}

	logger.Debug("Document %s reconciled as %s", path, docID)

	// Split after the document identifier is known so fragments can be
	// stamped with it before reconciliation.
	fragments := p.chunker.Chunk(content, metadata)

	result := &domain.IngestionResult{
		DocumentID:  docID,
		Filename:    filename,
		TotalChunks: len(fragments),
	}

	for i := range fragments {
		frag := &fragments[i]
		frag.DocumentID = docID
		if frag.Type == "" {
			frag.Type = p.chunker.Name()
		}

		// Embedding generation is best-effort: a backend failure must
		// not abort the run, the chunk is stored without a vector.
		if p.embedder != nil {
			embedding, err := p.embedder.Embed(ctx, frag.Content)
			if err != nil {
				logger.Warn("Embedding chunk %d of %s failed: %v", frag.Index, filename, err)
			} else {
				frag.Embedding = embedding
			}
		}

		outcome, err := p.store.ReconcileChunk(ctx, frag)
		if err != nil {
			logger.Warn("Reconciling chunk %d of %s failed: %v", frag.Index, filename, err)
			result.ChunksFailed++
			continue
		}

		switch outcome.Status {
		case domain.ChunkCreated:
			result.ChunksCreated++
		case domain.ChunkUpdated:
			result.ChunksUpdated++
		default:
			result.ChunksFailed++
		}
	}

	logger.Info("Ingested %s: %d created, %d updated, %d failed of %d chunks",
		filename, result.ChunksCreated, result.ChunksUpdated, result.ChunksFailed, result.TotalChunks)

	return result, nil
}
