package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-labs/knowctl/internal/core/domain"
)

// stubStore records reconciliation calls and can be told to fail.
type stubStore struct {
	docID        string
	docErr       error
	chunkErr     error
	failAtIndex  int
	updateAll    bool
	reconciled   []domain.Chunk
	docCalls     int
	chunkResults []domain.ChunkOutcome
}

func newStubStore() *stubStore {
	return &stubStore{docID: "doc-1", failAtIndex: -1}
}

func (s *stubStore) ReconcileDocument(_ context.Context, _ *domain.Document) (string, error) {
	s.docCalls++
	if s.docErr != nil {
		return "", s.docErr
	}
	return s.docID, nil
}

func (s *stubStore) ReconcileChunk(_ context.Context, chunk *domain.Chunk) (domain.ChunkOutcome, error) {
	if s.chunkErr != nil && chunk.Index == s.failAtIndex {
		return domain.ChunkOutcome{Status: domain.ChunkFailed}, s.chunkErr
	}

	s.reconciled = append(s.reconciled, *chunk)

	status := domain.ChunkCreated
	if s.updateAll {
		status = domain.ChunkUpdated
	}
	outcome := domain.ChunkOutcome{Status: status, ChunkID: fmt.Sprintf("chunk-%d", chunk.Index)}
	s.chunkResults = append(s.chunkResults, outcome)
	return outcome, nil
}

func (s *stubStore) GetDocumentByPath(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (s *stubStore) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (s *stubStore) DeleteDocument(_ context.Context, _ string) error { return nil }

func (s *stubStore) CountDocuments(_ context.Context) (int, error) { return s.docCalls, nil }

func (s *stubStore) CountChunks(_ context.Context) (int, error) { return len(s.reconciled), nil }

func (s *stubStore) TextSearch(_ context.Context, _ string, _ int) []domain.SearchResult {
	return []domain.SearchResult{}
}

func (s *stubStore) HealthCheck(_ context.Context) bool { return true }

// stubChunker splits on blank lines.
type stubChunker struct{}

func (stubChunker) Name() string { return "stub" }

func (stubChunker) Chunk(content string, _ map[string]any) []domain.Chunk {
	parts := strings.Split(content, "\n\n")
	chunks := make([]domain.Chunk, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{Index: i, Content: p})
	}
	return chunks
}

// stubEmbedder fails for content containing the poison marker.
type stubEmbedder struct {
	poison string
	calls  int
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.poison != "" && strings.Contains(text, e.poison) {
		return nil, errors.New("backend unavailable")
	}
	return []float32{0.5, 0.5}, nil
}

func (e *stubEmbedder) Dimensions() int { return 2 }

func (e *stubEmbedder) ModelName() string { return "stub-model" }

func (e *stubEmbedder) Ping(_ context.Context) error { return nil }

func (e *stubEmbedder) Close() error { return nil }

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestIngest_MissingFile(t *testing.T) {
	store := newStubStore()
	pipeline := NewIngestionPipeline(store, stubChunker{}, nil)

	_, err := pipeline.Ingest(context.Background(), "/no/such/file.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	assert.Zero(t, store.docCalls, "a missing file must not touch the store")
}

func TestIngest_DirectoryRejected(t *testing.T) {
	store := newStubStore()
	pipeline := NewIngestionPipeline(store, stubChunker{}, nil)

	_, err := pipeline.Ingest(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestIngest_InvalidUTF8(t *testing.T) {
	store := newStubStore()
	pipeline := NewIngestionPipeline(store, stubChunker{}, nil)

	path := filepath.Join(t.TempDir(), "binary.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0600))

	_, err := pipeline.Ingest(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFileRead)
	assert.Zero(t, store.docCalls)
}

func TestIngest_Success(t *testing.T) {
	store := newStubStore()
	embedder := &stubEmbedder{}
	pipeline := NewIngestionPipeline(store, stubChunker{}, embedder)

	path := writeTestFile(t, "notes.txt", "First part.\n\nSecond part.\n\nThird part.")

	result, err := pipeline.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Equal(t, "notes.txt", result.Filename)
	assert.Equal(t, 3, result.TotalChunks)
	assert.Equal(t, 3, result.ChunksCreated)
	assert.Zero(t, result.ChunksUpdated)
	assert.Zero(t, result.ChunksFailed)

	require.Len(t, store.reconciled, 3)
	for _, c := range store.reconciled {
		assert.Equal(t, "doc-1", c.DocumentID, "chunks must carry the reconciled document id")
		assert.Equal(t, "stub", c.Type, "untyped chunks take the strategy name")
		assert.Equal(t, []float32{0.5, 0.5}, c.Embedding)
	}
	assert.Equal(t, 3, embedder.calls)
}

func TestIngest_WithoutEmbedder(t *testing.T) {
	store := newStubStore()
	pipeline := NewIngestionPipeline(store, stubChunker{}, nil)

	path := writeTestFile(t, "notes.txt", "Only part.")

	result, err := pipeline.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksCreated)
	require.Len(t, store.reconciled, 1)
	assert.Nil(t, store.reconciled[0].Embedding)
}

func TestIngest_EmbeddingFailureIsNotFatal(t *testing.T) {
	store := newStubStore()
	embedder := &stubEmbedder{poison: "Second"}
	pipeline := NewIngestionPipeline(store, stubChunker{}, embedder)

	path := writeTestFile(t, "notes.txt", "First.\n\nSecond.\n\nThird.\n\nFourth.\n\nFifth.")

	result, err := pipeline.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalChunks)
	assert.Equal(t, 5, result.ChunksCreated, "the unembedded chunk is still stored")
	assert.Zero(t, result.ChunksFailed)

	require.Len(t, store.reconciled, 5)
	var withVector, withoutVector int
	for _, c := range store.reconciled {
		if c.Embedding == nil {
			withoutVector++
		} else {
			withVector++
		}
	}
	assert.Equal(t, 4, withVector)
	assert.Equal(t, 1, withoutVector)
}

func TestIngest_ChunkStoreFailureContinues(t *testing.T) {
	store := newStubStore()
	store.chunkErr = errors.New("disk full")
	store.failAtIndex = 0
	pipeline := NewIngestionPipeline(store, stubChunker{}, nil)

	path := writeTestFile(t, "notes.txt", "Bad one.\n\nGood one.")

	result, err := pipeline.Ingest(context.Background(), path)
	require.NoError(t, err, "a single failed chunk must not abort the run")

	assert.Equal(t, 2, result.TotalChunks)
	assert.Equal(t, 1, result.ChunksCreated)
	assert.Equal(t, 1, result.ChunksFailed)
}

func TestIngest_DocumentReconcileFailureIsFatal(t *testing.T) {
	store := newStubStore()
	store.docErr = errors.New("database locked")
	pipeline := NewIngestionPipeline(store, stubChunker{}, nil)

	path := writeTestFile(t, "notes.txt", "Content.")

	_, err := pipeline.Ingest(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconcile document")
	assert.Empty(t, store.reconciled, "no chunks may be written without a document")
}

func TestIngest_UpdatedChunksCounted(t *testing.T) {
	store := newStubStore()
	store.updateAll = true
	pipeline := NewIngestionPipeline(store, stubChunker{}, nil)

	path := writeTestFile(t, "notes.txt", "One.\n\nTwo.")

	result, err := pipeline.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ChunksUpdated)
	assert.Zero(t, result.ChunksCreated)
}
