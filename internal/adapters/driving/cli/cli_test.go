package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-labs/knowctl/internal/core/domain"
)

// mockIngestor returns a fixed run summary.
type mockIngestor struct {
	lastPath string
	err      error
}

func (m *mockIngestor) Ingest(_ context.Context, path string) (*domain.IngestionResult, error) {
	m.lastPath = path
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestionResult{
		DocumentID:    "doc-1",
		Filename:      filepath.Base(path),
		ChunksCreated: 3,
		TotalChunks:   3,
	}, nil
}

// mockSearcher returns fixed results.
type mockSearcher struct {
	textResults    []domain.SearchResult
	similarResults []domain.SearchResult
	lastQuery      string
	similarCalled  bool
}

func (m *mockSearcher) Text(_ context.Context, query string, _ int) []domain.SearchResult {
	m.lastQuery = query
	return m.textResults
}

func (m *mockSearcher) Similar(_ context.Context, query string, _ int) []domain.SearchResult {
	m.lastQuery = query
	m.similarCalled = true
	return m.similarResults
}

// mockStore provides counts and health for status/health commands.
type mockStore struct {
	docs    int
	chunks  int
	healthy bool
}

func (m *mockStore) ReconcileDocument(_ context.Context, _ *domain.Document) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockStore) ReconcileChunk(_ context.Context, _ *domain.Chunk) (domain.ChunkOutcome, error) {
	return domain.ChunkOutcome{}, errors.New("not implemented")
}

func (m *mockStore) GetDocumentByPath(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockStore) DeleteDocument(_ context.Context, _ string) error { return nil }

func (m *mockStore) CountDocuments(_ context.Context) (int, error) { return m.docs, nil }

func (m *mockStore) CountChunks(_ context.Context) (int, error) { return m.chunks, nil }

func (m *mockStore) TextSearch(_ context.Context, _ string, _ int) []domain.SearchResult {
	return []domain.SearchResult{}
}

func (m *mockStore) HealthCheck(_ context.Context) bool { return m.healthy }

// setupTestServices injects mocks and returns a cleanup restoring the
// previous wiring.
func setupTestServices() (*mockIngestor, *mockSearcher, func()) {
	oldIngest := ingestService
	oldSearch := searchService
	oldStore := docStore
	oldEmbed := embedService

	ingestor := &mockIngestor{}
	searcher := &mockSearcher{
		textResults: []domain.SearchResult{
			{
				Chunk:         domain.Chunk{DocumentID: "doc-1", Content: "a matching chunk"},
				DocumentPath:  "/docs/a.txt",
				DocumentTitle: "a.txt",
				Score:         1,
			},
		},
	}

	ingestService = ingestor
	searchService = searcher
	docStore = &mockStore{docs: 2, chunks: 9, healthy: true}
	embedService = nil

	return ingestor, searcher, func() {
		ingestService = oldIngest
		searchService = oldSearch
		docStore = oldStore
		embedService = oldEmbed
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestIngestCmd_Success(t *testing.T) {
	ingestor, _, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello."), 0600))

	out, err := execute(t, "ingest", path)
	require.NoError(t, err)
	assert.Equal(t, path, ingestor.lastPath)
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "3 created")
}

func TestIngestCmd_JSONOutput(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	defer func() { ingestJSON = false }()

	out, err := execute(t, "ingest", "--json", "/docs/notes.txt")
	require.NoError(t, err)
	assert.Contains(t, out, `"document_id"`)
	assert.Contains(t, out, `"chunks_created"`)
}

func TestIngestCmd_ServiceError(t *testing.T) {
	ingestor, _, cleanup := setupTestServices()
	defer cleanup()
	ingestor.err = domain.ErrFileNotFound

	_, err := execute(t, "ingest", "/missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := execute(t, "ingest", "/docs/a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion service not configured")
}

func TestIngestCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_Table(t *testing.T) {
	_, searcher, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "matching")
	require.NoError(t, err)
	assert.Equal(t, "matching", searcher.lastQuery)
	assert.False(t, searcher.similarCalled)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "/docs/a.txt")
}

func TestSearchCmd_SimilarFlag(t *testing.T) {
	_, searcher, cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchSimilar = false }()

	out, err := execute(t, "search", "--similar", "matching")
	require.NoError(t, err)
	assert.True(t, searcher.similarCalled)
	assert.Contains(t, out, "No results found")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchJSON = false }()

	out, err := execute(t, "search", "--json", "matching")
	require.NoError(t, err)
	assert.Contains(t, out, `"document_path"`)
	assert.Contains(t, out, `"score"`)
}

func TestSearchCmd_NotConfigured(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	searchService = nil

	_, err := execute(t, "search", "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestStatusCmd(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents: 2")
	assert.Contains(t, out, "Chunks:    9")
	assert.Contains(t, out, "Embedding: disabled")
}

func TestHealthCmd_Healthy(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "storage:   ok")
	assert.Contains(t, out, "embedding: disabled")
}

func TestHealthCmd_Unhealthy(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	docStore = &mockStore{healthy: false}

	_, err := execute(t, "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "knowctl version")
}
