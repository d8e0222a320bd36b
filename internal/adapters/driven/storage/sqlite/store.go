package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/praxis-labs/knowctl/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/praxis-labs/knowctl/internal/core/domain"
	"github.com/praxis-labs/knowctl/internal/core/ports/driven"
	"github.com/praxis-labs/knowctl/internal/logger"
	"github.com/praxis-labs/knowctl/internal/sqlscript"
)

// similarityThreshold is the minimum cosine similarity for a chunk to
// appear in similarity search results.
const similarityThreshold = 0.7

// Ensure Store implements both the storage and vector capability ports.
var (
	_ driven.DocumentStore  = (*Store)(nil)
	_ driven.VectorSearcher = (*Store)(nil)
)

// Store is the SQLite-backed document storage gateway.
type Store struct {
	db     *sql.DB
	path   string
	policy driven.ReconcilePolicy
}

// Option configures the store.
type Option func(*Store)

// WithPolicy sets the document reconciliation policy. The policy is
// fixed for the lifetime of the store; callers must not construct
// multiple stores with different policies over the same database.
func WithPolicy(p driven.ReconcilePolicy) Option {
	return func(s *Store) {
		if p == driven.PolicyReuse || p == driven.PolicyDeleteRecreate {
			s.policy = p
		}
	}
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.knowctl/data/knowledge.db.
// The default reconciliation policy is delete-recreate.
func NewStore(dataDir string, opts ...Option) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".knowctl", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "knowledge.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:     db,
		path:   dbPath,
		policy: driven.PolicyDeleteRecreate,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Policy returns the configured reconciliation policy.
func (s *Store) Policy() driven.ReconcilePolicy {
	return s.policy
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		// Migration files hold several statements; the driver takes
		// one per call.
		for _, stmt := range sqlscript.Split(string(content)) {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("executing migration %s: %w", name, err)
			}
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Reconciliation ====================

// ReconcileDocument maps an incoming document onto persisted state and
// returns the document identifier. Behaviour for a known path depends on
// the configured policy; for an unknown path a fresh row is inserted.
func (s *Store) ReconcileDocument(ctx context.Context, doc *domain.Document) (string, error) {
	existing, err := s.GetDocumentByPath(ctx, doc.Path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("looking up document by path: %w", err)
	}

	if existing != nil {
		if s.policy == driven.PolicyReuse {
			return existing.ID, nil
		}

		// Delete-recreate: chunks first to respect the foreign key,
		// then the document row itself.
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM chunks WHERE document_id = ?", existing.ID); err != nil {
			return "", fmt.Errorf("deleting stale chunks: %w", err)
		}
		if err := s.DeleteDocument(ctx, existing.ID); err != nil {
			return "", fmt.Errorf("deleting stale document: %w", err)
		}
	}

	return s.insertDocument(ctx, doc)
}

// insertDocument inserts a fresh document row and returns its new ID.
func (s *Store) insertDocument(ctx context.Context, doc *domain.Document) (string, error) {
	metadataJSON, err := json.Marshal(normalizedMetadata(doc.Metadata))
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}

	id := uuid.New().String()
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, file_path, title, file_type, file_size, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, doc.Path, doc.Title, doc.FileType, doc.FileSize, string(metadataJSON), createdAt)
	if err != nil {
		return "", fmt.Errorf("inserting document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("checking document insert: %w", err)
	}
	if affected == 0 {
		return "", domain.ErrDocumentInsert
	}

	return id, nil
}

// ==================== Chunk Reconciliation ====================

// ReconcileChunk writes one chunk keyed by (DocumentID, Index).
// The embedding is serialised up front so a malformed vector never
// reaches the database.
func (s *Store) ReconcileChunk(ctx context.Context, chunk *domain.Chunk) (domain.ChunkOutcome, error) {
	failed := domain.ChunkOutcome{Status: domain.ChunkFailed}

	var embedding sql.NullString
	if chunk.Embedding != nil {
		text, err := domain.EncodeVector(chunk.Embedding)
		if err != nil {
			return failed, err
		}
		embedding = sql.NullString{String: text, Valid: true}
	}

	metadataJSON, err := json.Marshal(normalizedMetadata(chunk.Metadata))
	if err != nil {
		return failed, fmt.Errorf("marshalling chunk metadata: %w", err)
	}

	var existingID string
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? AND chunk_index = ?",
		chunk.DocumentID, chunk.Index).Scan(&existingID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.insertChunk(ctx, chunk, embedding, string(metadataJSON))
	case err != nil:
		return failed, fmt.Errorf("%w: looking up chunk: %v", domain.ErrChunkStore, err)
	default:
		return s.updateChunk(ctx, existingID, chunk, embedding, string(metadataJSON))
	}
}

func (s *Store) insertChunk(
	ctx context.Context,
	chunk *domain.Chunk,
	embedding sql.NullString,
	metadataJSON string,
) (domain.ChunkOutcome, error) {
	failed := domain.ChunkOutcome{Status: domain.ChunkFailed}
	id := uuid.New().String()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO chunks (id, document_id, chunk_index, content, start_position, end_position, chunk_type, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, chunk.DocumentID, chunk.Index, chunk.Content,
		nullInt(chunk.StartPos), nullInt(chunk.EndPos), chunk.Type, metadataJSON, embedding)
	if err != nil {
		return failed, fmt.Errorf("%w: inserting chunk %d: %v", domain.ErrChunkStore, chunk.Index, err)
	}

	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return failed, fmt.Errorf("%w: chunk %d insert returned no row", domain.ErrChunkStore, chunk.Index)
	}

	return domain.ChunkOutcome{Status: domain.ChunkCreated, ChunkID: id}, nil
}

func (s *Store) updateChunk(
	ctx context.Context,
	id string,
	chunk *domain.Chunk,
	embedding sql.NullString,
	metadataJSON string,
) (domain.ChunkOutcome, error) {
	failed := domain.ChunkOutcome{Status: domain.ChunkFailed}

	res, err := s.db.ExecContext(ctx, `
		UPDATE chunks
		SET content = ?, start_position = ?, end_position = ?, chunk_type = ?, metadata = ?, embedding = ?
		WHERE id = ?
	`, chunk.Content, nullInt(chunk.StartPos), nullInt(chunk.EndPos),
		chunk.Type, metadataJSON, embedding, id)
	if err != nil {
		return failed, fmt.Errorf("%w: updating chunk %d: %v", domain.ErrChunkStore, chunk.Index, err)
	}

	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return failed, fmt.Errorf("%w: chunk %d update returned no row", domain.ErrChunkStore, chunk.Index)
	}

	return domain.ChunkOutcome{Status: domain.ChunkUpdated, ChunkID: id}, nil
}

// ==================== Reads ====================

// GetDocumentByPath retrieves a document by its file path.
func (s *Store) GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_path, title, file_type, file_size, metadata, created_at
		FROM documents WHERE file_path = ?
	`, path)

	var doc domain.Document
	var metadataJSON string
	var createdAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.Path, &doc.Title, &doc.FileType,
		&doc.FileSize, &metadataJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}

	return &doc, nil
}

// GetChunks retrieves all chunks for a document, ordered by index.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, chunk_index, content, start_position, end_position, chunk_type, metadata, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// DeleteDocument removes a document; chunks cascade via the foreign key.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// CountDocuments returns the full-table document count.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// CountChunks returns the full-table chunk count.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// ==================== Search ====================

// TextSearch performs a lexical match against chunk content. Failures
// are logged and recovered to an empty result set; this read path never
// raises past the gateway.
func (s *Store) TextSearch(ctx context.Context, query string, limit int) []domain.SearchResult {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.chunk_index, c.content, c.start_position, c.end_position,
		       c.chunk_type, c.metadata, c.embedding, d.file_path, d.title
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.content LIKE ?
		LIMIT ?
	`, "%"+query+"%", limit)
	if err != nil {
		logger.Warn("Text search failed: %v", err)
		return []domain.SearchResult{}
	}
	defer rows.Close()

	var results []domain.SearchResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		res, err := scanSearchResult(rows)
		if err != nil {
			logger.Warn("Text search scan failed: %v", err)
			return []domain.SearchResult{}
		}
		results = append(results, *res)
	}

	if err := rows.Err(); err != nil {
		logger.Warn("Text search iteration failed: %v", err)
		return []domain.SearchResult{}
	}

	if results == nil {
		results = []domain.SearchResult{}
	}
	return results
}

// SimilaritySearch scores every stored embedding against the query
// vector and returns up to limit chunks above the similarity threshold,
// ordered by similarity descending. Failures are recovered to an empty
// result set.
func (s *Store) SimilaritySearch(ctx context.Context, embedding []float32, limit int) []domain.SearchResult {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.chunk_index, c.content, c.start_position, c.end_position,
		       c.chunk_type, c.metadata, c.embedding, d.file_path, d.title
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.embedding IS NOT NULL
	`)
	if err != nil {
		logger.Warn("Similarity search failed: %v", err)
		return []domain.SearchResult{}
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		res, err := scanSearchResult(rows)
		if err != nil {
			logger.Warn("Similarity search scan failed: %v", err)
			return []domain.SearchResult{}
		}

		score := domain.CosineSimilarity(embedding, res.Chunk.Embedding)
		if score < similarityThreshold {
			continue
		}
		res.Score = score
		results = append(results, *res)
	}

	if err := rows.Err(); err != nil {
		logger.Warn("Similarity search iteration failed: %v", err)
		return []domain.SearchResult{}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	if results == nil {
		results = []domain.SearchResult{}
	}
	return results
}

// HealthCheck is a cheap connectivity probe. Never raises.
func (s *Store) HealthCheck(ctx context.Context) bool {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Warn("Health check failed: %v", err)
		return false
	}

	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		logger.Warn("Health check query failed: %v", err)
		return false
	}
	return true
}

// ==================== Helper Functions ====================

// normalizedMetadata guarantees a non-nil map so metadata always
// serialises to a JSON object, never "null".
func normalizedMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// nullInt converts an optional position to its SQL representation.
func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// scanChunkColumns is the shared column scan for chunk rows, with or
// without joined document columns.
func scanChunkColumns(scan func(dest ...any) error, chunk *domain.Chunk, extra ...any) error {
	var start, end sql.NullInt64
	var metadataJSON string
	var embeddingText sql.NullString

	dest := []any{&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Content,
		&start, &end, &chunk.Type, &metadataJSON, &embeddingText}
	dest = append(dest, extra...)

	if err := scan(dest...); err != nil {
		return fmt.Errorf("scanning chunk: %w", err)
	}

	if start.Valid {
		v := int(start.Int64)
		chunk.StartPos = &v
	}
	if end.Valid {
		v := int(end.Int64)
		chunk.EndPos = &v
	}

	if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
		return fmt.Errorf("unmarshaling chunk metadata: %w", err)
	}

	if embeddingText.Valid {
		v, err := domain.ParseVector(embeddingText.String)
		if err != nil {
			return fmt.Errorf("decoding stored embedding: %w", err)
		}
		chunk.Embedding = v
	}

	return nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	if err := scanChunkColumns(rows.Scan, &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}

// scanSearchResult scans a chunk joined with its document's path and title.
func scanSearchResult(rows *sql.Rows) (*domain.SearchResult, error) {
	var res domain.SearchResult
	if err := scanChunkColumns(rows.Scan, &res.Chunk, &res.DocumentPath, &res.DocumentTitle); err != nil {
		return nil, err
	}
	return &res, nil
}
