package driven

import "github.com/praxis-labs/knowctl/internal/core/domain"

// ChunkingStrategy splits raw text into an ordered sequence of fragments.
// Implementations are swappable; the core holds no knowledge of a
// specific splitting algorithm.
type ChunkingStrategy interface {
	// Chunk splits content into fragments with contiguous 0-based
	// indexes assigned in emission order. Fragments carry content,
	// positions and per-chunk metadata copied through from the caller,
	// but no document ID.
	Chunk(content string, metadata map[string]any) []domain.Chunk

	// Name identifies the strategy. Stored on each chunk as its type.
	Name() string
}
