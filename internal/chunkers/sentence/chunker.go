// Package sentence provides a sentence-window chunking strategy.
package sentence

import (
	"regexp"
	"strings"

	"github.com/praxis-labs/knowctl/internal/core/domain"
)

// StrategyName tags chunks produced by this splitter.
const StrategyName = "sentence_window"

// DefaultWindow is the default number of sentences per chunk.
const DefaultWindow = 5

// DefaultOverlap is the default number of sentences shared between
// consecutive chunks.
const DefaultOverlap = 1

// sentencePattern matches one sentence including its terminator.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// Splitter splits text into overlapping sentence windows.
// It implements the ChunkingStrategy interface.
type Splitter struct {
	window  int
	overlap int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithWindow sets the number of sentences per chunk.
func WithWindow(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithOverlap sets the number of overlapping sentences.
func WithOverlap(n int) Option {
	return func(s *Splitter) {
		if n >= 0 {
			s.overlap = n
		}
	}
}

// New creates a sentence splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		window:  DefaultWindow,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure forward progress
	if s.overlap >= s.window {
		s.overlap = s.window - 1
	}

	return s
}

// Name returns the strategy name.
func (s *Splitter) Name() string {
	return StrategyName
}

// Chunk splits content into overlapping sentence windows. Fragments are
// exact substrings of content; positions are located as the first
// occurrence of the fragment text, so a fragment whose text repeats
// earlier in the source reports the earlier occurrence.
func (s *Splitter) Chunk(content string, metadata map[string]any) []domain.Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	spans := sentencePattern.FindAllStringIndex(content, -1)
	if len(spans) == 0 {
		spans = [][]int{{0, len(content)}}
	}

	var chunks []domain.Chunk
	index := 0
	step := s.window - s.overlap

	for i := 0; i < len(spans); i += step {
		end := i + s.window
		if end > len(spans) {
			end = len(spans)
		}

		text := strings.TrimSpace(content[spans[i][0]:spans[end-1][1]])
		if text == "" {
			if end == len(spans) {
				break
			}
			continue
		}

		chunk := domain.Chunk{
			Index:    index,
			Content:  text,
			Type:     StrategyName,
			Metadata: chunkMetadata(metadata, index, len(text)),
		}

		if pos := strings.Index(content, text); pos >= 0 {
			start := pos
			stop := pos + len(text)
			chunk.StartPos = &start
			chunk.EndPos = &stop
		}

		chunks = append(chunks, chunk)
		index++

		if end == len(spans) {
			break
		}
	}

	return chunks
}

// chunkMetadata builds per-chunk metadata, copying through the parent
// fields relevant to chunks.
func chunkMetadata(parent map[string]any, index, size int) map[string]any {
	m := map[string]any{
		"chunk_index": index,
		"chunk_type":  StrategyName,
		"chunk_size":  size,
	}

	for _, key := range []string{"filename", "file_path", "file_type", "chunking_strategy"} {
		if v, ok := parent[key]; ok {
			m[key] = v
		}
	}

	return m
}
