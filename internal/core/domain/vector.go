package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Embedding vectors cross the storage boundary as bracketed decimal CSV
// text, e.g. "[0.1,0.2,0.3]". The encoding must round-trip losslessly to
// the same float sequence on read-back.

// EncodeVector serialises an embedding to its canonical text form.
// A nil vector or a non-finite component is a precondition violation and
// returns ErrInvalidEmbedding; nothing partial is produced.
func EncodeVector(v []float32) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: nil vector", ErrInvalidEmbedding)
	}

	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		f64 := float64(f)
		if math.IsNaN(f64) || math.IsInf(f64, 0) {
			return "", fmt.Errorf("%w: non-finite component at index %d", ErrInvalidEmbedding, i)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(f64, 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String(), nil
}

// ParseVector decodes the canonical text form back into a float vector.
func ParseVector(s string) ([]float32, error) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: missing brackets in %q", ErrInvalidEmbedding, s)
	}

	body := s[1 : len(s)-1]
	if body == "" {
		return []float32{}, nil
	}

	parts := strings.Split(body, ",")
	v := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", ErrInvalidEmbedding, i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// CosineSimilarity returns the cosine similarity of two vectors, in the
// range [-1, 1]. Mismatched dimensions or a zero vector yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
