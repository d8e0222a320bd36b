package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVector_CanonicalForm(t *testing.T) {
	s, err := EncodeVector([]float32{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.Equal(t, "[0.1,0.2,0.3]", s)
}

func TestEncodeVector_RoundTrip(t *testing.T) {
	original := []float32{0.1, -0.456, 3.25, 0, 1e-7}

	s, err := EncodeVector(original)
	require.NoError(t, err)

	parsed, err := ParseVector(s)
	require.NoError(t, err)
	require.Len(t, parsed, len(original))
	for i := range original {
		assert.InDelta(t, original[i], parsed[i], 1e-9)
	}
}

func TestEncodeVector_RejectsNil(t *testing.T) {
	_, err := EncodeVector(nil)
	assert.ErrorIs(t, err, ErrInvalidEmbedding)
}

func TestEncodeVector_RejectsNonFinite(t *testing.T) {
	cases := map[string][]float32{
		"nan":     {0.1, float32(math.NaN()), 0.3},
		"inf":     {float32(math.Inf(1))},
		"neg-inf": {0.5, float32(math.Inf(-1))},
	}

	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := EncodeVector(v)
			assert.ErrorIs(t, err, ErrInvalidEmbedding)
		})
	}
}

func TestParseVector_Malformed(t *testing.T) {
	cases := []string{"", "0.1,0.2", "[0.1,0.2", "0.1,0.2]", "[0.1,x,0.3]"}
	for _, s := range cases {
		_, err := ParseVector(s)
		assert.ErrorIs(t, err, ErrInvalidEmbedding, "input %q", s)
	}
}

func TestParseVector_Empty(t *testing.T) {
	v, err := ParseVector("[]")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
