package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder counts calls and returns a fixed vector.
type fakeEmbedder struct {
	calls  int
	closed bool
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2}, nil
}

func (f *fakeEmbedder) Dimensions() int { return 2 }

func (f *fakeEmbedder) ModelName() string { return "fake-model" }

func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }

func (f *fakeEmbedder) Close() error {
	f.closed = true
	return nil
}

func TestNewRateLimited_DisabledReturnsInner(t *testing.T) {
	inner := &fakeEmbedder{}

	svc := NewRateLimited(inner, 0, 1)
	assert.Equal(t, inner, svc, "non-positive rate should return the inner service")

	svc = NewRateLimited(inner, -1, 1)
	assert.Equal(t, inner, svc)
}

func TestRateLimited_Delegates(t *testing.T) {
	inner := &fakeEmbedder{}
	svc := NewRateLimited(inner, 100, 1)

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
	assert.Equal(t, 1, inner.calls)

	assert.Equal(t, 2, svc.Dimensions())
	assert.Equal(t, "fake-model", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))

	require.NoError(t, svc.Close())
	assert.True(t, inner.closed)
}

func TestRateLimited_WaitRespectsCancellation(t *testing.T) {
	inner := &fakeEmbedder{}
	// Burst 1 at a very slow rate: the second call has to wait.
	svc := NewRateLimited(inner, 0.001, 1)

	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = svc.Embed(ctx, "second")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls, "cancelled wait must not reach the backend")
}
