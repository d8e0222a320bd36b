// Package embedding provides decorators shared by the embedding
// service adapters.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/praxis-labs/knowctl/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.EmbeddingService = (*RateLimited)(nil)

// RateLimited wraps an embedding service with a request rate limit.
// Ingestion embeds one chunk per call, so an unbounded run against a
// hosted backend can exhaust its quota mid-document; the limiter
// smooths calls instead of failing them.
type RateLimited struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimited wraps inner, allowing rps requests per second with the
// given burst. A non-positive rps disables limiting and returns inner
// unchanged.
func NewRateLimited(inner driven.EmbeddingService, rps float64, burst int) driven.EmbeddingService {
	if rps <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}

	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for limiter capacity, then delegates to the wrapped
// service. Waiting respects context cancellation.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.inner.Embed(ctx, text)
}

// Dimensions returns the wrapped service's embedding vector size.
func (r *RateLimited) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates to the wrapped service without consuming limiter
// capacity.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases the wrapped service's resources.
func (r *RateLimited) Close() error {
	return r.inner.Close()
}
