package llm

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedGenerator wraps a Generator with a shared token bucket sized to
// the provider's quota. When concurrent pipelines exhaust the bucket, calls
// queue on the limiter instead of failing; the caller's context bounds how
// long they are willing to wait.
type RateLimitedGenerator struct {
	inner   Generator
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRateLimitedGenerator builds the decorator. perSec is the sustained
// request rate; burst is the bucket size.
func NewRateLimitedGenerator(inner Generator, perSec float64, burst int, logger *slog.Logger) *RateLimitedGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if perSec <= 0 {
		perSec = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedGenerator{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
		logger:  logger,
	}
}

func (g *RateLimitedGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		g.logger.Debug("llm.ratelimit.waited", "waited_ms", waited.Milliseconds())
	}
	return g.inner.Generate(ctx, req)
}
