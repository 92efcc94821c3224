package extract

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/llm"
)

// RetryPolicy bounds retries around external model calls. It is a parameter,
// not a constant, so tests can shrink the schedule to nothing.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries for transient failures
	// (rate limit, timeout). Minimum 1.
	MaxAttempts int
	// InitialBackoff seeds the exponential backoff schedule.
	InitialBackoff time.Duration
}

// DefaultRetryPolicy matches the provider quotas the service is tuned for.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Second}
}

func (p RetryPolicy) normalize() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = def.InitialBackoff
	}
	return p
}

// generateWithRetry calls the model, retrying transient failures with
// exponential backoff. Auth/quota failures and malformed-response errors are
// never retried here; the latter get a single corrective reattempt one level
// up.
func generateWithRetry(ctx context.Context, gen llm.Generator, req llm.GenerateRequest, p RetryPolicy) (string, error) {
	p = p.normalize()
	backoff := retry.WithMaxRetries(uint64(p.MaxAttempts-1), retry.NewExponential(p.InitialBackoff))

	var out string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		s, err := gen.Generate(ctx, req)
		if err != nil {
			if errors.Is(err, common.ErrExtractionAuth) {
				return err
			}
			if common.Retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = s
		return nil
	})
	return out, err
}
