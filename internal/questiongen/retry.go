package questiongen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// RetryingGenerator regenerates when a question fails a retryable
// validation. Provider errors are not retried here; the LLM middleware
// already handles transient failures.
type RetryingGenerator struct {
	inner       Generator
	maxAttempts int
	logger      *zap.Logger
}

// NewRetrying wraps g. maxAttempts below 1 is treated as 1.
func NewRetrying(g Generator, maxAttempts int, logger *zap.Logger) *RetryingGenerator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingGenerator{inner: g, maxAttempts: maxAttempts, logger: logger}
}

func (r *RetryingGenerator) Generate(ctx context.Context, input GenerateInput) (*Question, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		q, err := r.inner.Generate(ctx, input)
		if err == nil {
			return q, nil
		}
		lastErr = err

		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Debug("question rejected, regenerating",
			zap.String("validator", verr.Validator),
			zap.String("reason", verr.Message),
			zap.Int("attempt", attempt),
		)
	}
	return nil, fmt.Errorf("no valid question after %d attempts: %w", r.maxAttempts, lastErr)
}
