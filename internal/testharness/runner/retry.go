package runner

import (
	"context"
	"errors"
	"time"
)

// RetryConfig controls retryWithBackoff.
type RetryConfig struct {
	MaxAttempts int           // required, must be > 0
	BaseDelay   time.Duration // initial backoff delay
	MaxDelay    time.Duration // cap on delay (defaults to 10s if zero)
}

// retryWithBackoff calls fn up to cfg.MaxAttempts times with exponential
// backoff. It stops early when ctx is done or fn returns a non-retryable
// ClassifiedError.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		return errNoAttempts
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 10 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var ce *ClassifiedError
		if errors.As(lastErr, &ce) && ce.Category != ErrCatInfrastructure {
			return lastErr
		}

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := min(cfg.BaseDelay<<uint(attempt), cfg.MaxDelay)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return lastErr
}
