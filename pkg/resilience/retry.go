package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/Swiddis/opensearch-utils/pkg/errors"
)

// RetryConfig controls the bounded exponential-backoff retry loop.
type RetryConfig struct {
	// MaxRetries is the number of re-attempts after the initial one.
	MaxRetries   int
	InitialDelay time.Duration
	Multiplier   float64
	// RetryIf decides whether an error is recoverable. A nil RetryIf
	// retries nothing.
	RetryIf func(error) bool
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   5,
		InitialDelay: 500 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// Retry runs fn, re-attempting up to cfg.MaxRetries times when RetryIf
// accepts the error. The delay starts at InitialDelay and is multiplied by
// Multiplier after each attempt. Non-retryable errors are returned as-is;
// exhausting the budget wraps the last error in ErrRetryExhausted.
func Retry(ctx context.Context, name string, cfg RetryConfig, fn func() error) error {
	defaults := defaultRetryConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = defaults.InitialDelay
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = defaults.Multiplier
	}
	logger := slog.Default().With("component", "retry", "operation", name)
	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 0 {
				logger.Info("succeeded after retry", "attempts", attempt+1)
			}
			return nil
		}
		if cfg.RetryIf == nil || !cfg.RetryIf(lastErr) {
			return lastErr
		}
		if attempt >= cfg.MaxRetries {
			return fmt.Errorf("%w: %s failed after %d attempts: %w",
				apperrors.ErrRetryExhausted, name, attempt+1, lastErr)
		}
		logger.Warn("operation failed, retrying",
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"error", lastErr,
			"next_delay", delay,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted during backoff: %w", ctx.Err())
		}
		delay = time.Duration(float64(delay) * cfg.Multiplier)
	}
}
