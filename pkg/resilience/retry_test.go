package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/Swiddis/opensearch-utils/pkg/errors"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   5,
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
		RetryIf:      apperrors.IsRateLimited,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test", fastConfig(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryRecoversRateLimit(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test", fastConfig(), func() error {
		calls++
		if calls <= 2 {
			return apperrors.FromStatus(429, "")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryDoesNotRetryFatalErrors(t *testing.T) {
	calls := 0
	fatal := apperrors.FromStatus(500, "boom")
	err := Retry(context.Background(), "test", fastConfig(), func() error {
		calls++
		return fatal
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, apperrors.ErrBulkRejected) {
		t.Errorf("error %v, want the original fatal error", err)
	}
	if errors.Is(err, apperrors.ErrRetryExhausted) {
		t.Error("fatal error must not be reported as retry exhaustion")
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 2
	calls := 0
	err := Retry(context.Background(), "test", cfg, func() error {
		calls++
		return apperrors.FromStatus(429, "")
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
	if !errors.Is(err, apperrors.ErrRetryExhausted) {
		t.Errorf("error %v, want ErrRetryExhausted", err)
	}
	if !apperrors.IsRateLimited(err) {
		t.Errorf("error %v should still expose the underlying rate limit", err)
	}
}

func TestRetryAbortsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.InitialDelay = time.Minute
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, "test", cfg, func() error {
			calls++
			return apperrors.FromStatus(429, "")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Retry did not abort after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
