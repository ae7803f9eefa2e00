package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Swiddis/opensearch-utils/internal/bulk"
	"github.com/Swiddis/opensearch-utils/internal/progress"
	apperrors "github.com/Swiddis/opensearch-utils/pkg/errors"
	"github.com/Swiddis/opensearch-utils/pkg/metrics"
	"github.com/Swiddis/opensearch-utils/pkg/resilience"
)

const (
	// maxRetries bounds re-sends after HTTP 429. Other failures are fatal.
	maxRetries = 5
	// initialBackoff is the first retry delay; it doubles on each retry.
	initialBackoff = 500 * time.Millisecond
	// errorBodyLimit caps how much of an error response is kept for the
	// failure message.
	errorBodyLimit = 2048
)

// uploader sends built bulk payloads to the _bulk endpoint. A shared
// semaphore caps simultaneous sends; a permit is held for the whole retry
// loop, so a retry never re-queues behind other tasks.
type uploader struct {
	client   *http.Client
	bulkURL  string
	index    string
	username string
	password string
	live     bool
	sem      *semaphore.Weighted
	progress *progress.Aggregator
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func newUploader(client *http.Client, endpoint, index, username, password string, live bool, concurrent int64, prog *progress.Aggregator, m *metrics.Metrics) *uploader {
	return &uploader{
		client:   client,
		bulkURL:  endpoint + "/_bulk",
		index:    index,
		username: username,
		password: password,
		live:     live,
		sem:      semaphore.NewWeighted(concurrent),
		progress: prog,
		metrics:  m,
		logger:   slog.Default().With("component", "uploader"),
	}
}

// upload indexes one batch of records. It blocks for a concurrency permit,
// builds the payload once, and resends the identical payload on rate
// limiting. Exactly one terminal outcome is produced per batch: a
// BatchCompleted event on success or a returned error.
func (u *uploader) upload(ctx context.Context, records []string) error {
	if err := u.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquiring send permit: %w", err)
	}
	defer u.sem.Release(1)

	u.progress.Emit(progress.BatchStarted)
	body := bulk.Body(records, u.index, u.live, time.Now())

	attempt := 0
	err := resilience.Retry(ctx, "bulk-index", resilience.RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: initialBackoff,
		Multiplier:   2.0,
		RetryIf:      apperrors.IsRateLimited,
	}, func() error {
		attempt++
		if attempt > 1 {
			u.metrics.RetriesTotal.Inc()
		}
		return u.send(ctx, body)
	})
	if err != nil {
		return fmt.Errorf("uploading batch of %d documents: %w", len(records), err)
	}

	u.progress.Emit(progress.BatchCompleted)
	u.metrics.BatchesCompletedTotal.Inc()
	u.logger.Debug("batch indexed", "docs", len(records), "bytes", len(body))
	return nil
}

// send performs one POST of the payload and classifies the response. 429
// maps to ErrRateLimited so the retry layer can recover it; any other
// non-2xx status is fatal for the batch.
func (u *uploader) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.bulkURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building bulk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	if u.username != "" {
		req.SetBasicAuth(u.username, u.password)
	}

	u.metrics.RequestsInFlight.Inc()
	start := time.Now()
	resp, err := u.client.Do(req)
	u.metrics.RequestsInFlight.Dec()
	if err != nil {
		return fmt.Errorf("sending bulk request: %w", err)
	}
	defer resp.Body.Close()

	u.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	u.metrics.BytesSentTotal.Add(float64(len(body)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	return apperrors.FromStatus(resp.StatusCode, string(bytes.TrimSpace(detail)))
}
