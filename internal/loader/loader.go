// Package loader drives the bulk ingestion pipeline: it batches source lines,
// dispatches upload tasks, and enforces two independent bounds — a semaphore
// capping simultaneous sends and a pending-batch ceiling capping how many
// batches are resident in memory at once.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Swiddis/opensearch-utils/internal/progress"
	"github.com/Swiddis/opensearch-utils/internal/source"
	"github.com/Swiddis/opensearch-utils/pkg/config"
	"github.com/Swiddis/opensearch-utils/pkg/metrics"
)

// Loader owns one ingestion run.
type Loader struct {
	cfg      config.LoaderConfig
	uploader *uploader
	progress *progress.Aggregator
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New wires a Loader from configuration. prog must have its Run loop started
// by the caller before Run is invoked.
func New(cfg *config.Config, prog *progress.Aggregator, m *metrics.Metrics) *Loader {
	client := &http.Client{
		Timeout: cfg.HTTP.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.HTTP.MaxIdleConnsPerHost,
			MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnsPerHost,
		},
	}
	return &Loader{
		cfg: cfg.Loader,
		uploader: newUploader(
			client,
			cfg.Loader.Endpoint,
			cfg.Loader.Index,
			cfg.Loader.Username,
			cfg.Loader.Password,
			cfg.Loader.Live,
			int64(cfg.Loader.ConcurrentRequests),
			prog,
			m,
		),
		progress: prog,
		metrics:  m,
		logger:   slog.Default().With("component", "loader"),
	}
}

// Run reads the source to completion, dispatching one upload task per batch.
// After each dispatch it drains resolved tasks until the pending count is
// below MaxPendingBatches, so no more than that many batches ever hold record
// data in memory. The first task failure cancels the run context, which
// aborts remaining tasks at their next suspension point; Run still waits for
// every task to resolve before returning. A Finished event is emitted exactly
// once, after the last task resolves.
func (l *Loader) Run(ctx context.Context) error {
	reader, err := source.Open(l.cfg.File)
	if err != nil {
		l.progress.Emit(progress.Finished)
		return fmt.Errorf("opening source: %w", err)
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Each task sends exactly one result; receiving one is the "any
	// resolved task" selection, completion order does not matter.
	results := make(chan error)
	pending := 0
	var firstErr error

	drainOne := func() {
		if err := <-results; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
		pending--
	}

	submit := func(batch []string) {
		l.progress.Emit(progress.BatchSubmitted)
		l.metrics.BatchesSubmittedTotal.Inc()
		pending++
		go func() {
			results <- l.uploader.upload(ctx, batch)
		}()
	}

	batch := make([]string, 0, l.cfg.BatchSize)
	lines := 0
	for reader.Next() {
		if l.cfg.Limit > 0 && lines >= l.cfg.Limit {
			break
		}
		batch = append(batch, reader.Text())
		lines++
		l.progress.Emit(progress.LineRead)
		l.metrics.LinesReadTotal.Inc()

		if len(batch) >= l.cfg.BatchSize {
			submit(batch)
			batch = make([]string, 0, l.cfg.BatchSize)
			for pending >= l.cfg.MaxPendingBatches && firstErr == nil {
				drainOne()
			}
			if firstErr != nil {
				break
			}
		}
	}
	if err := reader.Err(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("reading source: %w", err)
		cancel()
	}

	if firstErr == nil && len(batch) > 0 {
		submit(batch)
	}
	for pending > 0 {
		drainOne()
	}

	l.progress.Emit(progress.Finished)

	if firstErr != nil {
		return firstErr
	}
	l.logger.Info("ingestion finished", "lines", lines)
	return nil
}
