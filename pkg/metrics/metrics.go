// Package metrics defines the Prometheus collectors of the bulk loader and
// exposes an HTTP server for scraping long-running loads.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the loader.
type Metrics struct {
	LinesReadTotal        prometheus.Counter
	BatchesSubmittedTotal prometheus.Counter
	BatchesCompletedTotal prometheus.Counter
	RequestsInFlight      prometheus.Gauge
	RetriesTotal          prometheus.Counter
	BytesSentTotal        prometheus.Counter
	RequestDuration       prometheus.Histogram
}

// New creates the loader collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LinesReadTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulkindex_lines_read_total",
			Help: "Total number of source lines read.",
		}),
		BatchesSubmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulkindex_batches_submitted_total",
			Help: "Total number of batches handed to upload tasks.",
		}),
		BatchesCompletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulkindex_batches_completed_total",
			Help: "Total number of batches indexed successfully.",
		}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bulkindex_requests_in_flight",
			Help: "Number of bulk requests currently being transmitted.",
		}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulkindex_retries_total",
			Help: "Total number of bulk request retries after rate limiting.",
		}),
		BytesSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulkindex_bytes_sent_total",
			Help: "Total bulk request body bytes sent, including resends.",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bulkindex_request_duration_seconds",
			Help:    "Bulk request latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
	reg.MustRegister(
		m.LinesReadTotal,
		m.BatchesSubmittedTotal,
		m.BatchesCompletedTotal,
		m.RequestsInFlight,
		m.RetriesTotal,
		m.BytesSentTotal,
		m.RequestDuration,
	)
	return m
}
