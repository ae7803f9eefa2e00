// Command bulkindex streams records from a file (or stdin) into an
// OpenSearch/Elasticsearch _bulk endpoint.
//
// Records are opaque lines of text, grouped into fixed-size batches and
// uploaded concurrently. Each document gets a deterministic content-hash id,
// so re-running the same dataset is idempotent; --live switches to
// server-assigned ids with timestamps rewritten to submission time.
//
// Usage:
//
//	bulkindex -f dataset.json.gz -i my-index -e http://localhost:9200
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/Swiddis/opensearch-utils/internal/loader"
	"github.com/Swiddis/opensearch-utils/internal/progress"
	"github.com/Swiddis/opensearch-utils/pkg/config"
	"github.com/Swiddis/opensearch-utils/pkg/logger"
	"github.com/Swiddis/opensearch-utils/pkg/metrics"
)

func main() {
	app := &cli.App{
		Name:  "bulkindex",
		Usage: "Bulk index documents into OpenSearch/Elasticsearch",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to YAML config file",
				EnvVars: []string{"OSU_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to the dataset file (supports .gz, .bz2, .zst); reads stdin if omitted",
			},
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Target index name",
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Aliases: []string{"e"},
				Usage:   "OpenSearch/Elasticsearch endpoint URL",
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Username for HTTP basic authentication",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password for HTTP basic authentication",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of lines to read (reads all if not specified)",
			},
			&cli.IntFlag{
				Name:    "batch-size",
				Aliases: []string{"b"},
				Usage:   "Number of documents per batch",
			},
			&cli.IntFlag{
				Name:    "concurrent-requests",
				Aliases: []string{"c"},
				Usage:   "Maximum number of concurrent requests",
			},
			&cli.IntFlag{
				Name:  "max-pending-batches",
				Usage: "Maximum number of in-progress batches to keep in memory",
			},
			&cli.BoolFlag{
				Name:  "live",
				Usage: "Skip _id field and replace timestamps with current time",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Serve Prometheus metrics during the load",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress display",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Logging level (debug, info, warn, error)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run merges config sources (file, environment, flags), wires the pipeline,
// and drives it to completion.
func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer shutdown(context.Background())
	}

	var listener progress.Listener
	if !c.Bool("no-progress") {
		listener = newBarRenderer(cfg.Loader.Limit)
	}
	agg := progress.NewAggregator(listener)
	go agg.Run()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := loader.New(cfg, agg, m).Run(ctx)
	agg.Wait()
	return runErr
}

// applyFlags copies explicitly-set CLI flags over the loaded config.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("file") {
		cfg.Loader.File = c.String("file")
	}
	if c.IsSet("index") {
		cfg.Loader.Index = c.String("index")
	}
	if c.IsSet("endpoint") {
		cfg.Loader.Endpoint = c.String("endpoint")
	}
	if c.IsSet("username") {
		cfg.Loader.Username = c.String("username")
	}
	if c.IsSet("password") {
		cfg.Loader.Password = c.String("password")
	}
	if c.IsSet("limit") {
		cfg.Loader.Limit = c.Int("limit")
	}
	if c.IsSet("batch-size") {
		cfg.Loader.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("concurrent-requests") {
		cfg.Loader.ConcurrentRequests = c.Int("concurrent-requests")
	}
	if c.IsSet("max-pending-batches") {
		cfg.Loader.MaxPendingBatches = c.Int("max-pending-batches")
	}
	if c.IsSet("live") {
		cfg.Loader.Live = c.Bool("live")
	}
	if c.IsSet("metrics") {
		cfg.Metrics.Enabled = c.Bool("metrics")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
}
