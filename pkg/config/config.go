// Package config loads and validates loader configuration from YAML files
// with environment-variable overrides. Command-line flags are applied on top
// by the caller and take precedence over both.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoaderConfig holds the ingestion pipeline settings.
type LoaderConfig struct {
	// File is the dataset path. Empty or "-" reads from stdin.
	File     string `yaml:"file"`
	Index    string `yaml:"index"`
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Limit caps the number of lines read; 0 reads everything.
	Limit int `yaml:"limit"`
	// BatchSize is the number of documents per bulk request.
	BatchSize int `yaml:"batchSize"`
	// ConcurrentRequests caps simultaneous in-flight bulk requests.
	ConcurrentRequests int `yaml:"concurrentRequests"`
	// MaxPendingBatches caps batches resident in memory, queued or in
	// flight. This bounds memory independently of ConcurrentRequests.
	MaxPendingBatches int `yaml:"maxPendingBatches"`
	// Live skips deterministic document ids and rewrites embedded
	// timestamps to submission time.
	Live bool `yaml:"live"`
}

// HTTPConfig holds client transport settings for the bulk endpoint.
type HTTPConfig struct {
	Timeout             time.Duration `yaml:"timeout"`
	MaxIdleConnsPerHost int           `yaml:"maxIdleConnsPerHost"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate checks that required fields are present and numeric limits are
// usable.
func (c *Config) Validate() error {
	if c.Loader.Index == "" {
		return fmt.Errorf("target index name is required")
	}
	if c.Loader.Endpoint == "" {
		return fmt.Errorf("endpoint URL is required")
	}
	if c.Loader.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.Loader.BatchSize)
	}
	if c.Loader.ConcurrentRequests < 1 {
		return fmt.Errorf("concurrent requests must be at least 1, got %d", c.Loader.ConcurrentRequests)
	}
	if c.Loader.MaxPendingBatches < 1 {
		return fmt.Errorf("max pending batches must be at least 1, got %d", c.Loader.MaxPendingBatches)
	}
	if c.Loader.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", c.Loader.Limit)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Loader: LoaderConfig{
			Endpoint:           "http://localhost:9200",
			BatchSize:          8192,
			ConcurrentRequests: 32,
			MaxPendingBatches:  64,
		},
		HTTP: HTTPConfig{
			Timeout:             5 * time.Minute,
			MaxIdleConnsPerHost: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads OSU_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OSU_ENDPOINT"); v != "" {
		cfg.Loader.Endpoint = v
	}
	if v := os.Getenv("OSU_INDEX"); v != "" {
		cfg.Loader.Index = v
	}
	if v := os.Getenv("OSU_USERNAME"); v != "" {
		cfg.Loader.Username = v
	}
	if v := os.Getenv("OSU_PASSWORD"); v != "" {
		cfg.Loader.Password = v
	}
	if v := os.Getenv("OSU_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Loader.BatchSize = n
		}
	}
	if v := os.Getenv("OSU_CONCURRENT_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Loader.ConcurrentRequests = n
		}
	}
	if v := os.Getenv("OSU_MAX_PENDING_BATCHES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Loader.MaxPendingBatches = n
		}
	}
	if v := os.Getenv("OSU_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OSU_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("OSU_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
