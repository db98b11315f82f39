package config

import (
	"fmt"
	"time"

	"github.com/rickgao/fred-data/internal/fred"
)

// Config is the root configuration shared by the fredread and gatherer binaries.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Database DatabaseConfig `yaml:"database"`
	Poller   PollerConfig   `yaml:"poller"`
	Writer   WriterConfig   `yaml:"writer"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// APIConfig holds FRED transport settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url" split_words:"true"`
	Timeout      time.Duration `yaml:"timeout" split_words:"true"`
	MaxRetries   int           `yaml:"max_retries" split_words:"true"`
	RetryBackoff time.Duration `yaml:"retry_backoff" split_words:"true"`
	RateLimit    float64       `yaml:"rate_limit" split_words:"true"` // requests per second, 0 = unlimited
	RateBurst    int           `yaml:"rate_burst" split_words:"true"`
	UserAgent    string        `yaml:"user_agent" split_words:"true"`
}

// FetchConfig selects the series and date range to read.
type FetchConfig struct {
	Series      []string      `yaml:"series" split_words:"true"`
	Start       string        `yaml:"start" split_words:"true"` // YYYY-MM-DD, empty = unbounded
	End         string        `yaml:"end" split_words:"true"`   // YYYY-MM-DD, empty = unbounded
	Lookback    time.Duration `yaml:"lookback" split_words:"true"`
	Concurrency int           `yaml:"concurrency" split_words:"true"`
}

// DatabaseConfig holds the TimescaleDB connection the gatherer writes to.
type DatabaseConfig struct {
	Timescale DBConfig `yaml:"timescale"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host" split_words:"true"`
	Port     int    `yaml:"port" split_words:"true"`
	Name     string `yaml:"name" split_words:"true"`
	User     string `yaml:"user" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true"`
	MaxConns int    `yaml:"max_conns" split_words:"true"`
	MinConns int    `yaml:"min_conns" split_words:"true"`
}

// PollerConfig holds gatherer poll loop settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval" split_words:"true"`
	Timeout  time.Duration `yaml:"timeout" split_words:"true"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port" split_words:"true"`
	Path string `yaml:"path" split_words:"true"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

// WriterConfig controls how gathered tables are stored.
type WriterConfig struct {
	SkipNulls bool `yaml:"skip_nulls" split_words:"true"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Exporter    string  `yaml:"exporter" split_words:"true"` // none or stdout
	SampleRatio float64 `yaml:"sample_ratio" split_words:"true"`
}

// Range parses Start and End into a fred.Range.
func (f *FetchConfig) Range() (fred.Range, error) {
	var rng fred.Range
	var err error

	if f.Start != "" {
		if rng.Start, err = time.Parse(time.DateOnly, f.Start); err != nil {
			return fred.Range{}, fmt.Errorf("fetch.start: %w", err)
		}
	}
	if f.End != "" {
		if rng.End, err = time.Parse(time.DateOnly, f.End); err != nil {
			return fred.Range{}, fmt.Errorf("fetch.end: %w", err)
		}
	}

	return rng, nil
}
