package config

import (
	"time"

	"github.com/rickgao/fred-data/internal/api"
	"github.com/rickgao/fred-data/internal/fred"
)

// Default values for optional configuration fields.
const (
	DefaultBaseURL          = fred.DefaultBaseURL
	DefaultAPITimeout       = api.DefaultTimeout
	DefaultMaxRetries       = api.DefaultMaxRetries
	DefaultRetryBackoff     = api.DefaultRetryBackoff
	DefaultRateBurst        = 1
	DefaultUserAgent        = api.DefaultUserAgent
	DefaultFetchConcurrency = 1
	DefaultLookback         = 5 * 365 * 24 * time.Hour
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultPollInterval     = 6 * time.Hour
	DefaultPollTimeout      = 5 * time.Minute
	DefaultMetricsPort      = 9090
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultTraceExporter    = "none"
	DefaultTraceSampleRatio = 1.0
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}
	if c.API.RateBurst == 0 {
		c.API.RateBurst = DefaultRateBurst
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = DefaultUserAgent
	}

	// Fetch defaults
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = DefaultFetchConcurrency
	}
	if c.Fetch.Lookback == 0 {
		c.Fetch.Lookback = DefaultLookback
	}

	// Database defaults
	applyDBDefaults(&c.Database.Timescale)

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	// Tracing defaults
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = DefaultTraceExporter
	}
	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = DefaultTraceSampleRatio
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
