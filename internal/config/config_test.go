package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  base_url: https://fred.example.com/graph/fredgraph.csv
  timeout: 10s
  rate_limit: 2.5
fetch:
  series: [GDP, UNRATE]
  start: "2020-01-01"
  end: "2021-12-31"
  concurrency: 4
database:
  timescale:
    host: localhost
    port: 5433
    name: fred
    user: testuser
    password: testpass
poller:
  interval: 1h
writer:
  skip_nulls: true
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://fred.example.com/graph/fredgraph.csv" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "https://fred.example.com/graph/fredgraph.csv")
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, 10*time.Second)
	}
	if cfg.API.RateLimit != 2.5 {
		t.Errorf("API.RateLimit = %v, want %v", cfg.API.RateLimit, 2.5)
	}
	if len(cfg.Fetch.Series) != 2 || cfg.Fetch.Series[0] != "GDP" || cfg.Fetch.Series[1] != "UNRATE" {
		t.Errorf("Fetch.Series = %v, want [GDP UNRATE]", cfg.Fetch.Series)
	}
	if cfg.Fetch.Concurrency != 4 {
		t.Errorf("Fetch.Concurrency = %d, want %d", cfg.Fetch.Concurrency, 4)
	}
	if cfg.Database.Timescale.Port != 5433 {
		t.Errorf("Database.Timescale.Port = %d, want %d", cfg.Database.Timescale.Port, 5433)
	}
	if cfg.Poller.Interval != time.Hour {
		t.Errorf("Poller.Interval = %v, want %v", cfg.Poller.Interval, time.Hour)
	}
	if !cfg.Writer.SkipNulls {
		t.Errorf("Writer.SkipNulls = %v, want true", cfg.Writer.SkipNulls)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !strings.HasPrefix(err.Error(), "read config file:") {
		t.Errorf("Load() error = %q, want read config file prefix", err.Error())
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
database:
  timescale:
    host: localhost
    name: fred
    user: testuser
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Timescale.Password != "secret123" {
		t.Errorf("Database.Timescale.Password = %q, want %q", cfg.Database.Timescale.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
fetch:
  series: [GDP]
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.Fetch.Concurrency != DefaultFetchConcurrency {
		t.Errorf("Fetch.Concurrency = %d, want default %d", cfg.Fetch.Concurrency, DefaultFetchConcurrency)
	}
	if cfg.Database.Timescale.Port != DefaultDBPort {
		t.Errorf("Database.Timescale.Port = %d, want default %d", cfg.Database.Timescale.Port, DefaultDBPort)
	}
	if cfg.Database.Timescale.MaxConns != DefaultMaxConns {
		t.Errorf("Database.Timescale.MaxConns = %d, want default %d", cfg.Database.Timescale.MaxConns, DefaultMaxConns)
	}
	if cfg.Poller.Interval != DefaultPollInterval {
		t.Errorf("Poller.Interval = %v, want default %v", cfg.Poller.Interval, DefaultPollInterval)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want default %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Tracing.Exporter != DefaultTraceExporter {
		t.Errorf("Tracing.Exporter = %q, want default %q", cfg.Tracing.Exporter, DefaultTraceExporter)
	}
}

func TestLoadWithDefaultsNoFile(t *testing.T) {
	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
}

func TestLoadWithDefaultsEnvOverrides(t *testing.T) {
	t.Setenv("FRED_API_BASE_URL", "http://localhost:8080/csv")
	t.Setenv("FRED_API_MAX_RETRIES", "7")
	t.Setenv("FRED_FETCH_SERIES", "GDP,UNRATE,CPIAUCSL")
	t.Setenv("FRED_POLLER_INTERVAL", "15m")
	t.Setenv("FRED_DATABASE_TIMESCALE_SSL_MODE", "disable")
	t.Setenv("FRED_WRITER_SKIP_NULLS", "true")

	yaml := `
api:
  base_url: https://fred.example.com/graph/fredgraph.csv
fetch:
  series: [GDP]
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8080/csv" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://localhost:8080/csv")
	}
	if cfg.API.MaxRetries != 7 {
		t.Errorf("API.MaxRetries = %d, want %d", cfg.API.MaxRetries, 7)
	}
	if got := strings.Join(cfg.Fetch.Series, ","); got != "GDP,UNRATE,CPIAUCSL" {
		t.Errorf("Fetch.Series = %q, want %q", got, "GDP,UNRATE,CPIAUCSL")
	}
	if cfg.Poller.Interval != 15*time.Minute {
		t.Errorf("Poller.Interval = %v, want %v", cfg.Poller.Interval, 15*time.Minute)
	}
	if cfg.Database.Timescale.SSLMode != "disable" {
		t.Errorf("Database.Timescale.SSLMode = %q, want %q", cfg.Database.Timescale.SSLMode, "disable")
	}
	if !cfg.Writer.SkipNulls {
		t.Errorf("Writer.SkipNulls = %v, want true", cfg.Writer.SkipNulls)
	}
}

func TestLoadWithDefaultsBadEnv(t *testing.T) {
	t.Setenv("FRED_API_MAX_RETRIES", "many")

	_, err := LoadWithDefaults("")
	if err == nil {
		t.Fatal("LoadWithDefaults() expected error for bad env value, got nil")
	}
	if !strings.HasPrefix(err.Error(), "apply env overrides:") {
		t.Errorf("LoadWithDefaults() error = %q, want apply env overrides prefix", err.Error())
	}
}

func TestLoadAndValidate(t *testing.T) {
	yaml := `
fetch:
  series: [GDP]
  start: "2020-01-01"
`
	cfg, err := LoadAndValidate(writeTempFile(t, yaml))
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.Fetch.Concurrency != DefaultFetchConcurrency {
		t.Errorf("Fetch.Concurrency = %d, want %d", cfg.Fetch.Concurrency, DefaultFetchConcurrency)
	}
}

func TestLoadAndValidateRejectsBaseSettings(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad log level",
			yaml:    "logging:\n  level: verbose\n",
			wantErr: "logging.level",
		},
		{
			name:    "start after end",
			yaml:    "fetch:\n  start: \"2021-01-01\"\n  end: \"2020-01-01\"\n",
			wantErr: "fetch.start",
		},
		{
			name:    "unknown trace exporter",
			yaml:    "tracing:\n  exporter: jaeger\n",
			wantErr: "tracing.exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAndValidate(writeTempFile(t, tt.yaml))
			if err == nil {
				t.Fatal("LoadAndValidate() expected error, got nil")
			}
			if !strings.HasPrefix(err.Error(), "validate config:") {
				t.Errorf("LoadAndValidate() error = %q, want validate config prefix", err.Error())
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadAndValidate() error = %q, want it to mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestFetchRange(t *testing.T) {
	f := FetchConfig{Start: "2020-01-01"}
	rng, err := f.Range()
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC); !rng.Start.Equal(want) {
		t.Errorf("Range().Start = %v, want %v", rng.Start, want)
	}
	if !rng.End.IsZero() {
		t.Errorf("Range().End = %v, want zero", rng.End)
	}

	f = FetchConfig{End: "01/02/2020"}
	if _, err := f.Range(); err == nil {
		t.Error("Range() expected error for malformed end, got nil")
	}
}

func validConfig() Config {
	cfg := Config{
		Fetch: FetchConfig{Series: []string{"GDP"}},
		Database: DatabaseConfig{
			Timescale: DBConfig{Host: "localhost", Name: "fred", User: "user", Password: "pass"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.API.BaseURL = "/graph/fredgraph.csv" },
			wantErr: `api.base_url must be an absolute http(s) url, got "/graph/fredgraph.csv"`,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.API.MaxRetries = -1 },
			wantErr: "api.max_retries must be >= 0",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.API.RateLimit = -1 },
			wantErr: "api.rate_limit must be >= 0",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Fetch.Concurrency = 0 },
			wantErr: "fetch.concurrency must be >= 1",
		},
		{
			name: "start after end",
			mutate: func(c *Config) {
				c.Fetch.Start = "2021-01-01"
				c.Fetch.End = "2020-01-01"
			},
			wantErr: "fetch.start (2021-01-01) cannot be after fetch.end (2020-01-01)",
		},
		{
			name:    "blank series",
			mutate:  func(c *Config) { c.Fetch.Series = []string{"GDP", " "} },
			wantErr: "fetch.series[1] is empty",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: `logging.level must be one of debug, info, warn, error, got "verbose"`,
		},
		{
			name:    "bad trace exporter",
			mutate:  func(c *Config) { c.Tracing.Exporter = "zipkin" },
			wantErr: `tracing.exporter must be none or stdout, got "zipkin"`,
		},
		{
			name:    "sample ratio above one",
			mutate:  func(c *Config) { c.Tracing.SampleRatio = 1.5 },
			wantErr: "tracing.sample_ratio must be between 0 and 1, got 1.5",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestValidateGatherer(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "no series",
			mutate:  func(c *Config) { c.Fetch.Series = nil },
			wantErr: "fetch.series is required",
		},
		{
			name:    "missing timescale host",
			mutate:  func(c *Config) { c.Database.Timescale.Host = "" },
			wantErr: "database.timescale.host is required",
		},
		{
			name:    "missing timescale password",
			mutate:  func(c *Config) { c.Database.Timescale.Password = "" },
			wantErr: "database.timescale.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Database.Timescale.MaxConns = 5
				c.Database.Timescale.MinConns = 10
			},
			wantErr: "database.timescale.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Poller.Interval = 0 },
			wantErr: "poller.interval must be > 0",
		},
		{
			name:    "metrics port out of range",
			mutate:  func(c *Config) { c.Metrics.Port = 70000 },
			wantErr: "metrics.port must be between 1 and 65535, got 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.ValidateGatherer()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateGatherer() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("ValidateGatherer() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("ValidateGatherer() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
