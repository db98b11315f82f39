package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/fred-data/internal/api"
	"github.com/rickgao/fred-data/internal/config"
	"github.com/rickgao/fred-data/internal/database"
	"github.com/rickgao/fred-data/internal/fred"
	"github.com/rickgao/fred-data/internal/logging"
	"github.com/rickgao/fred-data/internal/metrics"
	"github.com/rickgao/fred-data/internal/poller"
	"github.com/rickgao/fred-data/internal/telemetry"
	"github.com/rickgao/fred-data/internal/version"
	"github.com/rickgao/fred-data/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/gatherer.local.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err == nil {
		err = cfg.ValidateGatherer()
	}
	if err != nil {
		slog.Error("failed to load config", "config", *configPath, "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := logging.New(os.Stdout, cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting gatherer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	shutdownTracing, err := telemetry.Setup(os.Stdout, "fred-gatherer", cfg.Tracing)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("failed to flush spans", "error", err)
		}
	}()

	rng, err := cfg.Fetch.Range()
	if err != nil {
		logger.Error("invalid fetch range", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"series", cfg.Fetch.Series,
		"interval", cfg.Poller.Interval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Timescale.Host,
		"port", cfg.Database.Timescale.Port,
		"database", cfg.Database.Timescale.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Timescale)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	logger.Info("database connected")

	recorder := metrics.NewRecorder()

	// Create FRED client and reader
	apiClient := api.NewClient(
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		api.WithUserAgent(version.UserAgent(cfg.API.UserAgent)),
	)
	reader := fred.NewReader(apiClient,
		fred.WithBaseURL(cfg.API.BaseURL),
		fred.WithConcurrency(cfg.Fetch.Concurrency),
		fred.WithLogger(logger),
		fred.WithObserver(recorder),
	)

	writerOpts := []writer.Option{writer.WithObserver(recorder)}
	if cfg.Writer.SkipNulls {
		writerOpts = append(writerOpts, writer.WithSkipNulls())
	}
	obsWriter := writer.NewObservationWriter(pool, logger, writerOpts...)
	tracker := newCycleTracker(recorder)

	p := poller.New(poller.Config{
		Series:   cfg.Fetch.Series,
		Interval: cfg.Poller.Interval,
		Timeout:  cfg.Poller.Timeout,
		Lookback: cfg.Fetch.Lookback,
		Range:    rng,
	}, reader, obsWriter, logger, poller.WithObserver(tracker))

	// Start health and metrics server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newRouter(pool, tracker, recorder.Handler(), cfg.Metrics.Path),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Metrics.Port, "metrics_path", cfg.Metrics.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
			cancel()
		}
	}()

	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	logger.Info("gatherer running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := p.Stop(shutdownCtx); err != nil {
		logger.Warn("poller stop timed out", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("health server shutdown failed", "error", err)
	}

	stats := obsWriter.Stats()
	logger.Info("gatherer stopped",
		"writes", stats.Writes,
		"rows", stats.Rows,
		"write_errors", stats.Errors,
	)
}
