package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/fred-data/internal/fred"
	"github.com/rickgao/fred-data/internal/frame"
)

// TableReader reads series into a joined table.
type TableReader interface {
	Read(ctx context.Context, rng fred.Range, symbols ...string) (*frame.Table, error)
}

// TableHandler receives the table gathered by one poll cycle.
type TableHandler interface {
	HandleTable(ctx context.Context, runID uuid.UUID, tbl *frame.Table) error
}

// TableHandlerFunc is a function adapter for TableHandler.
type TableHandlerFunc func(ctx context.Context, runID uuid.UUID, tbl *frame.Table) error

func (f TableHandlerFunc) HandleTable(ctx context.Context, runID uuid.UUID, tbl *frame.Table) error {
	return f(ctx, runID, tbl)
}

// CycleObserver is notified after every poll cycle.
type CycleObserver interface {
	ObservePoll(err error)
}

// Config holds poller configuration.
type Config struct {
	Series   []string
	Interval time.Duration // Poll interval (default: 6h)
	Timeout  time.Duration // Per-cycle timeout covering read and write (default: 5m)
	Lookback time.Duration // Window length ending now, used when Range is zero
	Range    fred.Range    // Fixed window; overrides Lookback when either end is set
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 6 * time.Hour,
		Timeout:  5 * time.Minute,
		Lookback: 5 * 365 * 24 * time.Hour,
	}
}

// Option configures a Poller.
type Option func(*Poller)

// WithObserver reports cycle outcomes to o.
func WithObserver(o CycleObserver) Option {
	return func(p *Poller) {
		p.observer = o
	}
}

// Poller periodically gathers FRED series.
type Poller struct {
	cfg      Config
	reader   TableReader
	handler  TableHandler
	observer CycleObserver
	logger   *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, reader TableReader, handler TableHandler, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		cfg:     cfg,
		reader:  reader,
		handler: handler,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	if p.cfg.Interval <= 0 {
		return fmt.Errorf("poller interval must be > 0, got %v", p.cfg.Interval)
	}

	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("fred poller started",
		"interval", p.cfg.Interval,
		"series", p.cfg.Series,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("fred poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	_ = p.Poll(p.ctx)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			_ = p.Poll(p.ctx)
		}
	}
}

// Window returns the date range a cycle starting at now reads. Observations
// are dated at midnight UTC, so the lookback start is floored to its day.
func (p *Poller) Window(now time.Time) fred.Range {
	if !p.cfg.Range.Start.IsZero() || !p.cfg.Range.End.IsZero() {
		return p.cfg.Range
	}
	if p.cfg.Lookback <= 0 {
		return fred.Range{}
	}
	start := now.Add(-p.cfg.Lookback).UTC().Truncate(24 * time.Hour)
	return fred.Range{Start: start, End: now}
}

// Poll runs one gather cycle: read every series, then hand the table on.
func (p *Poller) Poll(ctx context.Context) (err error) {
	start := p.now()
	runID := uuid.New()
	logger := p.logger.With("run_id", runID)

	defer func() {
		if p.observer != nil {
			p.observer.ObservePoll(err)
		}
	}()

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	rng := p.Window(start)

	tbl, err := p.reader.Read(ctx, rng, p.cfg.Series...)
	if err != nil {
		logger.Warn("failed to read series",
			"series", p.cfg.Series,
			"err", err,
		)
		return fmt.Errorf("read series: %w", err)
	}

	if p.handler != nil {
		if err := p.handler.HandleTable(ctx, runID, tbl); err != nil {
			logger.Warn("failed to handle table",
				"rows", tbl.Len(),
				"err", err,
			)
			return fmt.Errorf("handle table: %w", err)
		}
	}

	logger.Info("poll cycle complete",
		"series", len(tbl.Columns),
		"rows", tbl.Len(),
		"duration", p.now().Sub(start),
	)

	return nil
}
