package fred

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/fred-data/internal/frame"
)

// DefaultBaseURL is the FRED graph CSV endpoint.
const DefaultBaseURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"

const tracerName = "github.com/rickgao/fred-data/internal/fred"

// Session transports requests for one Read. Read closes it exactly once
// before returning, on success and on every error path.
type Session interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
	Close() error
}

// Observer is notified after each per-series fetch.
type Observer interface {
	ObserveFetch(series string, d time.Duration, err error)
}

// Range bounds the observation dates returned by Read. Both ends are
// inclusive; a zero Start or End leaves that side unbounded.
type Range struct {
	Start time.Time
	End   time.Time
}

// Reader fetches FRED series and joins them into a table.
type Reader struct {
	session     Session
	baseURL     string
	concurrency int
	logger      *slog.Logger
	observer    Observer
	tracer      trace.Tracer
}

// Option configures a Reader.
type Option func(*Reader)

// NewReader creates a Reader that fetches through session.
func NewReader(session Session, opts ...Option) *Reader {
	r := &Reader{
		session:     session,
		baseURL:     DefaultBaseURL,
		concurrency: 1,
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithBaseURL overrides the CSV endpoint.
func WithBaseURL(u string) Option {
	return func(r *Reader) {
		r.baseURL = u
	}
}

// WithConcurrency sets how many series are fetched at once. Values below 2
// fetch sequentially in request order.
func WithConcurrency(n int) Option {
	return func(r *Reader) {
		if n < 1 {
			n = 1
		}
		r.concurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithObserver registers a fetch observer.
func WithObserver(o Observer) Option {
	return func(r *Reader) {
		r.observer = o
	}
}

// WithTracer sets the tracer used for read and fetch spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reader) {
		r.tracer = t
	}
}

// URL returns the request URL for one series identifier.
func (r *Reader) URL(symbol string) string {
	sep := "?"
	if strings.Contains(r.baseURL, "?") {
		sep = "&"
	}
	return r.baseURL + sep + "id=" + url.QueryEscape(symbol)
}

// Read fetches every symbol, truncates each to rng and outer-joins them.
// Columns of the result follow the order of symbols. Any failure aborts the
// whole read. The session is closed before Read returns.
func (r *Reader) Read(ctx context.Context, rng Range, symbols ...string) (tbl *frame.Table, err error) {
	defer func() {
		if cerr := r.session.Close(); cerr != nil {
			if err == nil {
				err = fmt.Errorf("close session: %w", cerr)
				tbl = nil
				return
			}
			r.logger.Warn("failed to close session", "error", cerr)
		}
	}()

	names := normalize(symbols)
	if len(names) == 0 {
		return nil, ErrNoSymbols
	}

	ctx, span := r.tracer.Start(ctx, "fred.Read", trace.WithAttributes(
		attribute.StringSlice("fred.series", names),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()

	series, err := r.fetchAll(ctx, rng, names)
	if err != nil {
		return nil, err
	}

	tbl, err = frame.OuterJoin(series...)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("read complete",
		"series", names,
		"rows", tbl.Len(),
		"duration", time.Since(start),
	)

	return tbl, nil
}

// normalize copies symbols so later mutation by the caller cannot reorder columns.
func normalize(symbols []string) []string {
	names := make([]string, len(symbols))
	copy(names, symbols)
	return names
}

func (r *Reader) fetchAll(ctx context.Context, rng Range, names []string) ([]*frame.Series, error) {
	out := make([]*frame.Series, len(names))

	if r.concurrency < 2 || len(names) < 2 {
		for i, name := range names {
			s, err := r.fetchSeries(ctx, rng, name)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, name := range names {
		g.Go(func() error {
			s, err := r.fetchSeries(gctx, rng, name)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchSeries downloads, parses and truncates one series.
func (r *Reader) fetchSeries(ctx context.Context, rng Range, name string) (s *frame.Series, err error) {
	rawURL := r.URL(name)

	ctx, span := r.tracer.Start(ctx, "fred.fetch", trace.WithAttributes(
		attribute.String("fred.series", name),
		attribute.String("url.full", rawURL),
	))
	start := time.Now()
	defer func() {
		if r.observer != nil {
			r.observer.ObserveFetch(name, time.Since(start), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := r.session.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch series %s: %w", name, err)
	}

	rows, err := readRows(name, body)
	if err != nil {
		return nil, err
	}

	parsed, err := buildSeries(name, rows)
	if err != nil {
		return nil, classify(name, rows, err)
	}

	s, err = parsed.Truncate(rng.Start, rng.End)
	if err != nil {
		return nil, classify(name, rows, err)
	}

	r.logger.Debug("fetched series",
		"series", name,
		"rows", parsed.Len(),
		"kept", s.Len(),
	)

	return s, nil
}

// classify turns an index failure on FRED's error page into an
// *InvalidSeriesError. Every other error is returned unchanged.
func classify(name string, rows []row, err error) error {
	var idxErr *frame.IndexError
	if !errors.As(err, &idxErr) {
		return err
	}
	if isErrorPage(rows) {
		return &InvalidSeriesError{Series: name, Err: err}
	}
	return err
}
