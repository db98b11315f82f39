package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rickgao/fred-data/internal/database"
	"github.com/rickgao/fred-data/internal/frame"
)

var observationColumns = []string{"run_id", "series_id", "observed_on", "value", "fetched_at"}

// CopyFromer bulk-loads rows. *pgxpool.Pool satisfies it.
type CopyFromer interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// RowsObserver is told how many rows each write stored.
type RowsObserver interface {
	AddRowsWritten(n int64)
}

// WriterMetrics tracks writer activity.
type WriterMetrics struct {
	Writes int64
	Rows   int64
	Errors int64
}

// Option configures an ObservationWriter.
type Option func(*ObservationWriter)

// WithObserver reports written row counts to o.
func WithObserver(o RowsObserver) Option {
	return func(w *ObservationWriter) {
		w.observer = o
	}
}

// WithSkipNulls drops null cells instead of storing them as NULL.
func WithSkipNulls() Option {
	return func(w *ObservationWriter) {
		w.skipNulls = true
	}
}

// ObservationWriter copies gathered tables into fred_observations.
type ObservationWriter struct {
	db        CopyFromer
	logger    *slog.Logger
	observer  RowsObserver
	skipNulls bool
	now       func() time.Time

	mu      sync.Mutex
	metrics WriterMetrics
}

// NewObservationWriter creates a writer on db.
func NewObservationWriter(db CopyFromer, logger *slog.Logger, opts ...Option) *ObservationWriter {
	if logger == nil {
		logger = slog.Default()
	}
	w := &ObservationWriter{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write stores every cell of tbl under runID and returns the number of rows
// copied. An empty table writes nothing.
func (w *ObservationWriter) Write(ctx context.Context, runID uuid.UUID, tbl *frame.Table) (int64, error) {
	rows := w.transform(runID, w.now().UTC(), tbl)
	if len(rows) == 0 {
		return 0, nil
	}

	start := time.Now()

	n, err := w.db.CopyFrom(ctx, pgx.Identifier{database.ObservationsTable}, observationColumns, pgx.CopyFromRows(rows))
	if err != nil {
		w.mu.Lock()
		w.metrics.Errors++
		w.mu.Unlock()
		return 0, fmt.Errorf("copy observations: %w", err)
	}

	w.mu.Lock()
	w.metrics.Writes++
	w.metrics.Rows += n
	w.mu.Unlock()

	if w.observer != nil {
		w.observer.AddRowsWritten(n)
	}

	w.logger.Debug("wrote observations",
		"run_id", runID,
		"series", tbl.Columns,
		"rows", n,
		"duration", time.Since(start),
	)

	return n, nil
}

// HandleTable writes tbl, discarding the row count.
func (w *ObservationWriter) HandleTable(ctx context.Context, runID uuid.UUID, tbl *frame.Table) error {
	_, err := w.Write(ctx, runID, tbl)
	return err
}

// Stats returns current metrics.
func (w *ObservationWriter) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// transform flattens tbl into COPY rows ordered by column, then date.
func (w *ObservationWriter) transform(runID uuid.UUID, fetchedAt time.Time, tbl *frame.Table) [][]any {
	if tbl == nil {
		return nil
	}

	rows := make([][]any, 0, tbl.Len()*tbl.Width())
	for c, series := range tbl.Columns {
		for r, date := range tbl.Index {
			v := tbl.Value(r, c)
			if !v.Valid && w.skipNulls {
				continue
			}
			var value any
			if v.Valid {
				value = v.Float64
			}
			rows = append(rows, []any{runID, series, date, value, fetchedAt})
		}
	}
	return rows
}
