package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
)

// ObservationsTable receives one row per (series, date) cell per gather run.
// Missing observations are stored as NULL unless the writer skips them.
const ObservationsTable = "fred_observations"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS fred_observations (
		run_id      UUID             NOT NULL,
		series_id   TEXT             NOT NULL,
		observed_on DATE             NOT NULL,
		value       DOUBLE PRECISION,
		fetched_at  TIMESTAMPTZ      NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS fred_observations_series_date_idx
		ON fred_observations (series_id, observed_on, fetched_at DESC)`,
}

const hypertableStatement = `SELECT create_hypertable('fred_observations', 'fetched_at', if_not_exists => TRUE, migrate_data => TRUE)`

// Execer runs a statement. *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsureSchema creates the observations table and index if missing, then
// converts it to a hypertable. A database without the timescaledb extension
// keeps a plain table and a warning is logged.
func EnsureSchema(ctx context.Context, db Execer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	if _, err := db.Exec(ctx, hypertableStatement); err != nil {
		logger.Warn("hypertable not created, using plain table",
			"table", ObservationsTable,
			"error", err,
		)
	}

	return nil
}
