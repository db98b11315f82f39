// Package writer persists gathered FRED tables to TimescaleDB.
//
// Each gather run is written in a single COPY into fred_observations, one row
// per (series, date) cell, tagged with the run id and the time the run was
// written. Rows are append-only; later runs never update earlier ones, so
// revisions published by FRED show up as newer fetched_at rows.
package writer
