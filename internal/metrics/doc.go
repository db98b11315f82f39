// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - fred_fetch_total{status}: per-series downloads by outcome
//   - fred_fetch_duration_seconds: per-series download and parse latency
//   - fred_rows_written_total: observations persisted by the writer
//   - fred_poll_cycles_total{status}: gatherer cycles by outcome
//
// Collectors live on a private registry so tests can create independent
// Recorders.
package metrics
