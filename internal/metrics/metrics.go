package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/fred-data/internal/fred"
)

// Fetch and poll outcomes used as the status label.
const (
	StatusOK            = "ok"
	StatusInvalidSeries = "invalid_series"
	StatusError         = "error"
)

var _ fred.Observer = (*Recorder)(nil)

// Recorder owns the collectors and the registry they are exposed on.
type Recorder struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	rowsWritten   prometheus.Counter
	pollCycles    *prometheus.CounterVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fred_fetch_total",
			Help: "Series downloads by outcome.",
		}, []string{"status"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fred_fetch_duration_seconds",
			Help:    "Time to download and parse one series.",
			Buckets: prometheus.DefBuckets,
		}),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fred_rows_written_total",
			Help: "Observations written to the database.",
		}),
		pollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fred_poll_cycles_total",
			Help: "Gatherer poll cycles by outcome.",
		}, []string{"status"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.fetches,
		r.fetchDuration,
		r.rowsWritten,
		r.pollCycles,
	)

	return r
}

// ObserveFetch implements fred.Observer.
func (r *Recorder) ObserveFetch(series string, d time.Duration, err error) {
	r.fetches.WithLabelValues(fetchStatus(err)).Inc()
	r.fetchDuration.Observe(d.Seconds())
}

// AddRowsWritten counts persisted observations.
func (r *Recorder) AddRowsWritten(n int64) {
	if n > 0 {
		r.rowsWritten.Add(float64(n))
	}
}

// ObservePoll counts a completed poll cycle.
func (r *Recorder) ObservePoll(err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.pollCycles.WithLabelValues(status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func fetchStatus(err error) string {
	if err == nil {
		return StatusOK
	}
	var invalid *fred.InvalidSeriesError
	if errors.As(err, &invalid) {
		return StatusInvalidSeries
	}
	return StatusError
}
