package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/rickgao/fred-data/internal/poller"
	"github.com/rickgao/fred-data/internal/version"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// cycleTracker remembers the outcome of the latest poll cycle and forwards
// it to the metrics recorder.
type cycleTracker struct {
	next poller.CycleObserver

	mu       sync.Mutex
	lastAt   time.Time
	lastErr  error
	finished int
}

func newCycleTracker(next poller.CycleObserver) *cycleTracker {
	return &cycleTracker{next: next}
}

func (c *cycleTracker) ObservePoll(err error) {
	c.mu.Lock()
	c.lastAt = time.Now()
	c.lastErr = err
	c.finished++
	c.mu.Unlock()

	if c.next != nil {
		c.next.ObservePoll(err)
	}
}

func (c *cycleTracker) snapshot() (time.Time, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAt, c.finished, c.lastErr
}

// newRouter serves /health and the Prometheus handler at metricsPath.
func newRouter(db pinger, cycles *cycleTracker, metricsHandler http.Handler, metricsPath string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    string         `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.String(),
			Components: make(map[string]any),
		}

		// Check database
		if err := db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["timescaledb"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["timescaledb"] = "connected"
		}

		// Check last poll cycle
		lastAt, finished, lastErr := cycles.snapshot()
		poll := map[string]any{"cycles": finished}
		if finished > 0 {
			poll["last_cycle"] = lastAt.UTC().Format(time.RFC3339)
		}
		if lastErr != nil {
			poll["error"] = lastErr.Error()
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
		}
		health.Components["poller"] = poll

		if health.Status == "unhealthy" {
			render.Status(r, http.StatusServiceUnavailable)
		}
		render.JSON(w, r, health)
	})

	r.Method(http.MethodGet, metricsPath, metricsHandler)

	return r
}
