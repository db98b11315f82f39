package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/fred-data/internal/fred"
)

func TestRecorder_ObserveFetch(t *testing.T) {
	r := NewRecorder()

	r.ObserveFetch("GDP", 10*time.Millisecond, nil)
	r.ObserveFetch("GDP", 10*time.Millisecond, nil)
	r.ObserveFetch("BAD", 5*time.Millisecond, &fred.InvalidSeriesError{Series: "BAD"})
	r.ObserveFetch("X", 5*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetches.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetches.WithLabelValues(StatusInvalidSeries)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetches.WithLabelValues(StatusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.fetchDuration))
}

func TestRecorder_RowsAndPolls(t *testing.T) {
	r := NewRecorder()

	r.AddRowsWritten(10)
	r.AddRowsWritten(0)
	r.AddRowsWritten(-3)
	r.ObservePoll(nil)
	r.ObservePoll(errors.New("boom"))

	assert.Equal(t, 10.0, testutil.ToFloat64(r.rowsWritten))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pollCycles.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pollCycles.WithLabelValues(StatusError)))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveFetch("GDP", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `fred_fetch_total{status="ok"} 1`))
}
