package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics("test", reg), reg
}

func TestRecordLoad(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordLoadSucceeded(20*time.Millisecond, 12, 2, 1, 10)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadsTotal.WithLabelValues("success")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.Records))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LastLoadOK))

	m.RecordLoadFailed(time.Millisecond, "schema")
	m.RecordLoadFailed(time.Millisecond, "")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadsTotal.WithLabelValues("schema")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadsTotal.WithLabelValues("unknown")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastLoadOK))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.Records), "failed loads keep the last dataset gauges")
}

func TestRecordHTTPAndCache(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordHTTP("/api/summary", 200, time.Millisecond)
	m.RecordHTTP("/api/summary", 503, time.Millisecond)
	m.RecordHTTP("/api/trend", 404, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/summary", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/summary", "5xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/trend", "4xx")))

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))

	m.RecordImport(nil)
	m.RecordImport(errors.New("x"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportsTotal.WithLabelValues("error")))
}

func TestHandlerFor(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.RecordReloadRequest("http")

	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `test_dataset_reload_requests_total{trigger="http"} 1`))
}
