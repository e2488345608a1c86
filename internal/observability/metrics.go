// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Load metrics
	LoadsTotal     *prometheus.CounterVec
	LoadDuration   prometheus.Histogram
	RowsRead       prometheus.Gauge
	RowsDropped    prometheus.Gauge
	InvalidCells   prometheus.Gauge
	Records        prometheus.Gauge
	LastLoadOK     prometheus.Gauge
	LastSuccessful prometheus.Gauge

	// Reload triggers
	ReloadRequests *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec
	CacheEvicted prometheus.Counter

	// Import metrics
	ImportsTotal *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "fuelboard"
	}
	f := promauto.With(reg)

	return &Metrics{
		LoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "loads_total",
			Help:      "Total number of dataset loads by outcome",
		}, []string{"status"}),
		LoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "load_duration_seconds",
			Help:      "Time to read, validate and derive one dataset",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		RowsRead: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "rows_read",
			Help:      "Non-blank data rows in the last successful load",
		}),
		RowsDropped: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "rows_dropped",
			Help:      "Rows discarded by the missing-data policy in the last successful load",
		}),
		InvalidCells: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "invalid_cells",
			Help:      "Non-numeric price cells in the last successful load",
		}),
		Records: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "records",
			Help:      "Monthly records in the current dataset",
		}),
		LastLoadOK: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "last_load_ok",
			Help:      "1 when the most recent load succeeded, 0 otherwise",
		}),
		LastSuccessful: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "last_successful_load_timestamp",
			Help:      "Unix timestamp of the last successful load",
		}),
		ReloadRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "reload_requests_total",
			Help:      "Reload requests by trigger",
		}, []string{"trigger"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status class",
		}, []string{"route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Filtered-view cache lookups by result",
		}, []string{"result"}),
		CacheEvicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "expired_total",
			Help:      "Entries removed by the periodic expiry sweep",
		}),
		ImportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Import command runs by outcome",
		}, []string{"status"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor serves the metrics of a specific gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordLoadSucceeded updates load counters and dataset gauges.
func (m *Metrics) RecordLoadSucceeded(took time.Duration, rowsRead, dropped, invalid, records int) {
	m.LoadsTotal.WithLabelValues("success").Inc()
	m.LoadDuration.Observe(took.Seconds())
	m.RowsRead.Set(float64(rowsRead))
	m.RowsDropped.Set(float64(dropped))
	m.InvalidCells.Set(float64(invalid))
	m.Records.Set(float64(records))
	m.LastLoadOK.Set(1)
	m.LastSuccessful.Set(float64(time.Now().Unix()))
}

// RecordLoadFailed counts a failed load under its error kind.
func (m *Metrics) RecordLoadFailed(took time.Duration, kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.LoadsTotal.WithLabelValues(kind).Inc()
	m.LoadDuration.Observe(took.Seconds())
	m.LastLoadOK.Set(0)
}

func (m *Metrics) RecordReloadRequest(trigger string) {
	m.ReloadRequests.WithLabelValues(trigger).Inc()
}

func (m *Metrics) RecordHTTP(route string, status int, took time.Duration) {
	m.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(took.Seconds())
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) RecordImport(err error) {
	if err != nil {
		m.ImportsTotal.WithLabelValues("error").Inc()
		return
	}
	m.ImportsTotal.WithLabelValues("success").Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
