package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Share metrics
	OperationCalls    *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	BytesServed       *prometheus.CounterVec
	ListingEntries    *prometheus.HistogramVec
	TruncatedListings *prometheus.CounterVec

	// Tool registry metrics
	ToolCalls *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	TotalErrors     int64   `json:"total_errors"`
	TotalOperations int64   `json:"total_operations"`
	BytesServed     int64   `json:"bytes_served"`
	AverageLatency  float64 `json:"average_latency_seconds"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	totalDuration   float64
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	m := &Metrics{
		registry:  registry,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shareview_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shareview_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shareview_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "route"},
		),

		// Share metrics
		OperationCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shareview_operations_total",
				Help: "Total number of share operations",
			},
			[]string{"operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shareview_operation_duration_seconds",
				Help:    "Share operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shareview_operation_errors_total",
				Help: "Total number of failed share operations by error kind",
			},
			[]string{"operation", "kind"},
		),
		BytesServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shareview_bytes_served_total",
				Help: "File bytes returned to clients",
			},
			[]string{"operation"},
		),
		ListingEntries: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shareview_listing_entries",
				Help:    "Entries returned per listing or search",
				Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"operation"},
		),
		TruncatedListings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shareview_truncated_listings_total",
				Help: "Listings or searches cut short by the scan limit",
			},
			[]string{"operation"},
		),

		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shareview_tool_calls_total",
				Help: "Total number of registry tool executions",
			},
			[]string{"tool", "status"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "shareview_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records a share operation. kind is empty on success.
func (m *Metrics) RecordOperation(operation, kind string, duration time.Duration) {
	status := "success"
	if kind != "" {
		status = "error"
		m.OperationErrors.WithLabelValues(operation, kind).Inc()
	}
	m.OperationCalls.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalOperations++
	m.mu.Unlock()
}

// RecordBytes records file bytes handed to a client
func (m *Metrics) RecordBytes(operation string, n int) {
	m.BytesServed.WithLabelValues(operation).Add(float64(n))

	m.mu.Lock()
	m.snapshot.BytesServed += int64(n)
	m.mu.Unlock()
}

// RecordListing records the size of a listing or search result
func (m *Metrics) RecordListing(operation string, entries int, truncated bool) {
	m.ListingEntries.WithLabelValues(operation).Observe(float64(entries))
	if truncated {
		m.TruncatedListings.WithLabelValues(operation).Inc()
	}
}

// RecordToolCall records a registry tool execution
func (m *Metrics) RecordToolCall(tool string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}

// Snapshot returns current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	snap := m.snapshot
	m.mu.RUnlock()

	if snap.TotalRequests > 0 {
		snap.AverageLatency = snap.totalDuration / float64(snap.TotalRequests)
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
