package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the host. Each Metrics value
// owns its registry so independent instances never collide.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// App lifecycle metrics
	AppsRunning   prometheus.Gauge
	AppLaunches   prometheus.Counter
	AppCloses     prometheus.Counter
	AppFailures   *prometheus.CounterVec
	ResourceEstMB prometheus.Gauge

	// Capability metrics
	PermissionChecks *prometheus.CounterVec

	// Window metrics
	FocusChanges prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry:  registry,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "host_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		AppsRunning: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "host_apps_running",
				Help: "Number of running app instances",
			},
		),
		AppLaunches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "host_app_launches_total",
				Help: "Total number of app launches",
			},
		),
		AppCloses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "host_app_closes_total",
				Help: "Total number of app closes",
			},
		),
		AppFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_app_failures_total",
				Help: "Total number of app failures",
			},
			[]string{"stage"},
		),
		ResourceEstMB: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "host_resource_estimate_mb",
				Help: "Aggregate estimated resource usage in megabytes",
			},
		),

		PermissionChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "host_permission_checks_total",
				Help: "Total number of capability checks",
			},
			[]string{"category", "outcome"},
		),

		FocusChanges: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "host_focus_changes_total",
				Help: "Total number of focus transfers",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "host_ws_connections",
				Help: "Number of active event-stream connections",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "host_uptime_seconds",
				Help: "Host uptime in seconds",
			},
		),
	}

	return m
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

// RecordPermissionCheck records one capability check outcome.
func (m *Metrics) RecordPermissionCheck(category string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.PermissionChecks.WithLabelValues(category, outcome).Inc()
}

// RecordLaunch records a successful app launch.
func (m *Metrics) RecordLaunch(running int, estimateMB float64) {
	m.AppLaunches.Inc()
	m.AppsRunning.Set(float64(running))
	m.ResourceEstMB.Set(estimateMB)
}

// RecordClose records an app close.
func (m *Metrics) RecordClose(running int, estimateMB float64) {
	m.AppCloses.Inc()
	m.AppsRunning.Set(float64(running))
	m.ResourceEstMB.Set(estimateMB)
}

// RecordFailure records an app failure at the given stage
// (validate, launch, reload).
func (m *Metrics) RecordFailure(stage string) {
	m.AppFailures.WithLabelValues(stage).Inc()
}

// RecordFocusChange records one focus transfer.
func (m *Metrics) RecordFocusChange() {
	m.FocusChanges.Inc()
}
