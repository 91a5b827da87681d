// internal/observability/metrics.go

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for outbound calls
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeError       = "error"
	OutcomeUnavailable = "unavailable"
)

// Collector holds the Prometheus metrics for the application. A nil
// *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbound API metrics
	APICalls    *prometheus.CounterVec
	APIDuration *prometheus.HistogramVec

	// Business metrics
	SessionsCreated  prometheus.Counter
	ActiveSessions   prometheus.Gauge
	MessagesComposed prometheus.Counter
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		APICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_calls_total",
				Help:      "Total number of calls to external APIs",
			},
			[]string{"api", "outcome"},
		),
		APIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_call_duration_seconds",
				Help:      "External API call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"api"},
		),
		SessionsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_created_total",
				Help:      "Total number of planning sessions created",
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of planning sessions held in memory",
			},
		),
		MessagesComposed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_composed_total",
				Help:      "Total number of share messages rendered",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.APICalls,
		c.APIDuration,
		c.SessionsCreated,
		c.ActiveSessions,
		c.MessagesComposed,
	)

	return c
}

// ObserveCall records one outbound API call
func (c *Collector) ObserveCall(api, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.APICalls.WithLabelValues(api, outcome).Inc()
	c.APIDuration.WithLabelValues(api).Observe(d.Seconds())
}

// ObserveRequest records one served HTTP request
func (c *Collector) ObserveRequest(method, route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// SessionOpened records a new session
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.SessionsCreated.Inc()
	c.ActiveSessions.Inc()
}

// SessionClosed records a deleted or expired session
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.ActiveSessions.Dec()
}

// MessageComposed records a rendered share message
func (c *Collector) MessageComposed() {
	if c == nil {
		return
	}
	c.MessagesComposed.Inc()
}

// Handler exposes the registry over HTTP
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
