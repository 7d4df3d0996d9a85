package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "checkout"

// Webhook outcomes recorded by ObserveWebhook.
const (
	OutcomeRelayed     = "relayed"
	OutcomeRelayFailed = "relay_failed"
	OutcomeDuplicate   = "duplicate"
	OutcomeExpired     = "expired"
	OutcomeIgnored     = "ignored"
	OutcomeRejected    = "rejected"
	OutcomeError       = "error"
)

// Metrics owns a private registry so tests can build as many as they need.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	webhookEvents   *prometheus.CounterVec
	relayDeliveries *prometheus.CounterVec
	relayDuration   *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Stripe webhook deliveries by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		relayDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_deliveries_total",
			Help:      "Outbound relay attempts by event type and result.",
		}, []string{"event_type", "result"}),
		relayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_duration_seconds",
			Help:      "Outbound relay latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"event_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.webhookEvents,
		m.relayDeliveries,
		m.relayDuration,
		m.httpRequests,
		m.httpDuration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveWebhook(eventType, outcome string) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) ObserveRelay(eventType string, delivered bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "failed"
	if delivered {
		result = "delivered"
	}
	m.relayDeliveries.WithLabelValues(eventType, result).Inc()
	m.relayDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, StatusClass(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// StatusClass converts a status code to its range label (2xx, 3xx, 4xx, 5xx).
func StatusClass(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return strconv.Itoa(statusCode)
	}
}
