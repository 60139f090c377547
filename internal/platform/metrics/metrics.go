// Package metrics holds the transport-level Prometheus metrics. Module
// packages register their own metrics next to their services; this package
// only measures the HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the HTTP layer.
type Metrics struct {
	// RequestLatency observes request duration by route and status class.
	RequestLatency *prometheus.HistogramVec

	// RequestsInFlight gauges concurrent requests.
	RequestsInFlight prometheus.Gauge
}

// New creates a new Metrics instance with all HTTP metrics registered.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soulbound_http_request_duration_seconds",
			Help:    "HTTP request duration by route and status class",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
		RequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "soulbound_http_requests_in_flight",
			Help: "Concurrent in-flight HTTP requests",
		}),
	}
}

// ObserveRequest records one completed request.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, status).Observe(seconds)
	}
}

// TrackInFlight adjusts the in-flight gauge by delta.
func (m *Metrics) TrackInFlight(delta float64) {
	if m != nil {
		m.RequestsInFlight.Add(delta)
	}
}
