package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the issuance controller.
type Metrics struct {
	// Mint attempts by outcome: "issued", "invalid_signature",
	// "already_issued", "arity_mismatch", "error"
	MintAttempts *prometheus.CounterVec

	// End-to-end mint pipeline latency
	MintLatency prometheus.Histogram
}

// New creates a new Metrics instance with all issuance metrics registered.
func New() *Metrics {
	return &Metrics{
		MintAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_issuance_mint_attempts_total",
			Help: "Mint attempts by outcome",
		}, []string{"outcome"}),
		MintLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "soulbound_issuance_mint_duration_seconds",
			Help:    "End-to-end mint pipeline duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// RecordAttempt counts one mint attempt with its outcome.
func (m *Metrics) RecordAttempt(outcome string) {
	if m != nil {
		m.MintAttempts.WithLabelValues(outcome).Inc()
	}
}

// ObserveLatency records one mint pipeline duration.
func (m *Metrics) ObserveLatency(seconds float64) {
	if m != nil {
		m.MintLatency.Observe(seconds)
	}
}
