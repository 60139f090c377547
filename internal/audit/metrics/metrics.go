package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit pipeline.
type Metrics struct {
	// Events emitted into the pipeline by action
	EventsEmitted *prometheus.CounterVec

	// Events dropped because the publisher buffer was full
	EventsDropped *prometheus.CounterVec

	// Outbox entries relayed to Kafka, by topic and result
	OutboxRelayed *prometheus.CounterVec

	// Latency of one outbox relay batch
	RelayBatchLatency prometheus.Histogram

	// Consumer records materialized, by topic and result
	ConsumerRecords *prometheus.CounterVec
}

// New creates a new Metrics instance with all audit pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		EventsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_audit_events_emitted_total",
			Help: "Audit events accepted into the publisher buffer by action",
		}, []string{"action"}),

		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_audit_events_dropped_total",
			Help: "Audit events dropped because the publisher buffer was full",
		}, []string{"action"}),

		OutboxRelayed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_audit_outbox_relayed_total",
			Help: "Outbox entries relayed to Kafka by topic and result",
		}, []string{"topic", "result"}),

		RelayBatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "soulbound_audit_relay_batch_duration_seconds",
			Help:    "Duration of one outbox relay batch",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		ConsumerRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_audit_consumer_records_total",
			Help: "Audit records consumed from Kafka by topic and result",
		}, []string{"topic", "result"}),
	}
}

// RecordEmitted counts an event accepted into the buffer.
func (m *Metrics) RecordEmitted(action string) {
	if m != nil {
		m.EventsEmitted.WithLabelValues(action).Inc()
	}
}

// RecordDropped counts an event dropped on a full buffer.
func (m *Metrics) RecordDropped(action string) {
	if m != nil {
		m.EventsDropped.WithLabelValues(action).Inc()
	}
}

// RecordRelayed counts one outbox entry relayed to Kafka.
func (m *Metrics) RecordRelayed(topic, result string) {
	if m != nil {
		m.OutboxRelayed.WithLabelValues(topic, result).Inc()
	}
}

// ObserveRelayBatch records the duration of one relay batch.
func (m *Metrics) ObserveRelayBatch(d time.Duration) {
	if m != nil {
		m.RelayBatchLatency.Observe(d.Seconds())
	}
}

// RecordConsumed counts one record handled by the consumer.
func (m *Metrics) RecordConsumed(topic, result string) {
	if m != nil {
		m.ConsumerRecords.WithLabelValues(topic, result).Inc()
	}
}
