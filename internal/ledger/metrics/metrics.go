package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module.
type Metrics struct {
	// Tokens created and destroyed
	TokensMinted prometheus.Counter
	TokensBurned prometheus.Counter

	// Holder-to-holder moves rejected by the transfer guard
	TransfersRejected prometheus.Counter

	// Approval bookkeeping changes by kind
	ApprovalChanges *prometheus.CounterVec
}

// New creates a new Metrics instance with all ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		TokensMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_ledger_tokens_minted_total",
			Help: "Tokens created through the mint path",
		}),
		TokensBurned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_ledger_tokens_burned_total",
			Help: "Tokens destroyed through the burn path",
		}),
		TransfersRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulbound_ledger_transfers_rejected_total",
			Help: "Holder-to-holder moves rejected by the transfer guard",
		}),
		ApprovalChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulbound_ledger_approval_changes_total",
			Help: "Approval bookkeeping changes by kind",
		}, []string{"kind"}), // kind: "approval", "operator"
	}
}

// RecordMint counts one successful mint.
func (m *Metrics) RecordMint() {
	if m != nil {
		m.TokensMinted.Inc()
	}
}

// RecordBurn counts one successful burn.
func (m *Metrics) RecordBurn() {
	if m != nil {
		m.TokensBurned.Inc()
	}
}

// RecordTransferRejected counts one guard rejection.
func (m *Metrics) RecordTransferRejected() {
	if m != nil {
		m.TransfersRejected.Inc()
	}
}

// RecordApprovalChange counts one approval or operator change.
func (m *Metrics) RecordApprovalChange(kind string) {
	if m != nil {
		m.ApprovalChanges.WithLabelValues(kind).Inc()
	}
}
