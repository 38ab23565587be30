// Package metrics exposes the ledger's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transfer outcomes used as the "outcome" label.
const (
	OutcomeApplied           = "applied"
	OutcomeReplayed          = "replayed"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeNotFound          = "not_found"
	OutcomeInvalid           = "invalid"
	OutcomeError             = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	TransfersTotal   *prometheus.CounterVec
	TransferDuration prometheus.Histogram
	AccountsCreated  prometheus.Counter
	JournalFailures  *prometheus.CounterVec
}

// New builds collectors on a dedicated registry so several instances can
// coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TransfersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "transfers_total",
			Help:      "Transfer requests by outcome.",
		}, []string{"outcome"}),
		TransferDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "transfer_duration_seconds",
			Help:      "Time spent executing a transfer request.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10),
		}),
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "accounts_created_total",
			Help:      "Accounts opened since process start.",
		}),
		JournalFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "journal_failures_total",
			Help:      "Journal writes that failed after the in-memory change was applied.",
		}, []string{"op"}),
	}
}

func (m *Metrics) ObserveTransfer(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.TransfersTotal.WithLabelValues(outcome).Inc()
	m.TransferDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) AccountCreated() {
	if m == nil {
		return
	}
	m.AccountsCreated.Inc()
}

func (m *Metrics) JournalFailed(op string) {
	if m == nil {
		return
	}
	m.JournalFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
