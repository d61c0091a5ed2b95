// Package observability exposes Prometheus metrics for the invoice engine:
// commit outcomes, duplicate blocks by reason, autosave activity, and the
// live numbering counter.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles all instrument handles. A nil *Metrics is valid and makes
// every method a no-op, so library code can run without a registry.
type Metrics struct {
	invoiceCommits  *prometheus.CounterVec
	duplicateBlocks *prometheus.CounterVec
	autosaves       *prometheus.CounterVec
	exportRenders   prometheus.Counter
	invoiceCounter  prometheus.Gauge
}

// New registers all metrics on the given registerer. Passing nil uses the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		invoiceCommits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fatoora_invoice_commits_total",
			Help: "Invoice commits by kind (draft, final) and outcome (ok, blocked, invalid, error).",
		}, []string{"kind", "outcome"}),

		duplicateBlocks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fatoora_duplicate_blocks_total",
			Help: "Commits refused by the duplicate guard, by reason.",
		}, []string{"reason"}),

		autosaves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fatoora_autosave_total",
			Help: "Autosave sweeps by outcome (saved, skipped, error).",
		}, []string{"outcome"}),

		exportRenders: factory.NewCounter(prometheus.CounterOpts{
			Name: "fatoora_export_renders_total",
			Help: "Successfully rendered and saved export artifacts.",
		}),

		invoiceCounter: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fatoora_invoice_counter",
			Help: "Current value of the monthly invoice numbering counter.",
		}),
	}
}

// ─── Recording ──────────────────────────────────────────────────────────────

// Commit records one commit attempt of the given kind and outcome.
func (m *Metrics) Commit(kind, outcome string) {
	if m == nil {
		return
	}
	m.invoiceCommits.WithLabelValues(kind, outcome).Inc()
}

// DuplicateBlock records a refusal by the duplicate guard.
func (m *Metrics) DuplicateBlock(reason string) {
	if m == nil {
		return
	}
	m.duplicateBlocks.WithLabelValues(reason).Inc()
}

// Autosave records one autosave sweep outcome.
func (m *Metrics) Autosave(outcome string) {
	if m == nil {
		return
	}
	m.autosaves.WithLabelValues(outcome).Inc()
}

// ExportRendered records a completed export artifact.
func (m *Metrics) ExportRendered() {
	if m == nil {
		return
	}
	m.exportRenders.Inc()
}

// SetCounter mirrors the live numbering counter into the gauge.
func (m *Metrics) SetCounter(n int) {
	if m == nil {
		return
	}
	m.invoiceCounter.Set(float64(n))
}
