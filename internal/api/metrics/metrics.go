// Package metrics defines all custom Prometheus metrics for the billing
// API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register themselves with the default registry
// via promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "billing"

// GenerationRunsTotal counts invoice generation runs.
// Label:
//   - result: "completed" or "replayed" (Idempotency-Key hit)
var GenerationRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_runs_total",
		Help:      "Total number of invoice generation runs, by result.",
	},
	[]string{"result"},
)

// InvoicesGeneratedTotal counts per-client outcomes within generation runs.
// Label:
//   - outcome: "created", "skipped-empty", "conflict", or "failed"
var InvoicesGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_generated_total",
		Help:      "Total number of per-client generation outcomes.",
	},
	[]string{"outcome"},
)

// InvoiceTransitionsTotal counts successful invoice status transitions.
// Label:
//   - to: the target status ("paid" or "void")
var InvoiceTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoice_transitions_total",
		Help:      "Total number of successful invoice status transitions, by target status.",
	},
	[]string{"to"},
)

// InvoiceExportsTotal counts invoice document downloads.
// Label:
//   - format: "pdf" or "xlsx"
var InvoiceExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoice_exports_total",
		Help:      "Total number of invoice document exports, by format.",
	},
	[]string{"format"},
)

// GenerationDuration measures how long a full generation run takes.
var GenerationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of invoice generation runs end-to-end.",
		Buckets:   prometheus.DefBuckets,
	},
)
