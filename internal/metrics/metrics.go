// Package metrics defines the Prometheus collectors the server exports
// on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconciliationWarnings counts spent-delta adjustments that failed
	// after their primary write succeeded. Non-zero values mean some
	// budget items are waiting on a repair pass.
	ReconciliationWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgetbook_reconciliation_warnings_total",
		Help: "Spent-total delta adjustments that failed after the primary write succeeded.",
	})

	// SpentRepairs counts drift-repair recomputations of an item's
	// spent total.
	SpentRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgetbook_spent_repairs_total",
		Help: "Budget item spent totals recomputed by the repair pass.",
	})

	// BudgetMerges counts stale budgets merged into a shared budget.
	BudgetMerges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgetbook_budget_merges_total",
		Help: "Recipient budgets merged into a shared budget during sharing.",
	})

	// LiveSubscribers tracks currently open checklist subscriptions.
	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "budgetbook_live_subscribers",
		Help: "Open live checklist subscriptions.",
	})
)
