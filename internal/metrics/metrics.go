// Package metrics exposes the Prometheus counters the ledgers and stores
// increment. All metrics live on the default registry and are served by
// promhttp on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SalesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warungpos_sales_committed_total",
		Help: "Sales transactions committed to the ledger.",
	})
	ProcurementsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warungpos_procurements_committed_total",
		Help: "Procurement facts committed to the ledger.",
	})
	DebtPaymentsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warungpos_debt_payments_committed_total",
		Help: "Debt payment facts committed to the ledger.",
	})
	PointsEarned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warungpos_points_earned_total",
		Help: "Loyalty points credited to customers.",
	})
	PointsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warungpos_points_redeemed_total",
		Help: "Loyalty points debited through reward redemptions.",
	})
	CatalogSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warungpos_catalog_skipped_references_total",
		Help: "Fact lines referencing products missing from the catalog.",
	})
	VersionConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warungpos_version_conflict_retries_total",
		Help: "Optimistic save retries after a version conflict.",
	})
	MirrorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warungpos_remote_mirror_failures_total",
		Help: "Writes that failed to reach the remote replica.",
	})
	MirrorDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warungpos_remote_mirror_dropped_total",
		Help: "Mirror writes dropped because the queue was full.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
