// Package ledger holds the three fact-driven ledgers. Each ledger is the
// sole writer of its aggregate: catalog owns product stock, debt owns
// customer balances, loyalty owns point balances. Ledgers apply deltas
// derived from committed facts; they never price carts or validate payments.
package ledger

import (
	"context"
	"fmt"
	"log"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/store"
)

// maxRetries bounds the optimistic save loop on version conflicts.
const maxRetries = 5

// Catalog applies stock movements to products. A fact line whose product no
// longer exists is skipped, not failed: the sale or procurement already
// happened, and a deleted product must not invalidate the record of it.
type Catalog struct {
	store store.Store
}

func NewCatalog(st store.Store) *Catalog {
	return &Catalog{store: st}
}

// ApplySale deducts stock for each cart line, quantity times the unit
// conversion in base units. Returns the product ids that were skipped.
func (c *Catalog) ApplySale(ctx context.Context, warungID string, items []domain.CartItem) ([]string, error) {
	var skipped []string
	for _, item := range items {
		ok, err := c.adjustStock(ctx, warungID, item.ProductID, -item.BaseUnits())
		if err != nil {
			return skipped, err
		}
		if !ok {
			skipped = append(skipped, item.ProductID)
		}
	}
	return skipped, nil
}

// ApplyProcurement adds stock for each procurement line. Quantities are
// already in base units, so no conversion is applied.
func (c *Catalog) ApplyProcurement(ctx context.Context, warungID string, items []domain.ProcurementItem) ([]string, error) {
	var skipped []string
	for _, item := range items {
		ok, err := c.adjustStock(ctx, warungID, item.ProductID, item.Quantity)
		if err != nil {
			return skipped, err
		}
		if !ok {
			skipped = append(skipped, item.ProductID)
		}
	}
	return skipped, nil
}

// adjustStock applies one delta with optimistic retries. Returns false when
// the product does not exist. Stock may go negative; an oversold count is
// the catalog's honest view, not an error.
func (c *Catalog) adjustStock(ctx context.Context, warungID, productID string, delta int64) (bool, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		p, err := c.store.GetProduct(ctx, warungID, productID)
		if err == store.ErrNotFound {
			metrics.CatalogSkipped.Inc()
			log.Printf("[catalog] warung=%s product=%s missing, line skipped", warungID, productID)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		p.Stock += delta
		if _, err := c.store.PutProduct(ctx, warungID, *p); err != nil {
			if err == store.ErrVersionConflict {
				metrics.VersionConflictRetries.Inc()
				continue
			}
			return false, err
		}
		return true, nil
	}
	return false, fmt.Errorf("adjust stock %s: %w", productID, store.ErrVersionConflict)
}
