package ledger

import (
	"context"
	"fmt"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/store"
)

// ApplySpend folds a sale total into the customer's lifetime spend. Called
// on the in-memory record so checkout saves the customer exactly once.
func ApplySpend(c *domain.Customer, total int64) {
	c.TotalSpent += total
}

// ExtendCredit grows the customer's tab by the unpaid part of a sale.
func ExtendCredit(c *domain.Customer, amount int64) {
	c.DebtBalance += amount
}

// Debt applies repayments to customer balances. A payment larger than the
// balance is accepted as recorded; the balance goes negative and reads as
// credit owed to the customer.
type Debt struct {
	store store.Store
}

func NewDebt(st store.Store) *Debt {
	return &Debt{store: st}
}

// ApplyPayment decreases the customer's tab. Unlike catalog lines, a missing
// customer here is an error: a repayment without its account is meaningless.
func (d *Debt) ApplyPayment(ctx context.Context, warungID, customerID string, amount int64) (*domain.Customer, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		c, err := d.store.GetCustomer(ctx, warungID, customerID)
		if err != nil {
			return nil, err
		}
		c.DebtBalance -= amount
		saved, err := d.store.PutCustomer(ctx, warungID, *c)
		if err == store.ErrVersionConflict {
			metrics.VersionConflictRetries.Inc()
			continue
		}
		if err != nil {
			return nil, err
		}
		return saved, nil
	}
	return nil, fmt.Errorf("apply payment %s: %w", customerID, store.ErrVersionConflict)
}
