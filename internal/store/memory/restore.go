package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

var restoreOrder = []store.EntityType{
	store.EntityProducts,
	store.EntityCustomers,
	store.EntitySuppliers,
	store.EntityPointRewards,
	store.EntityTransactions,
	store.EntityProcurements,
	store.EntityDebtPayments,
	store.EntityPointHistory,
	store.EntitySettings,
}

// Restore rebuilds the tenant from a replica, replacing any existing state.
// Records keep the version they were mirrored with.
func (s *Store) Restore(ctx context.Context, warungID string, loader store.Loader) error {
	fresh := newTenant()
	for _, entity := range restoreOrder {
		recs, err := loader.LoadEntity(ctx, warungID, entity)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if err := restoreRecord(fresh, entity, rec); err != nil {
				return fmt.Errorf("restore %s/%s: %w", entity, rec.ID, err)
			}
		}
	}
	s.mu.Lock()
	s.tenants[warungID] = fresh
	s.mu.Unlock()
	return nil
}

func restoreRecord(t *tenant, entity store.EntityType, rec store.RecordSnapshot) error {
	switch entity {
	case store.EntityProducts:
		var p domain.Product
		if err := json.Unmarshal(rec.Doc, &p); err != nil {
			return err
		}
		t.products[p.ID] = p
	case store.EntityCustomers:
		var c domain.Customer
		if err := json.Unmarshal(rec.Doc, &c); err != nil {
			return err
		}
		t.customers[c.ID] = c
	case store.EntitySuppliers:
		var sp domain.Supplier
		if err := json.Unmarshal(rec.Doc, &sp); err != nil {
			return err
		}
		t.suppliers[sp.ID] = sp
	case store.EntityPointRewards:
		var r domain.PointReward
		if err := json.Unmarshal(rec.Doc, &r); err != nil {
			return err
		}
		t.rewards[r.ID] = r
	case store.EntityTransactions:
		var tx domain.Transaction
		if err := json.Unmarshal(rec.Doc, &tx); err != nil {
			return err
		}
		t.transactions[tx.ID] = tx
	case store.EntityProcurements:
		var p domain.Procurement
		if err := json.Unmarshal(rec.Doc, &p); err != nil {
			return err
		}
		t.procurements = append(t.procurements, p)
	case store.EntityDebtPayments:
		var p domain.DebtPayment
		if err := json.Unmarshal(rec.Doc, &p); err != nil {
			return err
		}
		t.debtPayments = append(t.debtPayments, p)
	case store.EntityPointHistory:
		var h domain.PointHistory
		if err := json.Unmarshal(rec.Doc, &h); err != nil {
			return err
		}
		t.pointHistory = append(t.pointHistory, h)
	case store.EntitySettings:
		var set domain.AppSettings
		if err := json.Unmarshal(rec.Doc, &set); err != nil {
			return err
		}
		t.settings = &set
	}
	return nil
}
