// Package memory implements the local store: an in-process, mutex-guarded
// map per tenant. It is the synchronous source of truth; the remote replica
// only mirrors what is committed here.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

type tenant struct {
	products     map[string]domain.Product
	customers    map[string]domain.Customer
	suppliers    map[string]domain.Supplier
	rewards      map[string]domain.PointReward
	transactions map[string]domain.Transaction
	procurements []domain.Procurement
	debtPayments []domain.DebtPayment
	pointHistory []domain.PointHistory
	settings     *domain.AppSettings
}

func newTenant() *tenant {
	return &tenant{
		products:     make(map[string]domain.Product),
		customers:    make(map[string]domain.Customer),
		suppliers:    make(map[string]domain.Supplier),
		rewards:      make(map[string]domain.PointReward),
		transactions: make(map[string]domain.Transaction),
	}
}

// Store is an in-memory store.Store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	tenants map[string]*tenant
}

func New() *Store {
	return &Store{tenants: make(map[string]*tenant)}
}

// NewSeeded returns a store preloaded with demo data for the given warung.
func NewSeeded(warungID string) *Store {
	s := New()
	s.seed(warungID)
	return s
}

// tenantFor requires the write lock; it creates the tenant on first use.
func (s *Store) tenantFor(warungID string) *tenant {
	t, ok := s.tenants[warungID]
	if !ok {
		t = newTenant()
		s.tenants[warungID] = t
	}
	return t
}

var emptyTenant = newTenant()

// readTenant is safe under the read lock. Unknown tenants read as empty.
func (s *Store) readTenant(warungID string) *tenant {
	if t, ok := s.tenants[warungID]; ok {
		return t
	}
	return emptyTenant
}

func cmpString(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cloneProduct(p domain.Product) domain.Product {
	out := p
	out.Units = slices.Clone(p.Units)
	return out
}

func cloneTransaction(tx domain.Transaction) domain.Transaction {
	out := tx
	out.Items = slices.Clone(tx.Items)
	return out
}

func cloneProcurement(p domain.Procurement) domain.Procurement {
	out := p
	out.Items = slices.Clone(p.Items)
	return out
}

func (s *Store) ListProducts(_ context.Context, warungID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.readTenant(warungID)
	result := make([]domain.Product, 0, len(t.products))
	for _, p := range t.products {
		result = append(result, cloneProduct(p))
	}
	slices.SortFunc(result, func(a, b domain.Product) int {
		if c := cmpString(a.Category, b.Category); c != 0 {
			return c
		}
		return cmpString(a.Name, b.Name)
	})
	return result, nil
}

func (s *Store) GetProduct(_ context.Context, warungID, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.readTenant(warungID).products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneProduct(p)
	return &out, nil
}

func (s *Store) PutProduct(_ context.Context, warungID string, p domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if p.ID == "" {
		p.ID = xid.New("prd")
	}
	existing, ok := t.products[p.ID]
	if ok {
		if p.Version != existing.Version {
			return nil, store.ErrVersionConflict
		}
	} else if p.Version != 0 {
		return nil, store.ErrVersionConflict
	}
	p.Version++
	p.UpdatedAt = time.Now().UTC()
	t.products[p.ID] = cloneProduct(p)
	out := cloneProduct(p)
	return &out, nil
}

func (s *Store) DeleteProduct(_ context.Context, warungID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if _, ok := t.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.products, id)
	return nil
}

func (s *Store) ListCustomers(_ context.Context, warungID string) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.readTenant(warungID)
	result := make([]domain.Customer, 0, len(t.customers))
	for _, c := range t.customers {
		result = append(result, c)
	}
	slices.SortFunc(result, func(a, b domain.Customer) int {
		return cmpString(a.Name, b.Name)
	})
	return result, nil
}

func (s *Store) GetCustomer(_ context.Context, warungID, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.readTenant(warungID).customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := c
	return &out, nil
}

func (s *Store) PutCustomer(_ context.Context, warungID string, c domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if c.ID == "" {
		c.ID = xid.New("cus")
	}
	existing, ok := t.customers[c.ID]
	if ok {
		if c.Version != existing.Version {
			return nil, store.ErrVersionConflict
		}
	} else {
		if c.Version != 0 {
			return nil, store.ErrVersionConflict
		}
		if c.JoinedAt.IsZero() {
			c.JoinedAt = time.Now().UTC()
		}
	}
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	t.customers[c.ID] = c
	out := c
	return &out, nil
}

func (s *Store) DeleteCustomer(_ context.Context, warungID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if _, ok := t.customers[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.customers, id)
	return nil
}

func (s *Store) ListPointRewards(_ context.Context, warungID string) ([]domain.PointReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.readTenant(warungID)
	result := make([]domain.PointReward, 0, len(t.rewards))
	for _, r := range t.rewards {
		result = append(result, r)
	}
	slices.SortFunc(result, func(a, b domain.PointReward) int {
		if a.PointsNeeded != b.PointsNeeded {
			if a.PointsNeeded < b.PointsNeeded {
				return -1
			}
			return 1
		}
		return cmpString(a.Name, b.Name)
	})
	return result, nil
}

func (s *Store) GetPointReward(_ context.Context, warungID, id string) (*domain.PointReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.readTenant(warungID).rewards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := r
	return &out, nil
}

func (s *Store) PutPointReward(_ context.Context, warungID string, r domain.PointReward) (*domain.PointReward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if r.ID == "" {
		r.ID = xid.New("rwd")
	}
	existing, ok := t.rewards[r.ID]
	if ok {
		if r.Version != existing.Version {
			return nil, store.ErrVersionConflict
		}
	} else if r.Version != 0 {
		return nil, store.ErrVersionConflict
	}
	r.Version++
	r.UpdatedAt = time.Now().UTC()
	t.rewards[r.ID] = r
	out := r
	return &out, nil
}

func (s *Store) DeletePointReward(_ context.Context, warungID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if _, ok := t.rewards[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.rewards, id)
	return nil
}

func (s *Store) ListSuppliers(_ context.Context, warungID string) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.readTenant(warungID)
	result := make([]domain.Supplier, 0, len(t.suppliers))
	for _, sp := range t.suppliers {
		result = append(result, sp)
	}
	slices.SortFunc(result, func(a, b domain.Supplier) int {
		return cmpString(a.Name, b.Name)
	})
	return result, nil
}

func (s *Store) GetSupplier(_ context.Context, warungID, id string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.readTenant(warungID).suppliers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := sp
	return &out, nil
}

func (s *Store) PutSupplier(_ context.Context, warungID string, sp domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if sp.ID == "" {
		sp.ID = xid.New("sup")
	}
	sp.UpdatedAt = time.Now().UTC()
	t.suppliers[sp.ID] = sp
	out := sp
	return &out, nil
}

func (s *Store) DeleteSupplier(_ context.Context, warungID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if _, ok := t.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.suppliers, id)
	return nil
}

func (s *Store) AppendTransaction(_ context.Context, warungID string, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if _, ok := t.transactions[tx.ID]; ok {
		return store.ErrDuplicateFact
	}
	t.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, warungID, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.readTenant(warungID).transactions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneTransaction(tx)
	return &out, nil
}

func (s *Store) ListTransactions(_ context.Context, warungID string, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.readTenant(warungID)
	result := make([]domain.Transaction, 0, len(t.transactions))
	for _, tx := range t.transactions {
		result = append(result, cloneTransaction(tx))
	}
	slices.SortFunc(result, func(a, b domain.Transaction) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) AppendProcurement(_ context.Context, warungID string, p domain.Procurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	for _, existing := range t.procurements {
		if existing.ID == p.ID {
			return store.ErrDuplicateFact
		}
	}
	t.procurements = append(t.procurements, cloneProcurement(p))
	return nil
}

func (s *Store) ListProcurements(_ context.Context, warungID string, limit int) ([]domain.Procurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.readTenant(warungID)
	result := make([]domain.Procurement, 0, len(t.procurements))
	for _, p := range t.procurements {
		result = append(result, cloneProcurement(p))
	}
	slices.SortFunc(result, func(a, b domain.Procurement) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) AppendDebtPayment(_ context.Context, warungID string, p domain.DebtPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	for _, existing := range t.debtPayments {
		if existing.ID == p.ID {
			return store.ErrDuplicateFact
		}
	}
	t.debtPayments = append(t.debtPayments, p)
	return nil
}

func (s *Store) ListDebtPayments(_ context.Context, warungID string, limit int) ([]domain.DebtPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.readTenant(warungID)
	result := slices.Clone(t.debtPayments)
	slices.SortFunc(result, func(a, b domain.DebtPayment) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) AppendPointHistory(_ context.Context, warungID string, h domain.PointHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	for _, existing := range t.pointHistory {
		if existing.ID == h.ID {
			return store.ErrDuplicateFact
		}
	}
	t.pointHistory = append(t.pointHistory, h)
	return nil
}

func (s *Store) ListPointHistory(_ context.Context, warungID, customerID string, limit int) ([]domain.PointHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.readTenant(warungID)
	result := make([]domain.PointHistory, 0, len(t.pointHistory))
	for _, h := range t.pointHistory {
		if customerID != "" && h.CustomerID != customerID {
			continue
		}
		result = append(result, h)
	}
	slices.SortFunc(result, func(a, b domain.PointHistory) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) GetSettings(_ context.Context, warungID string) (domain.AppSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.readTenant(warungID)
	if t.settings == nil {
		return domain.DefaultSettings(), nil
	}
	return *t.settings, nil
}

func (s *Store) PutSettings(_ context.Context, warungID string, set domain.AppSettings) (*domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	if t.settings != nil {
		if set.Version != t.settings.Version {
			return nil, store.ErrVersionConflict
		}
	} else if set.Version != 0 {
		return nil, store.ErrVersionConflict
	}
	set.Version++
	set.UpdatedAt = time.Now().UTC()
	copied := set
	t.settings = &copied
	out := set
	return &out, nil
}

// seed loads a small demo catalog and two regulars so a fresh install has
// something to sell.
func (s *Store) seed(warungID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(warungID)
	now := time.Now().UTC()

	products := []domain.Product{
		{
			ID: "prd-demo-beras", Name: "Beras Premium 5kg", SKU: "BRS-001",
			Category: "Sembako", BaseUnit: "Karung", Stock: 50, MinStockAlert: 10,
			Units: []domain.ProductUnit{
				{Name: "Karung", Conversion: 1, Price: 68000, BuyPrice: 62000},
			},
		},
		{
			ID: "prd-demo-minyak", Name: "Minyak Goreng 1L", SKU: "MYK-001",
			Category: "Sembako", BaseUnit: "Botol", Stock: 80, MinStockAlert: 15,
			Units: []domain.ProductUnit{
				{Name: "Botol", Conversion: 1, Price: 18000, BuyPrice: 16000},
				{Name: "Dus", Conversion: 12, Price: 205000, BuyPrice: 188000},
			},
		},
		{
			ID: "prd-demo-indomie", Name: "Indomie Goreng", SKU: "IDM-001",
			Category: "Makanan Instan", BaseUnit: "Pcs", Stock: 400, MinStockAlert: 40,
			Units: []domain.ProductUnit{
				{Name: "Pcs", Conversion: 1, Price: 3500, BuyPrice: 2900},
				{Name: "Dus", Conversion: 40, Price: 128000, BuyPrice: 112000},
			},
		},
		{
			ID: "prd-demo-gula", Name: "Gula Pasir 1kg", SKU: "GLA-001",
			Category: "Sembako", BaseUnit: "Kg", Stock: 60, MinStockAlert: 12,
			Units: []domain.ProductUnit{
				{Name: "Kg", Conversion: 1, Price: 17500, BuyPrice: 15500},
			},
		},
	}
	for _, p := range products {
		p.Version = 1
		p.UpdatedAt = now
		t.products[p.ID] = p
	}

	customers := []domain.Customer{
		{
			ID: "cus-demo-budi", Name: "Budi Santoso", Phone: "081234567890",
			Tier: domain.TierGold, IsMember: true, MemberID: "WRG-0001",
			TotalSpent: 2500000, PointsBalance: 180,
		},
		{
			ID: "cus-demo-siti", Name: "Siti Aminah", Phone: "081298765432",
			Tier: domain.TierBronze, IsMember: false,
			TotalSpent: 150000, DebtBalance: 25000,
		},
	}
	for _, c := range customers {
		c.JoinedAt = now
		c.Version = 1
		c.UpdatedAt = now
		t.customers[c.ID] = c
	}

	suppliers := []domain.Supplier{
		{ID: "sup-demo-sembako", Name: "PT Sumber Sembako", Contact: "021-555-0134", UpdatedAt: now},
	}
	for _, sp := range suppliers {
		t.suppliers[sp.ID] = sp
	}

	rewards := []domain.PointReward{
		{ID: "rwd-demo-kopi", Name: "Kopi Sachet Gratis", PointsNeeded: 50, Stock: 20},
		{ID: "rwd-demo-minyak", Name: "Minyak Goreng 1L Gratis", PointsNeeded: 200, Stock: 5},
	}
	for _, r := range rewards {
		r.Version = 1
		r.UpdatedAt = now
		t.rewards[r.ID] = r
	}
}
