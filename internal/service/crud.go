package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"warungpos/backend/internal/domain"
)

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListProducts(ctx, actor.WarungID)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetProduct(ctx, actor.WarungID, id)
}

// LowStockProducts returns products at or below their alert threshold.
func (s *Service) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]domain.Product, 0)
	for _, p := range products {
		if p.LowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}

// SaveProduct creates or updates a catalog record. Owner only; stock edits
// through here are direct corrections, not ledger movements.
func (s *Service) SaveProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, domain.Invalid(domain.CodeInvalidCart, "product name is required")
	}
	if len(p.Units) == 0 {
		return nil, domain.Invalid(domain.CodeInvalidCart, "product needs at least one unit")
	}
	for _, u := range p.Units {
		if u.Conversion < 1 {
			return nil, domain.Invalid(domain.CodeInvalidCart, "unit conversion must be at least 1")
		}
		if u.Price < 0 || u.BuyPrice < 0 {
			return nil, domain.Invalid(domain.CodeInvalidAmount, "unit prices must not be negative")
		}
	}
	return s.store.PutProduct(ctx, actor.WarungID, p)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return err
	}
	return s.store.DeleteProduct(ctx, actor.WarungID, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListCustomers(ctx, actor.WarungID)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetCustomer(ctx, actor.WarungID, id)
}

// SaveCustomer creates or updates a customer. Staff may register walk-ins
// as members at the counter, so this is not owner-gated.
func (s *Service) SaveCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Name) == "" {
		return nil, domain.Invalid(domain.CodeInvalidCart, "customer name is required")
	}
	if c.Tier == "" {
		c.Tier = domain.TierBronze
	}
	return s.store.PutCustomer(ctx, actor.WarungID, c)
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return err
	}
	return s.store.DeleteCustomer(ctx, actor.WarungID, id)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListSuppliers(ctx, actor.WarungID)
}

func (s *Service) SaveSupplier(ctx context.Context, sp domain.Supplier) (*domain.Supplier, error) {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sp.Name) == "" {
		return nil, domain.Invalid(domain.CodeInvalidCart, "supplier name is required")
	}
	return s.store.PutSupplier(ctx, actor.WarungID, sp)
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return err
	}
	return s.store.DeleteSupplier(ctx, actor.WarungID, id)
}

func (s *Service) ListPointRewards(ctx context.Context) ([]domain.PointReward, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListPointRewards(ctx, actor.WarungID)
}

func (s *Service) SavePointReward(ctx context.Context, r domain.PointReward) (*domain.PointReward, error) {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, domain.Invalid(domain.CodeInvalidCart, "reward name is required")
	}
	if r.PointsNeeded <= 0 {
		return nil, domain.Invalid(domain.CodeInvalidAmount, "reward cost must be positive")
	}
	if r.Stock < 0 {
		return nil, domain.Invalid(domain.CodeInvalidAmount, "reward stock must not be negative")
	}
	return s.store.PutPointReward(ctx, actor.WarungID, r)
}

func (s *Service) DeletePointReward(ctx context.Context, id string) error {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return err
	}
	return s.store.DeletePointReward(ctx, actor.WarungID, id)
}

func (s *Service) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, actor.WarungID, limit)
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetTransaction(ctx, actor.WarungID, id)
}

func (s *Service) ListProcurements(ctx context.Context, limit int) ([]domain.Procurement, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListProcurements(ctx, actor.WarungID, limit)
}

func (s *Service) ListDebtPayments(ctx context.Context, limit int) ([]domain.DebtPayment, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListDebtPayments(ctx, actor.WarungID, limit)
}

func (s *Service) ListPointHistory(ctx context.Context, customerID string, limit int) ([]domain.PointHistory, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListPointHistory(ctx, actor.WarungID, customerID, limit)
}

func (s *Service) GetSettings(ctx context.Context) (domain.AppSettings, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return domain.AppSettings{}, err
	}
	settings, err := s.store.GetSettings(ctx, actor.WarungID)
	if err != nil {
		return domain.AppSettings{}, err
	}
	// The hash never leaves the service layer.
	settings.SecurityPINHash = ""
	return settings, nil
}

// SaveSettings replaces the tenant settings. The stored PIN hash is
// preserved; it only changes through SetSecurityPIN.
func (s *Service) SaveSettings(ctx context.Context, set domain.AppSettings) (*domain.AppSettings, error) {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if set.PointValue <= 0 {
		return nil, domain.Invalid(domain.CodeInvalidAmount, "point value must be positive")
	}
	current, err := s.store.GetSettings(ctx, actor.WarungID)
	if err != nil {
		return nil, err
	}
	set.SecurityPINHash = current.SecurityPINHash
	saved, err := s.store.PutSettings(ctx, actor.WarungID, set)
	if err != nil {
		return nil, err
	}
	out := *saved
	out.SecurityPINHash = ""
	return &out, nil
}

// SetSecurityPIN stores a bcrypt hash of the owner's PIN.
func (s *Service) SetSecurityPIN(ctx context.Context, pin string) error {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return err
	}
	pin = strings.TrimSpace(pin)
	if len(pin) < 6 {
		return domain.Invalid(domain.CodeInvalidAmount, "PIN must be at least 6 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	current, err := s.store.GetSettings(ctx, actor.WarungID)
	if err != nil {
		return err
	}
	current.SecurityPINHash = string(hash)
	_, err = s.store.PutSettings(ctx, actor.WarungID, current)
	return err
}

// VerifySecurityPIN checks a PIN against the stored hash. False when no PIN
// has been set.
func (s *Service) VerifySecurityPIN(ctx context.Context, pin string) (bool, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return false, err
	}
	settings, err := s.store.GetSettings(ctx, actor.WarungID)
	if err != nil {
		return false, err
	}
	if settings.SecurityPINHash == "" {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(settings.SecurityPINHash), []byte(strings.TrimSpace(pin))) == nil, nil
}
