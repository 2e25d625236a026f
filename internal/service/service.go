// Package service is the transaction orchestrator. It prices carts,
// validates tenders, commits immutable facts, and drives the ledgers in a
// fixed order: fact first, then stock, then one combined customer update.
// Under the non-atomic store this ordering keeps any partial failure
// re-derivable from the facts.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/ledger"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

type actorContextKey struct{}

// WithActor attaches the authenticated actor to the context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor attached by WithActor.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// ErrForbidden is returned when the actor's role does not allow an
// operation.
var ErrForbidden = errors.New("operation not allowed for role")

const maxCustomerRetries = 5

// Service orchestrates sales, procurements, repayments and redemptions
// against the store, and owns all CRUD entry points.
type Service struct {
	store   store.Store
	catalog *ledger.Catalog
	debt    *ledger.Debt
	loyalty *ledger.Loyalty
}

func New(st store.Store) *Service {
	return &Service{
		store:   st,
		catalog: ledger.NewCatalog(st),
		debt:    ledger.NewDebt(st),
		loyalty: ledger.NewLoyalty(st),
	}
}

func (s *Service) actorFrom(ctx context.Context) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.WarungID == "" {
		return domain.Actor{}, errors.New("no actor in context")
	}
	return actor, nil
}

func (s *Service) ownerFrom(ctx context.Context) (domain.Actor, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return domain.Actor{}, err
	}
	if actor.Role != domain.RoleOwner {
		return domain.Actor{}, ErrForbidden
	}
	return actor, nil
}

// PreviewCart prices a cart without committing anything. The same pricing
// path backs Checkout, so the preview always matches the committed totals.
func (s *Service) PreviewCart(ctx context.Context, items []domain.CartItem, customerID string) (*domain.CartQuote, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateCart(items); err != nil {
		return nil, err
	}
	customer, err := s.optionalCustomer(ctx, actor.WarungID, customerID)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettings(ctx, actor.WarungID)
	if err != nil {
		return nil, err
	}
	quote := priceCart(items, customer, settings)
	return &quote, nil
}

// Checkout commits a sale. Resubmitting the same client transaction id
// returns the stored fact with Duplicate set and changes nothing.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateCart(req.Items); err != nil {
		return nil, err
	}
	if req.Tender == nil {
		return nil, domain.Invalid(domain.CodeInvalidCart, "checkout requires a tender")
	}

	if req.TransactionID != "" {
		existing, err := s.store.GetTransaction(ctx, actor.WarungID, req.TransactionID)
		if err == nil {
			return duplicateResult(existing), nil
		}
		if err != store.ErrNotFound {
			return nil, err
		}
	}

	customer, err := s.optionalCustomer(ctx, actor.WarungID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettings(ctx, actor.WarungID)
	if err != nil {
		return nil, err
	}

	items := finalizeItems(req.Items)
	quote := priceCart(items, customer, settings)

	payment, err := resolveTender(req.Tender, quote.Total, customer)
	if err != nil {
		return nil, err
	}

	tx := domain.Transaction{
		ID:             req.TransactionID,
		WarungID:       actor.WarungID,
		Timestamp:      time.Now().UTC(),
		Items:          items,
		Subtotal:       quote.Subtotal,
		DiscountAmount: quote.DiscountAmount,
		TotalAmount:    quote.Total,
		PaymentMethod:  payment.method,
		CashPaid:       payment.cashPaid,
		Change:         payment.change,
		DebtAmount:     payment.debtAmount,
		PointsEarned:   quote.PointsEarned,
		CashierUID:     actor.UID,
		Note:           req.Note,
	}
	if tx.ID == "" {
		tx.ID = xid.New("tx")
	}
	if customer != nil {
		tx.CustomerID = customer.ID
		tx.CustomerName = customer.Name
	}

	// Commit order: the fact is durable before any aggregate moves, so a
	// crash mid-commit leaves state that replaying the fact can complete.
	if err := s.store.AppendTransaction(ctx, actor.WarungID, tx); err != nil {
		if err == store.ErrDuplicateFact {
			existing, gerr := s.store.GetTransaction(ctx, actor.WarungID, tx.ID)
			if gerr != nil {
				return nil, gerr
			}
			return duplicateResult(existing), nil
		}
		return nil, err
	}

	skipped, err := s.catalog.ApplySale(ctx, actor.WarungID, tx.Items)
	if err != nil {
		return nil, err
	}

	if customer != nil {
		if err := s.applyCustomerEffects(ctx, actor.WarungID, tx); err != nil {
			return nil, err
		}
	}

	metrics.SalesCommitted.Inc()
	log.Printf("[service] checkout warung=%s tx=%s total=%d method=%s cashier=%s",
		actor.WarungID, tx.ID, tx.TotalAmount, tx.PaymentMethod, actor.UID)

	return &domain.CheckoutResult{
		Transaction:     tx,
		Quote:           quote,
		SkippedProducts: skipped,
	}, nil
}

// applyCustomerEffects folds spend, credit and earned points into the
// customer and saves once, then appends the earn history entry.
func (s *Service) applyCustomerEffects(ctx context.Context, warungID string, tx domain.Transaction) error {
	for attempt := 0; attempt < maxCustomerRetries; attempt++ {
		c, err := s.store.GetCustomer(ctx, warungID, tx.CustomerID)
		if err != nil {
			return err
		}
		ledger.ApplySpend(c, tx.TotalAmount)
		if tx.DebtAmount > 0 {
			ledger.ExtendCredit(c, tx.DebtAmount)
		}
		hist := ledger.ApplyEarn(warungID, c, tx.PointsEarned, tx.ID)
		if _, err := s.store.PutCustomer(ctx, warungID, *c); err != nil {
			if err == store.ErrVersionConflict {
				metrics.VersionConflictRetries.Inc()
				continue
			}
			return err
		}
		if hist != nil {
			if err := s.store.AppendPointHistory(ctx, warungID, *hist); err != nil {
				return err
			}
			metrics.PointsEarned.Add(float64(hist.Points))
		}
		return nil
	}
	return fmt.Errorf("update customer %s: %w", tx.CustomerID, store.ErrVersionConflict)
}

// RecordProcurement commits a stock purchase and applies it to the catalog.
func (s *Service) RecordProcurement(ctx context.Context, req domain.ProcurementRequest) (*domain.ProcurementResult, error) {
	actor, err := s.ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, domain.Invalid(domain.CodeInvalidCart, "procurement requires at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, domain.Invalid(domain.CodeInvalidAmount, "procurement quantity must be positive")
		}
		if item.BuyPrice < 0 {
			return nil, domain.Invalid(domain.CodeInvalidAmount, "buy price must not be negative")
		}
	}

	p := domain.Procurement{
		ID:         xid.New("prc"),
		WarungID:   actor.WarungID,
		SupplierID: req.SupplierID,
		Timestamp:  time.Now().UTC(),
		Items:      make([]domain.ProcurementItem, len(req.Items)),
		Note:       req.Note,
	}
	if req.SupplierID != "" {
		supplier, err := s.store.GetSupplier(ctx, actor.WarungID, req.SupplierID)
		if err != nil {
			return nil, err
		}
		p.SupplierName = supplier.Name
	}
	for i, item := range req.Items {
		if item.Total == 0 {
			item.Total = item.Quantity * item.BuyPrice
		}
		p.Items[i] = item
		p.TotalAmount += item.Total
	}

	if err := s.store.AppendProcurement(ctx, actor.WarungID, p); err != nil {
		return nil, err
	}
	skipped, err := s.catalog.ApplyProcurement(ctx, actor.WarungID, p.Items)
	if err != nil {
		return nil, err
	}

	metrics.ProcurementsCommitted.Inc()
	log.Printf("[service] procurement warung=%s id=%s total=%d items=%d",
		actor.WarungID, p.ID, p.TotalAmount, len(p.Items))
	return &domain.ProcurementResult{Procurement: p, SkippedProducts: skipped}, nil
}

// RecordDebtPayment commits a repayment fact and applies it to the
// customer's balance. Overpayment is accepted; the balance goes negative
// and reads as store credit.
func (s *Service) RecordDebtPayment(ctx context.Context, req domain.DebtPaymentRequest) (*domain.DebtPayment, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, domain.Invalid(domain.CodeInvalidAmount, "payment amount must be positive")
	}
	customer, err := s.store.GetCustomer(ctx, actor.WarungID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	p := domain.DebtPayment{
		ID:           xid.New("dbt"),
		WarungID:     actor.WarungID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Amount:       req.Amount,
		Timestamp:    time.Now().UTC(),
		Note:         req.Note,
	}
	if err := s.store.AppendDebtPayment(ctx, actor.WarungID, p); err != nil {
		return nil, err
	}
	if _, err := s.debt.ApplyPayment(ctx, actor.WarungID, customer.ID, req.Amount); err != nil {
		return nil, err
	}

	metrics.DebtPaymentsCommitted.Inc()
	log.Printf("[service] debt payment warung=%s customer=%s amount=%d",
		actor.WarungID, customer.ID, req.Amount)
	return &p, nil
}

// RedeemReward exchanges a customer's points for a reward.
func (s *Service) RedeemReward(ctx context.Context, customerID, rewardID string) (*domain.RedemptionResult, error) {
	actor, err := s.actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.loyalty.Redeem(ctx, actor.WarungID, customerID, rewardID)
	if err != nil {
		return nil, err
	}
	log.Printf("[service] redemption warung=%s customer=%s reward=%s points=%d",
		actor.WarungID, customerID, rewardID, result.Reward.PointsNeeded)
	return result, nil
}

func validateCart(items []domain.CartItem) error {
	if len(items) == 0 {
		return domain.Invalid(domain.CodeInvalidCart, "cart is empty")
	}
	for _, item := range items {
		if item.ProductID == "" {
			return domain.Invalid(domain.CodeInvalidCart, "cart item missing product id")
		}
		if item.Quantity <= 0 {
			return domain.Invalid(domain.CodeInvalidCart, "cart quantity must be positive")
		}
		if item.Price < 0 {
			return domain.Invalid(domain.CodeInvalidCart, "cart price must not be negative")
		}
		if item.Conversion < 1 {
			return domain.Invalid(domain.CodeInvalidCart, "cart unit conversion must be at least 1")
		}
	}
	return nil
}

// finalizeItems stamps each line's subtotal so the fact carries the priced
// lines exactly as charged.
func finalizeItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	for i, item := range items {
		item.Subtotal = item.Price * item.Quantity
		out[i] = item
	}
	return out
}

func priceCart(items []domain.CartItem, customer *domain.Customer, settings domain.AppSettings) domain.CartQuote {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Price * item.Quantity
	}
	discount := ledger.DiscountAmount(subtotal, customer, settings)
	total := subtotal - discount
	return domain.CartQuote{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          total,
		PointsEarned:   ledger.EarnedPoints(total, customer, settings),
	}
}

type paymentOutcome struct {
	method     domain.PaymentMethod
	cashPaid   int64
	change     int64
	debtAmount int64
}

// resolveTender turns a tender into the fully resolved payment fields
// recorded on the fact. All rejections happen here, before any write.
func resolveTender(tender domain.Tender, total int64, customer *domain.Customer) (paymentOutcome, error) {
	switch t := tender.(type) {
	case domain.CashTender:
		if t.Tendered < total {
			return paymentOutcome{}, domain.Invalid(domain.CodeInsufficientPayment,
				"cash tendered %d does not cover total %d", t.Tendered, total)
		}
		return paymentOutcome{
			method:   domain.PaymentCash,
			cashPaid: t.Tendered,
			change:   t.Tendered - total,
		}, nil
	case domain.QrisTender:
		return paymentOutcome{method: domain.PaymentQris, cashPaid: total}, nil
	case domain.DebtTender:
		if customer == nil {
			return paymentOutcome{}, domain.Invalid(domain.CodeCustomerRequired,
				"debt sale requires a customer")
		}
		return paymentOutcome{method: domain.PaymentDebt, debtAmount: total}, nil
	case domain.SplitTender:
		if customer == nil {
			return paymentOutcome{}, domain.Invalid(domain.CodeCustomerRequired,
				"split sale requires a customer")
		}
		if t.CashPaid <= 0 || t.CashPaid >= total {
			return paymentOutcome{}, domain.Invalid(domain.CodeInsufficientPayment,
				"split cash %d must be between 0 and total %d", t.CashPaid, total)
		}
		return paymentOutcome{
			method:     domain.PaymentSplit,
			cashPaid:   t.CashPaid,
			debtAmount: total - t.CashPaid,
		}, nil
	default:
		return paymentOutcome{}, domain.Invalid(domain.CodeInvalidCart, "unknown tender type")
	}
}

func (s *Service) optionalCustomer(ctx context.Context, warungID, customerID string) (*domain.Customer, error) {
	if customerID == "" {
		return nil, nil
	}
	return s.store.GetCustomer(ctx, warungID, customerID)
}

func duplicateResult(tx *domain.Transaction) *domain.CheckoutResult {
	return &domain.CheckoutResult{
		Transaction: *tx,
		Quote: domain.CartQuote{
			Subtotal:       tx.Subtotal,
			DiscountAmount: tx.DiscountAmount,
			Total:          tx.TotalAmount,
			PointsEarned:   tx.PointsEarned,
		},
		Duplicate: true,
	}
}
