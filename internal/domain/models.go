package domain

import (
	"fmt"
	"time"
)

// Monetary amounts are whole rupiah stored as int64. Stock is tracked in
// base units of the product (see ProductUnit.Conversion).

// CustomerTier determines the discount rate and point multiplier applied at
// checkout.
type CustomerTier string

const (
	TierBronze CustomerTier = "Bronze"
	TierSilver CustomerTier = "Silver"
	TierGold   CustomerTier = "Gold"
)

// User roles carried in auth tokens.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// PaymentMethod is the resolved tender method recorded on a transaction.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentQris  PaymentMethod = "qris"
	PaymentDebt  PaymentMethod = "debt"
	PaymentSplit PaymentMethod = "split"
)

// PointHistoryType marks the direction of a loyalty point movement.
type PointHistoryType string

const (
	PointEarn   PointHistoryType = "earn"
	PointRedeem PointHistoryType = "redeem"
)

// ProductUnit is a sellable unit of a product. Conversion is the number of
// base units one such unit represents (e.g. Dus with conversion 40).
type ProductUnit struct {
	Name       string `json:"name"`
	Conversion int64  `json:"conversion"`
	Price      int64  `json:"price"`
	BuyPrice   int64  `json:"buyPrice"`
}

// Product is a mutable catalog record. Stock is always in base units and is
// only ever changed by sale deductions, procurement increases, or an owner
// edit. Version implements optimistic concurrency on saves.
type Product struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	SKU           string        `json:"sku"`
	Category      string        `json:"category"`
	BaseUnit      string        `json:"baseUnit"`
	Stock         int64         `json:"stock"`
	MinStockAlert int64         `json:"minStockAlert"`
	Units         []ProductUnit `json:"units"`
	SupplierID    string        `json:"supplierId,omitempty"`
	Version       int64         `json:"version"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// LowStock reports whether the product is at or below its alert threshold.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStockAlert
}

// Customer is a mutable customer record. TotalSpent, DebtBalance and
// PointsBalance are ledger-maintained aggregates.
type Customer struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Phone         string       `json:"phone,omitempty"`
	Tier          CustomerTier `json:"tier"`
	TotalSpent    int64        `json:"totalSpent"`
	DebtBalance   int64        `json:"debtBalance"`
	IsMember      bool         `json:"isMember"`
	PointsBalance int64        `json:"pointsBalance"`
	MemberID      string       `json:"memberId,omitempty"`
	JoinedAt      time.Time    `json:"joinedAt"`
	Version       int64        `json:"version"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// CartItem is one line of a sale, resolved to a concrete product unit at the
// moment of checkout. Conversion is copied from the unit so the fact stays
// replayable even after the product changes.
type CartItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	UnitName    string `json:"unitName"`
	Conversion  int64  `json:"conversion"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

// BaseUnits returns the stock deduction this line causes.
func (i CartItem) BaseUnits() int64 {
	return i.Quantity * i.Conversion
}

// Transaction is an immutable sale fact. Payment fields are fully resolved:
// CashPaid, Change and DebtAmount are stored explicitly for every method so
// the record needs no reinterpretation on replay.
type Transaction struct {
	ID             string        `json:"id"`
	WarungID       string        `json:"warungId"`
	Timestamp      time.Time     `json:"timestamp"`
	Items          []CartItem    `json:"items"`
	Subtotal       int64         `json:"subtotal"`
	DiscountAmount int64         `json:"discountAmount"`
	TotalAmount    int64         `json:"totalAmount"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	CashPaid       int64         `json:"cashPaid"`
	Change         int64         `json:"change"`
	DebtAmount     int64         `json:"debtAmount"`
	CustomerID     string        `json:"customerId,omitempty"`
	CustomerName   string        `json:"customerName,omitempty"`
	PointsEarned   int64         `json:"pointsEarned"`
	CashierUID     string        `json:"cashierUid,omitempty"`
	Note           string        `json:"note,omitempty"`
}

// ProcurementItem is one line of a stock purchase. Quantity is already in
// base units of the product.
type ProcurementItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
	BuyPrice    int64  `json:"buyPrice"`
	Total       int64  `json:"total"`
}

// Procurement is an immutable stock purchase fact.
type Procurement struct {
	ID           string            `json:"id"`
	WarungID     string            `json:"warungId"`
	SupplierID   string            `json:"supplierId,omitempty"`
	SupplierName string            `json:"supplierName,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
	Items        []ProcurementItem `json:"items"`
	TotalAmount  int64             `json:"totalAmount"`
	Note         string            `json:"note,omitempty"`
}

// DebtPayment is an immutable debt repayment fact.
type DebtPayment struct {
	ID           string    `json:"id"`
	WarungID     string    `json:"warungId"`
	CustomerID   string    `json:"customerId"`
	CustomerName string    `json:"customerName"`
	Amount       int64     `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
	Note         string    `json:"note,omitempty"`
}

// PointReward is a redeemable reward with its own stock counter.
type PointReward struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PointsNeeded int64     `json:"pointsNeeded"`
	Stock        int64     `json:"stock"`
	Version      int64     `json:"version"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PointHistory is an immutable record of a point earn or redemption.
// ReferenceID links earns to the transaction and redemptions to the reward.
type PointHistory struct {
	ID           string           `json:"id"`
	WarungID     string           `json:"warungId"`
	CustomerID   string           `json:"customerId"`
	CustomerName string           `json:"customerName"`
	Type         PointHistoryType `json:"type"`
	Points       int64            `json:"points"`
	ReferenceID  string           `json:"referenceId,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

// Supplier is a plain contact record.
type Supplier struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Contact     string    `json:"contact,omitempty"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TierRates holds one number per customer tier.
type TierRates struct {
	Bronze float64 `json:"bronze"`
	Silver float64 `json:"silver"`
	Gold   float64 `json:"gold"`
}

// For returns the rate configured for the given tier. Unknown tiers fall
// back to Bronze.
func (r TierRates) For(tier CustomerTier) float64 {
	switch tier {
	case TierSilver:
		return r.Silver
	case TierGold:
		return r.Gold
	default:
		return r.Bronze
	}
}

// AppSettings is the per-warung configuration. Version implements optimistic
// concurrency the same way Product does.
type AppSettings struct {
	StoreName       string    `json:"storeName"`
	StoreAddress    string    `json:"storeAddress,omitempty"`
	StorePhone      string    `json:"storePhone,omitempty"`
	FooterMessage   string    `json:"footerMessage,omitempty"`
	TierDiscounts   TierRates `json:"tierDiscounts"`
	EnablePoints    bool      `json:"enablePoints"`
	PointValue      int64     `json:"pointValue"`
	TierMultipliers TierRates `json:"tierMultipliers"`
	SecurityPINHash string    `json:"securityPinHash,omitempty"`
	Version         int64     `json:"version"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DefaultSettings returns the settings a fresh warung starts with.
func DefaultSettings() AppSettings {
	return AppSettings{
		StoreName:     "Warung Saya",
		FooterMessage: "Terima kasih atas kunjungan Anda!",
		TierDiscounts: TierRates{
			Bronze: 0,
			Silver: 2,
			Gold:   5,
		},
		EnablePoints: true,
		PointValue:   1000,
		TierMultipliers: TierRates{
			Bronze: 1,
			Silver: 1.2,
			Gold:   1.5,
		},
	}
}

// Actor is the authenticated principal performing an operation. WarungID
// scopes every store access to one tenant.
type Actor struct {
	UID      string `json:"uid"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	WarungID string `json:"warungId"`
}

// Tender is the payment intent a cashier submits with a cart. Each method is
// its own type so invalid combinations (a tendered amount on a QRIS sale, a
// partial cash figure on a plain debt sale) cannot be expressed.
type Tender interface {
	Method() PaymentMethod
}

// CashTender pays the full total in cash. Tendered must cover the total;
// change is returned for the difference.
type CashTender struct {
	Tendered int64 `json:"tendered"`
}

func (CashTender) Method() PaymentMethod { return PaymentCash }

// QrisTender pays the exact total electronically.
type QrisTender struct{}

func (QrisTender) Method() PaymentMethod { return PaymentQris }

// DebtTender puts the full total on the customer's tab.
type DebtTender struct{}

func (DebtTender) Method() PaymentMethod { return PaymentDebt }

// SplitTender pays CashPaid now and puts the remainder on the tab.
type SplitTender struct {
	CashPaid int64 `json:"cashPaid"`
}

func (SplitTender) Method() PaymentMethod { return PaymentSplit }

// CheckoutRequest is a sale submitted by a cashier. TransactionID is the
// client-generated id used for idempotent re-submission; when empty the
// server assigns one.
type CheckoutRequest struct {
	TransactionID string
	Items         []CartItem
	CustomerID    string
	Tender        Tender
	Note          string
}

// CartQuote is the priced view of a cart before payment.
type CartQuote struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discountAmount"`
	Total          int64 `json:"total"`
	PointsEarned   int64 `json:"pointsEarned"`
}

// CheckoutResult is the outcome of a committed (or replayed) checkout.
// Duplicate is true when the transaction id had already been committed and
// the stored fact is returned unchanged. SkippedProducts lists cart lines
// whose product no longer existed when stock was deducted.
type CheckoutResult struct {
	Transaction     Transaction `json:"transaction"`
	Quote           CartQuote   `json:"quote"`
	Duplicate       bool        `json:"duplicate"`
	SkippedProducts []string    `json:"skippedProducts,omitempty"`
}

// ProcurementRequest records incoming stock from a supplier.
type ProcurementRequest struct {
	SupplierID string
	Items      []ProcurementItem
	Note       string
}

// ProcurementResult pairs the stored fact with any catalog lines that were
// skipped because the product no longer existed.
type ProcurementResult struct {
	Procurement     Procurement `json:"procurement"`
	SkippedProducts []string    `json:"skippedProducts,omitempty"`
}

// DebtPaymentRequest records a repayment against a customer's balance.
type DebtPaymentRequest struct {
	CustomerID string
	Amount     int64
	Note       string
}

// RedemptionResult is the outcome of a successful reward redemption.
type RedemptionResult struct {
	Customer Customer     `json:"customer"`
	Reward   PointReward  `json:"reward"`
	History  PointHistory `json:"history"`
}

// Validation reason codes returned to clients alongside the message.
const (
	CodeInvalidCart         = "invalid_cart"
	CodeInvalidAmount       = "invalid_amount"
	CodeInsufficientPayment = "insufficient_payment"
	CodeCustomerRequired    = "customer_required"
	CodeInsufficientPoints  = "insufficient_points"
	CodeRewardOutOfStock    = "reward_out_of_stock"
	CodeNotMember           = "not_member"
)

// ValidationError rejects an operation before any state is touched.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError with a formatted message.
func Invalid(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}
