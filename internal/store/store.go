// Package store defines the persistence contract the ledgers and the
// orchestrator run against. Mutable records (products, customers, rewards,
// settings) are saved with compare-and-swap on their Version field; facts
// (transactions, procurements, debt payments, point history) are append-only.
package store

import (
	"context"
	"errors"

	"warungpos/backend/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist in the tenant.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a save carries a stale Version.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicateFact is returned when an append reuses an existing fact id.
	ErrDuplicateFact = errors.New("duplicate fact id")
)

// EntityType names a persisted collection. Change-feed events and the remote
// replica are keyed by these values.
type EntityType string

const (
	EntityProducts     EntityType = "products"
	EntityCustomers    EntityType = "customers"
	EntitySuppliers    EntityType = "suppliers"
	EntityTransactions EntityType = "transactions"
	EntityProcurements EntityType = "procurements"
	EntityDebtPayments EntityType = "debtPayments"
	EntityPointRewards EntityType = "pointRewards"
	EntityPointHistory EntityType = "pointHistory"
	EntitySettings     EntityType = "settings"
)

// Store is the full persistence surface for one or more warungs. Every call
// is scoped by warungID; no method ever reads or writes across tenants.
//
// Put methods expect the record's Version as read (zero for a new record),
// persist Version+1 with a fresh UpdatedAt, and return the stored copy.
type Store interface {
	ListProducts(ctx context.Context, warungID string) ([]domain.Product, error)
	GetProduct(ctx context.Context, warungID, id string) (*domain.Product, error)
	PutProduct(ctx context.Context, warungID string, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, warungID, id string) error

	ListCustomers(ctx context.Context, warungID string) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, warungID, id string) (*domain.Customer, error)
	PutCustomer(ctx context.Context, warungID string, c domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, warungID, id string) error

	ListPointRewards(ctx context.Context, warungID string) ([]domain.PointReward, error)
	GetPointReward(ctx context.Context, warungID, id string) (*domain.PointReward, error)
	PutPointReward(ctx context.Context, warungID string, r domain.PointReward) (*domain.PointReward, error)
	DeletePointReward(ctx context.Context, warungID, id string) error

	ListSuppliers(ctx context.Context, warungID string) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, warungID, id string) (*domain.Supplier, error)
	PutSupplier(ctx context.Context, warungID string, s domain.Supplier) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, warungID, id string) error

	AppendTransaction(ctx context.Context, warungID string, tx domain.Transaction) error
	GetTransaction(ctx context.Context, warungID, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, warungID string, limit int) ([]domain.Transaction, error)

	AppendProcurement(ctx context.Context, warungID string, p domain.Procurement) error
	ListProcurements(ctx context.Context, warungID string, limit int) ([]domain.Procurement, error)

	AppendDebtPayment(ctx context.Context, warungID string, p domain.DebtPayment) error
	ListDebtPayments(ctx context.Context, warungID string, limit int) ([]domain.DebtPayment, error)

	AppendPointHistory(ctx context.Context, warungID string, h domain.PointHistory) error
	ListPointHistory(ctx context.Context, warungID, customerID string, limit int) ([]domain.PointHistory, error)

	// GetSettings returns the tenant's settings, or DefaultSettings when
	// none have been saved yet.
	GetSettings(ctx context.Context, warungID string) (domain.AppSettings, error)
	PutSettings(ctx context.Context, warungID string, s domain.AppSettings) (*domain.AppSettings, error)
}

// RecordSnapshot is one mirrored record as read back from a replica.
type RecordSnapshot struct {
	ID      string
	Version int64
	Doc     []byte
}

// Loader reads mirrored records back, oldest write first. Used to rebuild
// the local store from the replica on startup.
type Loader interface {
	LoadEntity(ctx context.Context, warungID string, entity EntityType) ([]RecordSnapshot, error)
}

// Replica is the write surface of a remote mirror. The dual store forwards
// every committed local write here asynchronously; failures are logged and
// counted, never surfaced to the caller.
type Replica interface {
	UpsertRecord(ctx context.Context, warungID string, entity EntityType, id string, version int64, doc []byte) error
	DeleteRecord(ctx context.Context, warungID string, entity EntityType, id string) error
}
