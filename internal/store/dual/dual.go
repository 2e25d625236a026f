// Package dual wraps the local store with a best-effort remote mirror and
// the change feed. Reads and writes are served synchronously by the local
// store; after each committed write, the record is queued for the replica
// and a change event is published. A replica outage never fails a commit.
package dual

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/feed"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/store"
)

const (
	mirrorQueueSize = 256
	mirrorTimeout   = 10 * time.Second
)

// settingsRecordID is the fixed id under which the single settings document
// of a warung is mirrored.
const settingsRecordID = "default"

type mirrorOp struct {
	warungID string
	entity   store.EntityType
	id       string
	version  int64
	doc      []byte
	delete   bool
}

// Store is a store.Store backed by a local store, mirroring to an optional
// replica and publishing change events.
type Store struct {
	local   store.Store
	replica store.Replica
	pub     feed.Publisher

	queue chan mirrorOp
	done  chan struct{}
	wg    sync.WaitGroup
}

// New wraps local. replica may be nil (no mirroring); pub may be nil (no
// feed). Close must be called to drain the mirror queue.
func New(local store.Store, replica store.Replica, pub feed.Publisher) *Store {
	if pub == nil {
		pub = feed.Noop{}
	}
	s := &Store{
		local:   local,
		replica: replica,
		pub:     pub,
		queue:   make(chan mirrorOp, mirrorQueueSize),
		done:    make(chan struct{}),
	}
	if replica != nil {
		s.wg.Add(1)
		go s.mirrorLoop()
	}
	return s
}

// Close stops accepting mirror work and waits for the queue to drain.
func (s *Store) Close() {
	close(s.done)
	s.wg.Wait()
}

// mirrorLoop applies queued writes to the replica one at a time, preserving
// commit order. Failures are logged and counted; the write is dropped.
func (s *Store) mirrorLoop() {
	defer s.wg.Done()
	for {
		select {
		case op := <-s.queue:
			s.applyMirror(op)
		case <-s.done:
			for {
				select {
				case op := <-s.queue:
					s.applyMirror(op)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) applyMirror(op mirrorOp) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()
	var err error
	if op.delete {
		err = s.replica.DeleteRecord(ctx, op.warungID, op.entity, op.id)
	} else {
		err = s.replica.UpsertRecord(ctx, op.warungID, op.entity, op.id, op.version, op.doc)
	}
	if err != nil {
		metrics.MirrorFailures.Inc()
		log.Printf("[dual] mirror %s %s/%s failed: %v", op.warungID, op.entity, op.id, err)
	}
}

// committed is called after every successful local write.
func (s *Store) committed(ctx context.Context, warungID string, entity store.EntityType, id string, version int64, record any) {
	if s.replica != nil {
		op := mirrorOp{warungID: warungID, entity: entity, id: id, version: version, delete: record == nil}
		if record != nil {
			doc, err := json.Marshal(record)
			if err != nil {
				log.Printf("[dual] marshal %s/%s: %v", entity, id, err)
				return
			}
			op.doc = doc
		}
		select {
		case s.queue <- op:
		default:
			metrics.MirrorDropped.Inc()
			log.Printf("[dual] mirror queue full, dropped %s/%s", entity, id)
		}
	}
	s.pub.Publish(ctx, feed.NewEvent(warungID, entity))
}

func (s *Store) ListProducts(ctx context.Context, warungID string) ([]domain.Product, error) {
	return s.local.ListProducts(ctx, warungID)
}

func (s *Store) GetProduct(ctx context.Context, warungID, id string) (*domain.Product, error) {
	return s.local.GetProduct(ctx, warungID, id)
}

func (s *Store) PutProduct(ctx context.Context, warungID string, p domain.Product) (*domain.Product, error) {
	saved, err := s.local.PutProduct(ctx, warungID, p)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, warungID, store.EntityProducts, saved.ID, saved.Version, saved)
	return saved, nil
}

func (s *Store) DeleteProduct(ctx context.Context, warungID, id string) error {
	if err := s.local.DeleteProduct(ctx, warungID, id); err != nil {
		return err
	}
	s.committed(ctx, warungID, store.EntityProducts, id, 0, nil)
	return nil
}

func (s *Store) ListCustomers(ctx context.Context, warungID string) ([]domain.Customer, error) {
	return s.local.ListCustomers(ctx, warungID)
}

func (s *Store) GetCustomer(ctx context.Context, warungID, id string) (*domain.Customer, error) {
	return s.local.GetCustomer(ctx, warungID, id)
}

func (s *Store) PutCustomer(ctx context.Context, warungID string, c domain.Customer) (*domain.Customer, error) {
	saved, err := s.local.PutCustomer(ctx, warungID, c)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, warungID, store.EntityCustomers, saved.ID, saved.Version, saved)
	return saved, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, warungID, id string) error {
	if err := s.local.DeleteCustomer(ctx, warungID, id); err != nil {
		return err
	}
	s.committed(ctx, warungID, store.EntityCustomers, id, 0, nil)
	return nil
}

func (s *Store) ListPointRewards(ctx context.Context, warungID string) ([]domain.PointReward, error) {
	return s.local.ListPointRewards(ctx, warungID)
}

func (s *Store) GetPointReward(ctx context.Context, warungID, id string) (*domain.PointReward, error) {
	return s.local.GetPointReward(ctx, warungID, id)
}

func (s *Store) PutPointReward(ctx context.Context, warungID string, r domain.PointReward) (*domain.PointReward, error) {
	saved, err := s.local.PutPointReward(ctx, warungID, r)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, warungID, store.EntityPointRewards, saved.ID, saved.Version, saved)
	return saved, nil
}

func (s *Store) DeletePointReward(ctx context.Context, warungID, id string) error {
	if err := s.local.DeletePointReward(ctx, warungID, id); err != nil {
		return err
	}
	s.committed(ctx, warungID, store.EntityPointRewards, id, 0, nil)
	return nil
}

func (s *Store) ListSuppliers(ctx context.Context, warungID string) ([]domain.Supplier, error) {
	return s.local.ListSuppliers(ctx, warungID)
}

func (s *Store) GetSupplier(ctx context.Context, warungID, id string) (*domain.Supplier, error) {
	return s.local.GetSupplier(ctx, warungID, id)
}

func (s *Store) PutSupplier(ctx context.Context, warungID string, sp domain.Supplier) (*domain.Supplier, error) {
	saved, err := s.local.PutSupplier(ctx, warungID, sp)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, warungID, store.EntitySuppliers, saved.ID, 0, saved)
	return saved, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, warungID, id string) error {
	if err := s.local.DeleteSupplier(ctx, warungID, id); err != nil {
		return err
	}
	s.committed(ctx, warungID, store.EntitySuppliers, id, 0, nil)
	return nil
}

func (s *Store) AppendTransaction(ctx context.Context, warungID string, tx domain.Transaction) error {
	if err := s.local.AppendTransaction(ctx, warungID, tx); err != nil {
		return err
	}
	s.committed(ctx, warungID, store.EntityTransactions, tx.ID, 0, tx)
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, warungID, id string) (*domain.Transaction, error) {
	return s.local.GetTransaction(ctx, warungID, id)
}

func (s *Store) ListTransactions(ctx context.Context, warungID string, limit int) ([]domain.Transaction, error) {
	return s.local.ListTransactions(ctx, warungID, limit)
}

func (s *Store) AppendProcurement(ctx context.Context, warungID string, p domain.Procurement) error {
	if err := s.local.AppendProcurement(ctx, warungID, p); err != nil {
		return err
	}
	s.committed(ctx, warungID, store.EntityProcurements, p.ID, 0, p)
	return nil
}

func (s *Store) ListProcurements(ctx context.Context, warungID string, limit int) ([]domain.Procurement, error) {
	return s.local.ListProcurements(ctx, warungID, limit)
}

func (s *Store) AppendDebtPayment(ctx context.Context, warungID string, p domain.DebtPayment) error {
	if err := s.local.AppendDebtPayment(ctx, warungID, p); err != nil {
		return err
	}
	s.committed(ctx, warungID, store.EntityDebtPayments, p.ID, 0, p)
	return nil
}

func (s *Store) ListDebtPayments(ctx context.Context, warungID string, limit int) ([]domain.DebtPayment, error) {
	return s.local.ListDebtPayments(ctx, warungID, limit)
}

func (s *Store) AppendPointHistory(ctx context.Context, warungID string, h domain.PointHistory) error {
	if err := s.local.AppendPointHistory(ctx, warungID, h); err != nil {
		return err
	}
	s.committed(ctx, warungID, store.EntityPointHistory, h.ID, 0, h)
	return nil
}

func (s *Store) ListPointHistory(ctx context.Context, warungID, customerID string, limit int) ([]domain.PointHistory, error) {
	return s.local.ListPointHistory(ctx, warungID, customerID, limit)
}

func (s *Store) GetSettings(ctx context.Context, warungID string) (domain.AppSettings, error) {
	return s.local.GetSettings(ctx, warungID)
}

func (s *Store) PutSettings(ctx context.Context, warungID string, set domain.AppSettings) (*domain.AppSettings, error) {
	saved, err := s.local.PutSettings(ctx, warungID, set)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, warungID, store.EntitySettings, settingsRecordID, saved.Version, saved)
	return saved, nil
}
