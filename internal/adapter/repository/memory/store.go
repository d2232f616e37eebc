// Package memory is an in-process store. It is safe for concurrent use and
// loses its data on restart; use the postgres store for persistence.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

var (
	// ErrForeignTransaction is returned when a repository receives a
	// transaction it did not begin.
	ErrForeignTransaction = errors.New("memory: transaction not started by this store")
	// ErrTxDone is returned when committing a finished transaction.
	ErrTxDone = errors.New("memory: transaction already committed or rolled back")
)

// Store holds every table of the in-memory backend.
type Store struct {
	mu        sync.RWMutex
	comandas  map[string]*domain.Comanda
	transfers []*domain.TransferRecord
	rates     []*domain.ExchangeRate
	outbox    []*domain.OutboxEvent

	boxMu sync.Mutex
	boxes map[domain.CashBox]*sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		comandas: make(map[string]*domain.Comanda),
		boxes:    make(map[domain.CashBox]*sync.Mutex),
	}
}

// op is a buffered write. check runs for every op before any apply, so a
// failing check leaves the store untouched.
type op struct {
	check func() error
	apply func()
}

// Tx buffers writes until Commit.
type Tx struct {
	store   *Store
	ops     []op
	unlocks []func()
	held    map[domain.CashBox]bool
	done    bool
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{store: m.store}, nil
}

// Commit applies the buffered writes atomically.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}

	defer t.finish()

	if err := ctx.Err(); err != nil {
		return err
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for _, o := range t.ops {
		if o.check == nil {
			continue
		}

		if err := o.check(); err != nil {
			return err
		}
	}

	for _, o := range t.ops {
		o.apply()
	}

	return nil
}

// Rollback discards the buffered writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}

	t.finish()

	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.ops = nil

	for i := len(t.unlocks) - 1; i >= 0; i-- {
		t.unlocks[i]()
	}

	t.unlocks = nil
}

func (t *Tx) add(check func() error, apply func()) {
	t.ops = append(t.ops, op{check: check, apply: apply})
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx == nil {
		return nil, ErrForeignTransaction
	}

	if mtx.done {
		return nil, ErrTxDone
	}

	return mtx, nil
}

// lockBox holds the cash box mutex until the transaction ends.
func (s *Store) lockBox(ctx context.Context, t *Tx, box domain.CashBox) error {
	if t.held[box] {
		return nil
	}

	s.boxMu.Lock()
	m, ok := s.boxes[box]
	if !ok {
		m = &sync.Mutex{}
		s.boxes[box] = m
	}
	s.boxMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.Lock()
	t.unlocks = append(t.unlocks, m.Unlock)

	if t.held == nil {
		t.held = make(map[domain.CashBox]bool)
	}

	t.held[box] = true

	return nil
}
