package usecase

import (
	"context"
	"sync"

	"github.com/iho/salonledger/internal/domain"
)

// CashBoxLocker serializes writers of the same cash box inside one
// process. Writers of different cash boxes never wait on each other.
// Across processes the store's LockCashBox provides the same guarantee.
type CashBoxLocker struct {
	mu    sync.Mutex
	boxes map[domain.CashBox]chan struct{}
}

// NewCashBoxLocker creates a locker with no boxes held.
func NewCashBoxLocker() *CashBoxLocker {
	return &CashBoxLocker{boxes: make(map[domain.CashBox]chan struct{})}
}

// Lock blocks until box is free or ctx is done. The returned func releases it.
func (l *CashBoxLocker) Lock(ctx context.Context, box domain.CashBox) (func(), error) {
	ch := l.slot(box)

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *CashBoxLocker) slot(box domain.CashBox) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.boxes[box]
	if !ok {
		ch = make(chan struct{}, 1)
		l.boxes[box] = ch
	}

	return ch
}
