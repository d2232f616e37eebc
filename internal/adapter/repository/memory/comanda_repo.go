package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

// ComandaRepository implements usecase.ComandaRepository.
type ComandaRepository struct {
	store *Store
}

// NewComandaRepository creates a new ComandaRepository.
func NewComandaRepository(store *Store) *ComandaRepository {
	return &ComandaRepository{store: store}
}

// Create buffers a new comanda. The (cash box, kind, sequence number)
// uniqueness is checked at commit.
func (r *ComandaRepository) Create(ctx context.Context, tx usecase.Transaction, comanda *domain.Comanda) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	c := comanda.Clone()
	s := r.store

	mtx.add(func() error {
		if _, exists := s.comandas[c.ID]; exists {
			return fmt.Errorf("comanda %s already exists", c.ID)
		}

		for _, existing := range s.comandas {
			if existing.CashBox == c.CashBox && existing.Kind == c.Kind && existing.SequenceNumber == c.SequenceNumber {
				return fmt.Errorf("%w: %s/%s #%d", domain.ErrDuplicateSequenceNumber, c.CashBox, c.Kind, c.SequenceNumber)
			}
		}

		return nil
	}, func() {
		s.comandas[c.ID] = c
	})

	return nil
}

// GetByID retrieves a comanda by ID.
func (r *ComandaRepository) GetByID(ctx context.Context, id string) (*domain.Comanda, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.comandas[id]
	if !ok {
		return nil, domain.ErrComandaNotFound
	}

	return c.Clone(), nil
}

// GetByIDForUpdate retrieves a comanda inside tx. Writers are serialized by
// LockCashBox, so no row lock is needed.
func (r *ComandaRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Comanda, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Update buffers a full replacement of a comanda.
func (r *ComandaRepository) Update(ctx context.Context, tx usecase.Transaction, comanda *domain.Comanda) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	c := comanda.Clone()
	s := r.store

	mtx.add(func() error {
		if _, ok := s.comandas[c.ID]; !ok {
			return domain.ErrComandaNotFound
		}

		return nil
	}, func() {
		s.comandas[c.ID] = c
	})

	return nil
}

// UpdateTransferState buffers a forward transfer state change of ids.
func (r *ComandaRepository) UpdateTransferState(
	ctx context.Context,
	tx usecase.Transaction,
	ids []string,
	state domain.TransferState,
	transferID string,
	updatedAt time.Time,
) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	ids = slices.Clone(ids)
	s := r.store

	mtx.add(func() error {
		for _, id := range ids {
			c, ok := s.comandas[id]
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrComandaNotFound, id)
			}

			if !c.TransferState.CanTransitionTo(state) {
				if c.TransferState == domain.TransferTransferred {
					return &domain.AlreadyTransferredError{ComandaID: id}
				}

				return &domain.InvalidStateTransitionError{From: string(c.TransferState), To: string(state)}
			}
		}

		return nil
	}, func() {
		for _, id := range ids {
			c := s.comandas[id].Clone()
			c.TransferState = state
			c.TransferID = transferID
			c.UpdatedAt = updatedAt
			c.Version++
			s.comandas[id] = c
		}
	})

	return nil
}

// MaxSequenceNumber returns the highest sequence number of (cashBox, kind).
func (r *ComandaRepository) MaxSequenceNumber(ctx context.Context, tx usecase.Transaction, cashBox domain.CashBox, kind domain.ComandaKind) (int64, bool, error) {
	if _, err := asTx(tx); err != nil {
		return 0, false, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var (
		maxSeq int64
		found  bool
	)

	for _, c := range r.store.comandas {
		if c.CashBox != cashBox || c.Kind != kind {
			continue
		}

		if !found || c.SequenceNumber > maxSeq {
			maxSeq = c.SequenceNumber
			found = true
		}
	}

	return maxSeq, found, nil
}

// List returns the comandas matching filter ordered by creation time.
func (r *ComandaRepository) List(ctx context.Context, filter domain.ComandaFilter) ([]*domain.Comanda, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.Comanda, 0)

	for _, c := range r.store.comandas {
		if filter.Matches(c) {
			result = append(result, c.Clone())
		}
	}

	slices.SortFunc(result, func(a, b *domain.Comanda) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		if a.SequenceNumber != b.SequenceNumber {
			if a.SequenceNumber < b.SequenceNumber {
				return -1
			}

			return 1
		}

		return strings.Compare(a.ID, b.ID)
	})

	return result, nil
}

// ListForUpdate lists comandas inside tx.
func (r *ComandaRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction, filter domain.ComandaFilter) ([]*domain.Comanda, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}

	return r.List(ctx, filter)
}

// LockCashBox holds the cash box until tx ends.
func (r *ComandaRepository) LockCashBox(ctx context.Context, tx usecase.Transaction, cashBox domain.CashBox) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	return r.store.lockBox(ctx, mtx, cashBox)
}

var _ usecase.ComandaRepository = (*ComandaRepository)(nil)
