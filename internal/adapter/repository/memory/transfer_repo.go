package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

// TransferRecordRepository implements usecase.TransferRecordRepository.
type TransferRecordRepository struct {
	store *Store
}

// NewTransferRecordRepository creates a new TransferRecordRepository.
func NewTransferRecordRepository(store *Store) *TransferRecordRepository {
	return &TransferRecordRepository{store: store}
}

// Create buffers a new transfer record.
func (r *TransferRecordRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransferRecord) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	rec := cloneRecord(record)
	s := r.store

	mtx.add(func() error {
		for _, existing := range s.transfers {
			if existing.ID == rec.ID {
				return fmt.Errorf("transfer record %s already exists", rec.ID)
			}
		}

		return nil
	}, func() {
		s.transfers = append(s.transfers, rec)
	})

	return nil
}

// GetByID retrieves a transfer record by ID.
func (r *TransferRecordRepository) GetByID(ctx context.Context, id string) (*domain.TransferRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, rec := range r.store.transfers {
		if rec.ID == id {
			return cloneRecord(rec), nil
		}
	}

	return nil, domain.ErrTransferRecordNotFound
}

// ListByCashBox returns records touching cashBox, newest first.
func (r *TransferRecordRepository) ListByCashBox(ctx context.Context, cashBox domain.CashBox, limit, offset int) ([]*domain.TransferRecord, error) {
	matched := r.newestFirst(func(rec *domain.TransferRecord) bool {
		return rec.Involves(cashBox)
	})

	if offset >= len(matched) {
		return []*domain.TransferRecord{}, nil
	}

	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	return matched, nil
}

// ListInRange returns records touching cashBox performed inside rng.
func (r *TransferRecordRepository) ListInRange(ctx context.Context, cashBox domain.CashBox, rng domain.DateRange) ([]*domain.TransferRecord, error) {
	return r.newestFirst(func(rec *domain.TransferRecord) bool {
		return rec.Involves(cashBox) && rng.Contains(rec.PerformedAt)
	}), nil
}

func (r *TransferRecordRepository) newestFirst(keep func(*domain.TransferRecord) bool) []*domain.TransferRecord {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.TransferRecord, 0)

	// walk backwards so equal timestamps keep reverse insertion order
	for i := len(r.store.transfers) - 1; i >= 0; i-- {
		if rec := r.store.transfers[i]; keep(rec) {
			result = append(result, cloneRecord(rec))
		}
	}

	slices.SortStableFunc(result, func(a, b *domain.TransferRecord) int {
		return b.PerformedAt.Compare(a.PerformedAt)
	})

	return result
}

func cloneRecord(rec *domain.TransferRecord) *domain.TransferRecord {
	cp := *rec
	cp.ComandaIDs = slices.Clone(rec.ComandaIDs)

	return &cp
}

var _ usecase.TransferRecordRepository = (*TransferRecordRepository)(nil)
