package memory

import (
	"context"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

// RateRepository implements usecase.RateRepository.
type RateRepository struct {
	store *Store
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(store *Store) *RateRepository {
	return &RateRepository{store: store}
}

// Append buffers a rate at the end of the history.
func (r *RateRepository) Append(ctx context.Context, tx usecase.Transaction, rate *domain.ExchangeRate) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	cp := *rate
	s := r.store

	mtx.add(nil, func() {
		s.rates = append(s.rates, &cp)
	})

	return nil
}

// Latest returns the most recently appended rate.
func (r *RateRepository) Latest(ctx context.Context) (*domain.ExchangeRate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if len(r.store.rates) == 0 {
		return nil, domain.ErrRateNotFound
	}

	cp := *r.store.rates[len(r.store.rates)-1]

	return &cp, nil
}

// History returns rates newest first.
func (r *RateRepository) History(ctx context.Context, limit, offset int) ([]*domain.ExchangeRate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.ExchangeRate, 0)

	for i := len(r.store.rates) - 1 - offset; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}

		cp := *r.store.rates[i]
		result = append(result, &cp)
	}

	return result, nil
}

var _ usecase.RateRepository = (*RateRepository)(nil)
