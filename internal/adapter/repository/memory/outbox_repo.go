package memory

import (
	"context"
	"maps"
	"time"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create buffers an event in the same transaction as the change it reports.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	cp := cloneEvent(event)
	s := r.store

	mtx.add(nil, func() {
		s.outbox = append(s.outbox, cp)
	})

	return nil
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*domain.OutboxEvent, 0)

	for _, e := range r.store.outbox {
		if e.Published {
			continue
		}

		if limit > 0 && len(result) == limit {
			break
		}

		result = append(result, cloneEvent(e))
	}

	return result, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.outbox {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at

			return nil
		}
	}

	return nil
}

func cloneEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	cp := *e
	cp.Payload = maps.Clone(e.Payload)

	if e.PublishedAt != nil {
		at := *e.PublishedAt
		cp.PublishedAt = &at
	}

	return &cp
}

var _ usecase.OutboxRepository = (*OutboxRepository)(nil)
