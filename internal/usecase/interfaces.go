package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
)

// ComandaRepository defines data access for comandas.
type ComandaRepository interface {
	Create(ctx context.Context, tx Transaction, comanda *domain.Comanda) error
	GetByID(ctx context.Context, id string) (*domain.Comanda, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Comanda, error)
	Update(ctx context.Context, tx Transaction, comanda *domain.Comanda) error
	UpdateTransferState(ctx context.Context, tx Transaction, ids []string, state domain.TransferState, transferID string, updatedAt time.Time) error
	// MaxSequenceNumber returns the highest sequence number in (cashBox, kind);
	// found is false when the pair has no comandas yet.
	MaxSequenceNumber(ctx context.Context, tx Transaction, cashBox domain.CashBox, kind domain.ComandaKind) (max int64, found bool, err error)
	List(ctx context.Context, filter domain.ComandaFilter) ([]*domain.Comanda, error)
	ListForUpdate(ctx context.Context, tx Transaction, filter domain.ComandaFilter) ([]*domain.Comanda, error)
	// LockCashBox serializes writers of one cash box for the lifetime of tx.
	LockCashBox(ctx context.Context, tx Transaction, cashBox domain.CashBox) error
}

// TransferRecordRepository defines data access for transfer records.
type TransferRecordRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.TransferRecord) error
	GetByID(ctx context.Context, id string) (*domain.TransferRecord, error)
	// ListByCashBox returns records touching cashBox, newest first.
	ListByCashBox(ctx context.Context, cashBox domain.CashBox, limit, offset int) ([]*domain.TransferRecord, error)
	ListInRange(ctx context.Context, cashBox domain.CashBox, r domain.DateRange) ([]*domain.TransferRecord, error)
}

// RateRepository is the append-only exchange rate history.
type RateRepository interface {
	Append(ctx context.Context, tx Transaction, rate *domain.ExchangeRate) error
	Latest(ctx context.Context) (*domain.ExchangeRate, error)
	// History returns rates newest first.
	History(ctx context.Context, limit, offset int) ([]*domain.ExchangeRate, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// RateCache shares the operational rate between service instances.
type RateCache interface {
	Get(ctx context.Context) (*domain.ExchangeRate, error)
	Set(ctx context.Context, rate *domain.ExchangeRate, ttl time.Duration) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// MetricsRecorder receives engine counters. *metrics.Metrics satisfies it.
type MetricsRecorder interface {
	ObserveRate(source string, value decimal.Decimal)
	ObserveTransfer(partial bool, usd, ars decimal.Decimal, seconds float64)
	TransferFailed(errorType string)
	ComandaCreated(cashBox, kind string)
	ComandaValidated(cashBox, kind string)
	ValidationFailed(reason string)
	ComandaCancelled(cashBox string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRate(string, decimal.Decimal)                              {}
func (noopMetrics) ObserveTransfer(bool, decimal.Decimal, decimal.Decimal, float64) {}
func (noopMetrics) TransferFailed(string)                                           {}
func (noopMetrics) ComandaCreated(string, string)                                   {}
func (noopMetrics) ComandaValidated(string, string)                                 {}
func (noopMetrics) ValidationFailed(string)                                         {}
func (noopMetrics) ComandaCancelled(string)                                         {}

func recorderOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}

	return m
}

// Clock returns the current time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
