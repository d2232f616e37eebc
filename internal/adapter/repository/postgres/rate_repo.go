package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/infrastructure/postgres/generated"
	"github.com/iho/salonledger/internal/usecase"
)

// RateRepository implements usecase.RateRepository.
type RateRepository struct {
	queries *generated.Queries
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(db generated.DBTX) *RateRepository {
	return &RateRepository{queries: generated.New(db)}
}

// Append stores a new operational rate.
func (r *RateRepository) Append(ctx context.Context, tx usecase.Transaction, rate *domain.ExchangeRate) error {
	queries := txQueries(tx)

	return queries.AppendExchangeRate(ctx, generated.AppendExchangeRateParams{
		ID:         rate.ID,
		Value:      decimalToNumeric(rate.Value),
		Source:     string(rate.Source),
		CapturedBy: rate.CapturedBy,
		CapturedAt: timeToPgTimestamptz(rate.CapturedAt),
	})
}

// Latest returns the most recently captured rate.
func (r *RateRepository) Latest(ctx context.Context) (*domain.ExchangeRate, error) {
	row, err := r.queries.GetLatestExchangeRate(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRateNotFound
		}

		return nil, err
	}

	return rowToExchangeRate(row), nil
}

// History returns rates newest first.
func (r *RateRepository) History(ctx context.Context, limit, offset int) ([]*domain.ExchangeRate, error) {
	rows, err := r.queries.ListExchangeRates(ctx, generated.ListExchangeRatesParams{
		Limit:  pageLimit(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	rates := make([]*domain.ExchangeRate, 0, len(rows))
	for _, row := range rows {
		rates = append(rates, rowToExchangeRate(row))
	}

	return rates, nil
}

func rowToExchangeRate(row generated.ExchangeRate) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		ID:         row.ID,
		Value:      numericToDecimal(row.Value),
		Source:     domain.RateSource(row.Source),
		CapturedBy: row.CapturedBy,
		CapturedAt: pgTimestamptzToTime(row.CapturedAt),
	}
}

var _ usecase.RateRepository = (*RateRepository)(nil)
