package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/infrastructure/postgres/generated"
	"github.com/iho/salonledger/internal/usecase"
)

// TransferRecordRepository implements usecase.TransferRecordRepository.
type TransferRecordRepository struct {
	queries *generated.Queries
}

// NewTransferRecordRepository creates a new TransferRecordRepository.
func NewTransferRecordRepository(db generated.DBTX) *TransferRecordRepository {
	return &TransferRecordRepository{queries: generated.New(db)}
}

// Create inserts a transfer record. Records are never updated.
func (r *TransferRecordRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransferRecord) error {
	queries := txQueries(tx)

	return queries.CreateTransferRecord(ctx, generated.CreateTransferRecordParams{
		ID:                 record.ID,
		SourceCashBox:      string(record.SourceCashBox),
		DestinationCashBox: string(record.DestinationCashBox),
		PerformedBy:        record.PerformedBy,
		Observations:       record.Observations,
		RangeFrom:          optionalTimestamptz(record.Range.From),
		RangeTo:            optionalTimestamptz(record.Range.To),
		ComandaIds:         record.ComandaIDs,
		TotalUsd:           decimalToNumeric(record.TotalUSD),
		TotalArs:           decimalToNumeric(record.TotalARS),
		ResidualUsd:        decimalToNumeric(record.ResidualUSD),
		ResidualArs:        decimalToNumeric(record.ResidualARS),
		Partial:            record.Partial,
		PerformedAt:        timeToPgTimestamptz(record.PerformedAt),
	})
}

// GetByID retrieves a transfer record by ID.
func (r *TransferRecordRepository) GetByID(ctx context.Context, id string) (*domain.TransferRecord, error) {
	row, err := r.queries.GetTransferRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferRecordNotFound
		}

		return nil, err
	}

	return rowToTransferRecord(row), nil
}

// ListByCashBox returns records touching cashBox, newest first.
func (r *TransferRecordRepository) ListByCashBox(ctx context.Context, cashBox domain.CashBox, limit, offset int) ([]*domain.TransferRecord, error) {
	rows, err := r.queries.ListTransferRecordsByCashBox(ctx, generated.ListTransferRecordsByCashBoxParams{
		SourceCashBox: string(cashBox),
		Limit:         pageLimit(limit),
		Offset:        int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransferRecords(rows), nil
}

// ListInRange returns records touching cashBox performed inside rng.
func (r *TransferRecordRepository) ListInRange(ctx context.Context, cashBox domain.CashBox, rng domain.DateRange) ([]*domain.TransferRecord, error) {
	rows, err := r.queries.ListTransferRecordsInRange(ctx, generated.ListTransferRecordsInRangeParams{
		SourceCashBox: string(cashBox),
		Column2:       optionalTimestamptz(rng.From),
		Column3:       optionalTimestamptz(rng.To),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransferRecords(rows), nil
}

func rowToTransferRecord(row generated.TransferRecord) *domain.TransferRecord {
	return &domain.TransferRecord{
		ID:                 row.ID,
		SourceCashBox:      domain.CashBox(row.SourceCashBox),
		DestinationCashBox: domain.CashBox(row.DestinationCashBox),
		PerformedBy:        row.PerformedBy,
		Observations:       row.Observations,
		Range: domain.DateRange{
			From: pgTimestamptzToTime(row.RangeFrom),
			To:   pgTimestamptzToTime(row.RangeTo),
		},
		ComandaIDs:  row.ComandaIds,
		TotalUSD:    numericToDecimal(row.TotalUsd),
		TotalARS:    numericToDecimal(row.TotalArs),
		ResidualUSD: numericToDecimal(row.ResidualUsd),
		ResidualARS: numericToDecimal(row.ResidualArs),
		Partial:     row.Partial,
		PerformedAt: pgTimestamptzToTime(row.PerformedAt),
	}
}

func rowsToTransferRecords(rows []generated.TransferRecord) []*domain.TransferRecord {
	records := make([]*domain.TransferRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToTransferRecord(row))
	}

	return records
}

var _ usecase.TransferRecordRepository = (*TransferRecordRepository)(nil)
