package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/infrastructure/postgres/generated"
	"github.com/iho/salonledger/internal/usecase"
)

const comandaSequenceConstraint = "comandas_sequence_unique"

// ComandaRepository implements usecase.ComandaRepository.
type ComandaRepository struct {
	queries *generated.Queries
}

// NewComandaRepository creates a new ComandaRepository. db is usually a
// *pgxpool.Pool.
func NewComandaRepository(db generated.DBTX) *ComandaRepository {
	return &ComandaRepository{queries: generated.New(db)}
}

// Create inserts a new comanda.
func (r *ComandaRepository) Create(ctx context.Context, tx usecase.Transaction, comanda *domain.Comanda) error {
	queries := txQueries(tx)

	items, payments, err := encodeLines(comanda)
	if err != nil {
		return err
	}

	err = queries.CreateComanda(ctx, generated.CreateComandaParams{
		ID:              comanda.ID,
		CashBox:         string(comanda.CashBox),
		Kind:            string(comanda.Kind),
		SequenceNumber:  comanda.SequenceNumber,
		BusinessUnit:    comanda.BusinessUnit,
		CreatedBy:       comanda.CreatedBy,
		CancelledBy:     comanda.CancelledBy,
		Observations:    comanda.Observations,
		ValidationState: string(comanda.ValidationState),
		TransferState:   string(comanda.TransferState),
		TransferID:      comanda.TransferID,
		Items:           items,
		Payments:        payments,
		SettlementRate:  decimalToNumeric(comanda.SettlementRate),
		Version:         comanda.Version,
		CreatedAt:       timeToPgTimestamptz(comanda.CreatedAt),
		UpdatedAt:       timeToPgTimestamptz(comanda.UpdatedAt),
		ValidatedAt:     timePtrToPgTimestamptz(comanda.ValidatedAt),
		CancelledAt:     timePtrToPgTimestamptz(comanda.CancelledAt),
	})
	if isUniqueViolation(err, comandaSequenceConstraint) {
		return fmt.Errorf("%w: %s/%s #%d", domain.ErrDuplicateSequenceNumber, comanda.CashBox, comanda.Kind, comanda.SequenceNumber)
	}

	return err
}

// GetByID retrieves a comanda by ID.
func (r *ComandaRepository) GetByID(ctx context.Context, id string) (*domain.Comanda, error) {
	row, err := r.queries.GetComandaByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrComandaNotFound
		}

		return nil, err
	}

	return rowToComanda(row)
}

// GetByIDForUpdate retrieves a comanda with a row lock.
func (r *ComandaRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Comanda, error) {
	queries := txQueries(tx)

	row, err := queries.GetComandaByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrComandaNotFound
		}

		return nil, err
	}

	return rowToComanda(row)
}

// Update writes the mutable columns of comanda. comanda.Version must
// already be bumped; the row is only touched when it still holds the
// previous version.
func (r *ComandaRepository) Update(ctx context.Context, tx usecase.Transaction, comanda *domain.Comanda) error {
	queries := txQueries(tx)

	items, payments, err := encodeLines(comanda)
	if err != nil {
		return err
	}

	n, err := queries.UpdateComanda(ctx, generated.UpdateComandaParams{
		ID:              comanda.ID,
		Observations:    comanda.Observations,
		CancelledBy:     comanda.CancelledBy,
		ValidationState: string(comanda.ValidationState),
		Items:           items,
		Payments:        payments,
		SettlementRate:  decimalToNumeric(comanda.SettlementRate),
		Version:         comanda.Version,
		UpdatedAt:       timeToPgTimestamptz(comanda.UpdatedAt),
		ValidatedAt:     timePtrToPgTimestamptz(comanda.ValidatedAt),
		CancelledAt:     timePtrToPgTimestamptz(comanda.CancelledAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: %s at version %d", domain.ErrOptimisticLock, comanda.ID, comanda.Version-1)
	}

	return nil
}

// UpdateTransferState moves ids forward to state in one statement. Rows
// already in state or already transferred are left alone, so a short
// count means another transfer got there first.
func (r *ComandaRepository) UpdateTransferState(
	ctx context.Context,
	tx usecase.Transaction,
	ids []string,
	state domain.TransferState,
	transferID string,
	updatedAt time.Time,
) error {
	queries := txQueries(tx)

	n, err := queries.UpdateComandasTransferState(ctx, generated.UpdateComandasTransferStateParams{
		Column1:       ids,
		TransferState: string(state),
		TransferID:    transferID,
		UpdatedAt:     timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if int(n) != len(ids) {
		return fmt.Errorf("%w: %d of %d comandas moved", domain.ErrAlreadyTransferred, n, len(ids))
	}

	return nil
}

// MaxSequenceNumber returns the highest sequence number of (cashBox, kind).
func (r *ComandaRepository) MaxSequenceNumber(ctx context.Context, tx usecase.Transaction, cashBox domain.CashBox, kind domain.ComandaKind) (int64, bool, error) {
	queries := txQueries(tx)

	maxSeq, err := queries.MaxComandaSequence(ctx, generated.MaxComandaSequenceParams{
		CashBox: string(cashBox),
		Kind:    string(kind),
	})
	if err != nil {
		return 0, false, err
	}

	return maxSeq.Int64, maxSeq.Valid, nil
}

// List returns the comandas matching filter ordered by creation time.
func (r *ComandaRepository) List(ctx context.Context, filter domain.ComandaFilter) ([]*domain.Comanda, error) {
	rows, err := r.queries.ListComandas(ctx, generated.ListComandasParams(filterParams(filter)))
	if err != nil {
		return nil, err
	}

	return rowsToComandas(rows)
}

// ListForUpdate lists and row-locks the comandas matching filter.
func (r *ComandaRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction, filter domain.ComandaFilter) ([]*domain.Comanda, error) {
	queries := txQueries(tx)

	rows, err := queries.ListComandasForUpdate(ctx, filterParams(filter))
	if err != nil {
		return nil, err
	}

	return rowsToComandas(rows)
}

// LockCashBox takes a transaction-scoped advisory lock on cashBox, so
// writers of one box are serialized across service instances.
func (r *ComandaRepository) LockCashBox(ctx context.Context, tx usecase.Transaction, cashBox domain.CashBox) error {
	queries := txQueries(tx)

	return queries.LockCashBox(ctx, string(cashBox))
}

func filterParams(f domain.ComandaFilter) generated.ListComandasForUpdateParams {
	return generated.ListComandasForUpdateParams{
		Column1: string(f.CashBox),
		Column2: optionalTimestamptz(f.Range.From),
		Column3: optionalTimestamptz(f.Range.To),
		Column4: string(f.Kind),
		Column5: string(f.ValidationState),
		Column6: f.BusinessUnit,
	}
}

// JSONB shapes of items and payments.
type lineItemDoc struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	StaffID   string          `json:"staff_id,omitempty"`
	Currency  string          `json:"currency"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Discount  decimal.Decimal `json:"discount"`
	Frozen    bool            `json:"frozen"`
}

type paymentDoc struct {
	Kind            string          `json:"kind"`
	Currency        string          `json:"currency"`
	NativeAmount    decimal.Decimal `json:"native_amount"`
	SurchargePct    decimal.Decimal `json:"surcharge_pct"`
	Adjustment      decimal.Decimal `json:"adjustment"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	SettledAmount   decimal.Decimal `json:"settled_amount"`
	SettledCurrency string          `json:"settled_currency"`
}

func encodeLines(c *domain.Comanda) (items, payments []byte, err error) {
	itemDocs := make([]lineItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		itemDocs = append(itemDocs, lineItemDoc{
			ProductID: it.ProductID,
			Name:      it.NameSnapshot,
			StaffID:   it.StaffID,
			Currency:  string(it.UnitPrice.Currency),
			UnitPrice: it.UnitPrice.Amount,
			Quantity:  it.Quantity,
			Discount:  it.Discount.Amount,
			Frozen:    it.Frozen,
		})
	}

	paymentDocs := make([]paymentDoc, 0, len(c.Payments))
	for _, p := range c.Payments {
		paymentDocs = append(paymentDocs, paymentDoc{
			Kind:            string(p.Kind),
			Currency:        string(p.NativeAmount.Currency),
			NativeAmount:    p.NativeAmount.Amount,
			SurchargePct:    p.SurchargePct,
			Adjustment:      p.Adjustment.Amount,
			FinalAmount:     p.FinalAmount.Amount,
			SettledAmount:   p.SettledAmount.Amount,
			SettledCurrency: string(p.SettledAmount.Currency),
		})
	}

	if items, err = json.Marshal(itemDocs); err != nil {
		return nil, nil, fmt.Errorf("encode items: %w", err)
	}

	if payments, err = json.Marshal(paymentDocs); err != nil {
		return nil, nil, fmt.Errorf("encode payments: %w", err)
	}

	return items, payments, nil
}

func rowToComanda(row generated.Comanda) (*domain.Comanda, error) {
	var itemDocs []lineItemDoc
	if err := json.Unmarshal(row.Items, &itemDocs); err != nil {
		return nil, fmt.Errorf("decode items of %s: %w", row.ID, err)
	}

	var paymentDocs []paymentDoc
	if err := json.Unmarshal(row.Payments, &paymentDocs); err != nil {
		return nil, fmt.Errorf("decode payments of %s: %w", row.ID, err)
	}

	c := &domain.Comanda{
		ID:              row.ID,
		CashBox:         domain.CashBox(row.CashBox),
		Kind:            domain.ComandaKind(row.Kind),
		SequenceNumber:  row.SequenceNumber,
		BusinessUnit:    row.BusinessUnit,
		CreatedBy:       row.CreatedBy,
		CancelledBy:     row.CancelledBy,
		Observations:    row.Observations,
		ValidationState: domain.ValidationState(row.ValidationState),
		TransferState:   domain.TransferState(row.TransferState),
		TransferID:      row.TransferID,
		SettlementRate:  numericToDecimal(row.SettlementRate),
		Version:         row.Version,
		CreatedAt:       pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:       pgTimestamptzToTime(row.UpdatedAt),
		ValidatedAt:     pgTimestamptzToTimePtr(row.ValidatedAt),
		CancelledAt:     pgTimestamptzToTimePtr(row.CancelledAt),
		Items:           make([]domain.LineItem, 0, len(itemDocs)),
		Payments:        make([]domain.PaymentMethod, 0, len(paymentDocs)),
	}

	for _, d := range itemDocs {
		cur := domain.Currency(d.Currency)
		c.Items = append(c.Items, domain.LineItem{
			ProductID:    d.ProductID,
			NameSnapshot: d.Name,
			StaffID:      d.StaffID,
			UnitPrice:    domain.NewMoney(d.UnitPrice, cur),
			Quantity:     d.Quantity,
			Discount:     domain.NewMoney(d.Discount, cur),
			Frozen:       d.Frozen,
		})
	}

	for _, d := range paymentDocs {
		cur := domain.Currency(d.Currency)
		settled := domain.Currency(d.SettledCurrency)
		if settled == "" {
			settled = cur
		}

		c.Payments = append(c.Payments, domain.PaymentMethod{
			Kind:          domain.PaymentKind(d.Kind),
			NativeAmount:  domain.NewMoney(d.NativeAmount, cur),
			SurchargePct:  d.SurchargePct,
			Adjustment:    domain.NewMoney(d.Adjustment, cur),
			FinalAmount:   domain.NewMoney(d.FinalAmount, cur),
			SettledAmount: domain.NewMoney(d.SettledAmount, settled),
		})
	}

	return c, nil
}

func rowsToComandas(rows []generated.Comanda) ([]*domain.Comanda, error) {
	result := make([]*domain.Comanda, 0, len(rows))

	for _, row := range rows {
		c, err := rowToComanda(row)
		if err != nil {
			return nil, err
		}

		result = append(result, c)
	}

	return result, nil
}

var _ usecase.ComandaRepository = (*ComandaRepository)(nil)
