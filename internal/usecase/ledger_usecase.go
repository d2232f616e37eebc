package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
)

// LedgerConfig tunes the ledger.
type LedgerConfig struct {
	SequenceStart int64
	Tolerance     decimal.Decimal
	Clock         Clock
}

// LedgerUseCase owns comandas and their validation lifecycle.
type LedgerUseCase struct {
	txManager   TransactionManager
	comandaRepo ComandaRepository
	outboxRepo  OutboxRepository
	calculator  *PaymentCalculator
	locker      *CashBoxLocker
	idGen       IDGenerator
	metrics     MetricsRecorder
	retrier     Retrier
	clock       Clock
	seqStart    int64
	tolerance   decimal.Decimal
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	comandaRepo ComandaRepository,
	outboxRepo OutboxRepository,
	calculator *PaymentCalculator,
	locker *CashBoxLocker,
	idGen IDGenerator,
	metrics MetricsRecorder,
	cfg LedgerConfig,
) *LedgerUseCase {
	if cfg.SequenceStart <= 0 {
		cfg.SequenceStart = DefaultSequenceStart
	}

	if cfg.Tolerance.IsZero() {
		cfg.Tolerance = decimal.RequireFromString(DefaultReconciliationTolerance)
	}

	if cfg.Clock == nil {
		cfg.Clock = systemClock
	}

	return &LedgerUseCase{
		txManager:   txManager,
		comandaRepo: comandaRepo,
		outboxRepo:  outboxRepo,
		calculator:  calculator,
		locker:      locker,
		idGen:       idGen,
		metrics:     recorderOrNoop(metrics),
		retrier:     noRetry{},
		clock:       cfg.Clock,
		seqStart:    cfg.SequenceStart,
		tolerance:   cfg.Tolerance,
	}
}

// WithRetrier makes every write retry transient store failures with r.
func (uc *LedgerUseCase) WithRetrier(r Retrier) *LedgerUseCase {
	uc.retrier = retrierOrNoop(r)
	return uc
}

// PaymentInput is a payment as entered: a kind and its native amount.
type PaymentInput struct {
	Kind   domain.PaymentKind
	Amount domain.Money
}

// CreateComandaInput represents input for creating a comanda.
type CreateComandaInput struct {
	Kind         domain.ComandaKind
	CashBox      domain.CashBox
	BusinessUnit string
	CreatedBy    string
	Observations string
	Items        []domain.LineItem
	Payments     []PaymentInput
}

// AmendComandaInput replaces the lines and payments of a pending comanda.
type AmendComandaInput struct {
	ID           string
	Observations *string
	Items        []domain.LineItem
	Payments     []PaymentInput
}

// CreateComanda records a pending comanda with the next sequence number
// of its (cash box, kind) pair.
func (uc *LedgerUseCase) CreateComanda(ctx context.Context, input CreateComandaInput) (*domain.Comanda, error) {
	if err := domain.ValidateActor(input.CreatedBy); err != nil {
		return nil, err
	}

	if err := domain.ValidateObservations(input.Observations); err != nil {
		return nil, err
	}

	now := uc.clock()
	comanda := &domain.Comanda{
		ID:              uc.idGen.Generate(),
		CashBox:         input.CashBox,
		Kind:            input.Kind,
		BusinessUnit:    strings.TrimSpace(input.BusinessUnit),
		CreatedBy:       strings.TrimSpace(input.CreatedBy),
		Observations:    input.Observations,
		ValidationState: domain.ValidationPending,
		TransferState:   domain.TransferNone,
		Items:           append([]domain.LineItem(nil), input.Items...),
		Payments:        toPayments(input.Payments),
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}

	if err := comanda.Validate(); err != nil {
		return nil, err
	}

	payments, err := uc.calculator.Pinned().CalculateAll(comanda.Payments, ModeFor(comanda))
	if err != nil {
		return nil, err
	}

	comanda.Payments = payments

	err = uc.withCashBox(ctx, comanda.CashBox, func(txCtx context.Context, tx Transaction) error {
		seq, err := uc.nextSequence(txCtx, tx, comanda.CashBox, comanda.Kind)
		if err != nil {
			return err
		}

		comanda.SequenceNumber = seq

		return uc.comandaRepo.Create(txCtx, tx, comanda)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.ComandaCreated(string(comanda.CashBox), string(comanda.Kind))

	return comanda, nil
}

// ValidateComanda recomputes subtotals and payments and checks that they
// reconcile. On failure the comanda stays pending and unchanged.
func (uc *LedgerUseCase) ValidateComanda(ctx context.Context, id string) (*domain.Comanda, error) {
	box, err := uc.cashBoxOf(ctx, id)
	if err != nil {
		return nil, err
	}

	var validated *domain.Comanda

	err = uc.withCashBox(ctx, box, func(txCtx context.Context, tx Transaction) error {
		comanda, err := uc.comandaRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}

		if comanda.ValidationState != domain.ValidationPending {
			return &domain.InvalidStateTransitionError{
				From: string(comanda.ValidationState),
				To:   string(domain.ValidationValidated),
			}
		}

		// one rate for every conversion of this validation
		calc := uc.calculator.Pinned()
		mode := ModeFor(comanda)

		payments, err := calc.CalculateAll(comanda.Payments, mode)
		if err != nil {
			return err
		}

		comanda.Payments = payments

		rate, err := calc.SettlementRate(comanda, mode)
		if err != nil {
			return err
		}

		comanda.SettlementRate = rate

		if err := calc.Reconcile(comanda, uc.tolerance); err != nil {
			uc.metrics.ValidationFailed(failureReason(err))
			return err
		}

		now := uc.clock()
		if err := comanda.MarkValidated(now); err != nil {
			return err
		}

		comanda.Version++

		if err := uc.comandaRepo.Update(txCtx, tx, comanda); err != nil {
			return err
		}

		event := domain.NewComandaEvent(uc.idGen.Generate(), domain.EventTypeComandaValidated, comanda, now)
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return fmt.Errorf("record validation event: %w", err)
		}

		validated = comanda

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.ComandaValidated(string(validated.CashBox), string(validated.Kind))

	return validated, nil
}

// CancelComanda moves a pending or validated comanda that was never
// transferred to the terminal cancelled state.
func (uc *LedgerUseCase) CancelComanda(ctx context.Context, id, cancelledBy string) (*domain.Comanda, error) {
	if err := domain.ValidateActor(cancelledBy); err != nil {
		return nil, err
	}

	box, err := uc.cashBoxOf(ctx, id)
	if err != nil {
		return nil, err
	}

	var cancelled *domain.Comanda

	err = uc.withCashBox(ctx, box, func(txCtx context.Context, tx Transaction) error {
		comanda, err := uc.comandaRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}

		now := uc.clock()
		if err := comanda.MarkCancelled(now, strings.TrimSpace(cancelledBy)); err != nil {
			return err
		}

		comanda.Version++

		if err := uc.comandaRepo.Update(txCtx, tx, comanda); err != nil {
			return err
		}

		event := domain.NewComandaEvent(uc.idGen.Generate(), domain.EventTypeComandaCancelled, comanda, now)
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return fmt.Errorf("record cancellation event: %w", err)
		}

		cancelled = comanda

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.ComandaCancelled(string(cancelled.CashBox))

	return cancelled, nil
}

// AmendComanda replaces the lines and payments of a pending comanda.
// Payments are derived again from their native amounts.
func (uc *LedgerUseCase) AmendComanda(ctx context.Context, input AmendComandaInput) (*domain.Comanda, error) {
	if input.Observations != nil {
		if err := domain.ValidateObservations(*input.Observations); err != nil {
			return nil, err
		}
	}

	box, err := uc.cashBoxOf(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	var amended *domain.Comanda

	err = uc.withCashBox(ctx, box, func(txCtx context.Context, tx Transaction) error {
		comanda, err := uc.comandaRepo.GetByIDForUpdate(txCtx, tx, input.ID)
		if err != nil {
			return err
		}

		if comanda.ValidationState != domain.ValidationPending {
			return &domain.InvalidStateTransitionError{
				From: string(comanda.ValidationState),
				To:   "amended",
			}
		}

		comanda.Items = append([]domain.LineItem(nil), input.Items...)
		comanda.Payments = toPayments(input.Payments)

		if input.Observations != nil {
			comanda.Observations = *input.Observations
		}

		if err := comanda.Validate(); err != nil {
			return err
		}

		payments, err := uc.calculator.Pinned().CalculateAll(comanda.Payments, ModeFor(comanda))
		if err != nil {
			return err
		}

		comanda.Payments = payments
		comanda.UpdatedAt = uc.clock()
		comanda.Version++

		if err := uc.comandaRepo.Update(txCtx, tx, comanda); err != nil {
			return err
		}

		amended = comanda

		return nil
	})
	if err != nil {
		return nil, err
	}

	return amended, nil
}

// GetComanda retrieves a comanda by ID.
func (uc *LedgerUseCase) GetComanda(ctx context.Context, id string) (*domain.Comanda, error) {
	return uc.comandaRepo.GetByID(ctx, id)
}

// ListComandas returns the comandas matching filter, oldest first.
func (uc *LedgerUseCase) ListComandas(ctx context.Context, filter domain.ComandaFilter) ([]*domain.Comanda, error) {
	if err := filter.Range.Validate(); err != nil {
		return nil, err
	}

	return uc.comandaRepo.List(ctx, filter)
}

// TotalsByCurrency aggregates the settled amounts of comandas.
func (uc *LedgerUseCase) TotalsByCurrency(comandas []*domain.Comanda) domain.Totals {
	return TotalsByCurrency(comandas)
}

// TotalsByCurrency sums settled payment amounts per currency, separately
// for income and expense. Cancelled comandas are skipped. It does not
// mutate its input.
func TotalsByCurrency(comandas []*domain.Comanda) domain.Totals {
	totals := domain.NewTotals()

	for _, c := range comandas {
		if c.ValidationState == domain.ValidationCancelled {
			continue
		}

		for _, p := range c.Payments {
			totals.Add(c.Kind, p.SettledAmount)
		}

		totals.Count++
	}

	return totals
}

func (uc *LedgerUseCase) nextSequence(ctx context.Context, tx Transaction, box domain.CashBox, kind domain.ComandaKind) (int64, error) {
	maxSeq, found, err := uc.comandaRepo.MaxSequenceNumber(ctx, tx, box, kind)
	if err != nil {
		return 0, err
	}

	if !found {
		return uc.seqStart, nil
	}

	return maxSeq + 1, nil
}

func (uc *LedgerUseCase) cashBoxOf(ctx context.Context, id string) (domain.CashBox, error) {
	comanda, err := uc.comandaRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	return comanda.CashBox, nil
}

// withCashBox runs fn in a store transaction while holding both the
// in-process and the store-level lock of box.
func (uc *LedgerUseCase) withCashBox(ctx context.Context, box domain.CashBox, fn func(context.Context, Transaction) error) error {
	return runLocked(ctx, uc.locker, uc.retrier, uc.txManager, uc.comandaRepo, box, fn)
}

// runLocked holds the in-process lock of box for the whole call and runs
// fn in a fresh transaction on every attempt.
func runLocked(
	ctx context.Context,
	locker *CashBoxLocker,
	retrier Retrier,
	txManager TransactionManager,
	comandaRepo ComandaRepository,
	box domain.CashBox,
	fn func(context.Context, Transaction) error,
) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	unlock, err := locker.Lock(txCtx, box)
	if err != nil {
		return err
	}
	defer unlock()

	return retrier.Retry(txCtx, func() error {
		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		if err := comandaRepo.LockCashBox(txCtx, tx, box); err != nil {
			return err
		}

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
}

func toPayments(inputs []PaymentInput) []domain.PaymentMethod {
	payments := make([]domain.PaymentMethod, 0, len(inputs))
	for _, in := range inputs {
		payments = append(payments, domain.PaymentMethod{Kind: in.Kind, NativeAmount: in.Amount})
	}

	return payments
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnbalancedPayments):
		return "unbalanced"
	case errors.Is(err, domain.ErrRateUnavailable):
		return "rate_unavailable"
	default:
		return "other"
	}
}
