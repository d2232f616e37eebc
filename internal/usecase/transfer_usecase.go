package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
)

// TransferUseCase moves validated comandas from petty cash to main cash.
type TransferUseCase struct {
	txManager    TransactionManager
	comandaRepo  ComandaRepository
	transferRepo TransferRecordRepository
	outboxRepo   OutboxRepository
	locker       *CashBoxLocker
	idGen        IDGenerator
	metrics      MetricsRecorder
	retrier      Retrier
	clock        Clock
}

// NewTransferUseCase creates a new TransferUseCase. clock may be nil.
func NewTransferUseCase(
	txManager TransactionManager,
	comandaRepo ComandaRepository,
	transferRepo TransferRecordRepository,
	outboxRepo OutboxRepository,
	locker *CashBoxLocker,
	idGen IDGenerator,
	metrics MetricsRecorder,
	clock Clock,
) *TransferUseCase {
	if clock == nil {
		clock = systemClock
	}

	return &TransferUseCase{
		txManager:    txManager,
		comandaRepo:  comandaRepo,
		transferRepo: transferRepo,
		outboxRepo:   outboxRepo,
		locker:       locker,
		idGen:        idGen,
		metrics:      recorderOrNoop(metrics),
		retrier:      noRetry{},
		clock:        clock,
	}
}

// WithRetrier makes transfers retry transient store failures with r.
func (uc *TransferUseCase) WithRetrier(r Retrier) *TransferUseCase {
	uc.retrier = retrierOrNoop(r)
	return uc
}

// TransferInput selects what to move. When ComandaIDs is set the named
// comandas are moved and Range is only recorded; otherwise every
// candidate of Range is moved.
type TransferInput struct {
	CashBox      domain.CashBox
	Range        domain.DateRange
	ComandaIDs   []string
	PerformedBy  string
	Observations string
}

// PartialTransferInput moves only the requested amounts out of the
// available balance.
type PartialTransferInput struct {
	TransferInput
	RequestedUSD decimal.Decimal
	RequestedARS decimal.Decimal
}

// TransferResult is the outcome of a transfer. Record is nil when there
// was nothing to move.
type TransferResult struct {
	Record *domain.TransferRecord
	Moved  int
}

// ListTransfersInput represents input for transfer history.
type ListTransfersInput struct {
	CashBox domain.CashBox
	Limit   int
	Offset  int
}

// Candidates returns the validated, not yet transferred comandas of box
// created inside r, oldest first.
func (uc *TransferUseCase) Candidates(ctx context.Context, box domain.CashBox, r domain.DateRange) ([]*domain.Comanda, error) {
	if !box.IsValid() {
		return nil, domain.ErrInvalidCashBox
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	comandas, err := uc.comandaRepo.List(ctx, candidateFilter(box, r))
	if err != nil {
		return nil, err
	}

	return selectCandidates(comandas), nil
}

// TransferFull moves the whole available balance of the candidates.
func (uc *TransferUseCase) TransferFull(ctx context.Context, input TransferInput) (*TransferResult, error) {
	return uc.transfer(ctx, input, nil)
}

// TransferPartial moves the requested amounts and records what stays
// behind as residual. Every candidate is marked transferred.
func (uc *TransferUseCase) TransferPartial(ctx context.Context, input PartialTransferInput) (*TransferResult, error) {
	if input.RequestedUSD.IsNegative() || input.RequestedARS.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if input.RequestedUSD.IsZero() && input.RequestedARS.IsZero() {
		return nil, fmt.Errorf("%w: nothing requested", domain.ErrInvalidAmount)
	}

	return uc.transfer(ctx, input.TransferInput, &input)
}

// History returns the transfer records touching box, newest first.
func (uc *TransferUseCase) History(ctx context.Context, input ListTransfersInput) ([]*domain.TransferRecord, error) {
	if !input.CashBox.IsValid() {
		return nil, domain.ErrInvalidCashBox
	}

	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return uc.transferRepo.ListByCashBox(ctx, input.CashBox, limit, offset)
}

// GetTransfer retrieves a transfer record by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.TransferRecord, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

func (uc *TransferUseCase) transfer(ctx context.Context, input TransferInput, partial *PartialTransferInput) (*TransferResult, error) {
	if err := uc.validateInput(input); err != nil {
		return nil, err
	}

	start := uc.clock()

	var result *TransferResult

	err := runLocked(ctx, uc.locker, uc.retrier, uc.txManager, uc.comandaRepo, input.CashBox, func(txCtx context.Context, tx Transaction) error {
		candidates, err := uc.lockCandidates(txCtx, tx, input)
		if err != nil {
			return err
		}

		if len(candidates) == 0 {
			result = &TransferResult{}
			return nil
		}

		record, err := uc.buildRecord(input, partial, candidates)
		if err != nil {
			return err
		}

		if err := uc.transferRepo.Create(txCtx, tx, record); err != nil {
			return err
		}

		state := domain.TransferTransferred
		if err := uc.comandaRepo.UpdateTransferState(txCtx, tx, record.ComandaIDs, state, record.ID, record.PerformedAt); err != nil {
			return err
		}

		if err := uc.outboxRepo.Create(txCtx, tx, domain.NewTransferEvent(uc.idGen.Generate(), record)); err != nil {
			return fmt.Errorf("record transfer event: %w", err)
		}

		result = &TransferResult{Record: record, Moved: len(candidates)}

		return nil
	})
	if err != nil {
		uc.metrics.TransferFailed(transferErrorType(err))
		return nil, err
	}

	if result.Record != nil {
		uc.metrics.ObserveTransfer(result.Record.Partial, result.Record.TotalUSD, result.Record.TotalARS,
			uc.clock().Sub(start).Seconds())
	}

	return result, nil
}

func (uc *TransferUseCase) validateInput(input TransferInput) error {
	if input.CashBox != domain.CashBoxPetty {
		if !input.CashBox.IsValid() {
			return domain.ErrInvalidCashBox
		}

		return domain.ErrInvalidTransferRoute
	}

	if err := domain.ValidateActor(input.PerformedBy); err != nil {
		return err
	}

	if err := domain.ValidateObservations(input.Observations); err != nil {
		return err
	}

	return input.Range.Validate()
}

// lockCandidates loads the comandas to move while holding the cash box.
func (uc *TransferUseCase) lockCandidates(ctx context.Context, tx Transaction, input TransferInput) ([]*domain.Comanda, error) {
	if len(input.ComandaIDs) == 0 {
		comandas, err := uc.comandaRepo.ListForUpdate(ctx, tx, candidateFilter(input.CashBox, input.Range))
		if err != nil {
			return nil, err
		}

		return selectCandidates(comandas), nil
	}

	ids := slices.Clone(input.ComandaIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	comandas := make([]*domain.Comanda, 0, len(ids))
	for _, id := range ids {
		c, err := uc.comandaRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		switch {
		case c.CashBox != input.CashBox:
			return nil, fmt.Errorf("%w: %s", domain.ErrCashBoxMismatch, c.ID)
		case c.TransferState == domain.TransferTransferred:
			return nil, &domain.AlreadyTransferredError{ComandaID: c.ID}
		case c.ValidationState != domain.ValidationValidated:
			return nil, &domain.InvalidStateTransitionError{
				From: string(c.ValidationState),
				To:   string(domain.TransferTransferred),
			}
		}

		comandas = append(comandas, c)
	}

	sortCandidates(comandas)

	return comandas, nil
}

func (uc *TransferUseCase) buildRecord(input TransferInput, partial *PartialTransferInput, candidates []*domain.Comanda) (*domain.TransferRecord, error) {
	available := TotalsByCurrency(candidates)
	availUSD := available.NetUSD()
	availARS := available.NetARS()

	record := &domain.TransferRecord{
		ID:                 uc.idGen.Generate(),
		Range:              input.Range,
		SourceCashBox:      domain.CashBoxPetty,
		DestinationCashBox: domain.CashBoxMain,
		PerformedBy:        strings.TrimSpace(input.PerformedBy),
		Observations:       input.Observations,
		PerformedAt:        uc.clock(),
		ComandaIDs:         make([]string, 0, len(candidates)),
		TotalUSD:           availUSD,
		TotalARS:           availARS,
		ResidualUSD:        decimal.Zero,
		ResidualARS:        decimal.Zero,
	}

	for _, c := range candidates {
		record.ComandaIDs = append(record.ComandaIDs, c.ID)
	}

	if partial != nil {
		if err := checkFunds(domain.USD, partial.RequestedUSD, availUSD); err != nil {
			return nil, err
		}

		if err := checkFunds(domain.ARS, partial.RequestedARS, availARS); err != nil {
			return nil, err
		}

		record.Partial = true
		record.TotalUSD = partial.RequestedUSD
		record.TotalARS = partial.RequestedARS
		record.ResidualUSD = availUSD.Sub(partial.RequestedUSD)
		record.ResidualARS = availARS.Sub(partial.RequestedARS)
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// checkFunds refuses a positive request above the available amount. A
// zero request never fails, so a currency with a negative net does not
// block moving the other one.
func checkFunds(currency domain.Currency, requested, available decimal.Decimal) error {
	if requested.IsPositive() && requested.GreaterThan(available) {
		return &domain.InsufficientFundsError{
			Currency:  currency,
			Requested: requested,
			Available: available,
		}
	}

	return nil
}

func candidateFilter(box domain.CashBox, r domain.DateRange) domain.ComandaFilter {
	return domain.ComandaFilter{
		CashBox:         box,
		Range:           r,
		ValidationState: domain.ValidationValidated,
	}
}

func selectCandidates(comandas []*domain.Comanda) []*domain.Comanda {
	out := make([]*domain.Comanda, 0, len(comandas))
	for _, c := range comandas {
		if c.Transferable() {
			out = append(out, c)
		}
	}

	sortCandidates(out)

	return out
}

// sortCandidates orders by creation time, then sequence number and ID so
// residual math is reproducible.
func sortCandidates(comandas []*domain.Comanda) {
	slices.SortStableFunc(comandas, func(a, b *domain.Comanda) int {
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
}

func transferErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAlreadyTransferred):
		return "already_transferred"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return "invalid_state"
	case errors.Is(err, domain.ErrCashBoxMismatch):
		return "cash_box_mismatch"
	case errors.Is(err, domain.ErrComandaNotFound):
		return "not_found"
	default:
		return "other"
	}
}
