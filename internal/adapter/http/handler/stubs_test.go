package handler

import (
	"context"
	"iter"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

type rateServiceStub struct {
	setFn     func(ctx context.Context, value decimal.Decimal, source domain.RateSource, by string) (*domain.ExchangeRate, error)
	current   *domain.ExchangeRate
	history   []*domain.ExchangeRate
	lastLimit int
}

func (s *rateServiceStub) SetOperationalRate(ctx context.Context, value decimal.Decimal, source domain.RateSource, by string) (*domain.ExchangeRate, error) {
	return s.setFn(ctx, value, source, by)
}

func (s *rateServiceStub) Current() (*domain.ExchangeRate, error) {
	if s.current == nil {
		return nil, domain.ErrNoRateAvailable
	}

	return s.current, nil
}

func (s *rateServiceStub) History(limit int) iter.Seq[*domain.ExchangeRate] {
	s.lastLimit = limit

	n := len(s.history)
	if limit > 0 && limit < n {
		n = limit
	}

	return slices.Values(s.history[:n])
}

// fixedConverter converts at a constant rate. A zero rate behaves like a
// provider that has no operational rate.
type fixedConverter struct {
	rate decimal.Decimal
}

func (c fixedConverter) Convert(m domain.Money, target domain.Currency) (domain.Money, error) {
	if m.Currency == target {
		return m, nil
	}

	if c.rate.IsZero() {
		return domain.Money{}, domain.ErrRateUnavailable
	}

	if target == domain.USD {
		return domain.NewMoney(m.Amount.Div(c.rate), domain.USD).Round(), nil
	}

	return domain.NewMoney(m.Amount.Mul(c.rate), domain.ARS).Round(), nil
}

func (c fixedConverter) CurrentRate() (decimal.Decimal, error) {
	if c.rate.IsZero() {
		return decimal.Zero, domain.ErrRateUnavailable
	}

	return c.rate, nil
}

func (c fixedConverter) AdvisoryUSD(item domain.LineItem) (domain.Money, error) {
	return c.Convert(item.Subtotal(), domain.USD)
}

type comandaServiceStub struct {
	createFn   func(ctx context.Context, input usecase.CreateComandaInput) (*domain.Comanda, error)
	getFn      func(ctx context.Context, id string) (*domain.Comanda, error)
	amendFn    func(ctx context.Context, input usecase.AmendComandaInput) (*domain.Comanda, error)
	validateFn func(ctx context.Context, id string) (*domain.Comanda, error)
	cancelFn   func(ctx context.Context, id, by string) (*domain.Comanda, error)
	listFn     func(ctx context.Context, filter domain.ComandaFilter) ([]*domain.Comanda, error)
}

func (s *comandaServiceStub) CreateComanda(ctx context.Context, input usecase.CreateComandaInput) (*domain.Comanda, error) {
	return s.createFn(ctx, input)
}

func (s *comandaServiceStub) GetComanda(ctx context.Context, id string) (*domain.Comanda, error) {
	return s.getFn(ctx, id)
}

func (s *comandaServiceStub) AmendComanda(ctx context.Context, input usecase.AmendComandaInput) (*domain.Comanda, error) {
	return s.amendFn(ctx, input)
}

func (s *comandaServiceStub) ValidateComanda(ctx context.Context, id string) (*domain.Comanda, error) {
	return s.validateFn(ctx, id)
}

func (s *comandaServiceStub) CancelComanda(ctx context.Context, id, by string) (*domain.Comanda, error) {
	return s.cancelFn(ctx, id, by)
}

func (s *comandaServiceStub) ListComandas(ctx context.Context, filter domain.ComandaFilter) ([]*domain.Comanda, error) {
	return s.listFn(ctx, filter)
}

type transferServiceStub struct {
	candidatesFn func(ctx context.Context, box domain.CashBox, r domain.DateRange) ([]*domain.Comanda, error)
	fullFn       func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
	partialFn    func(ctx context.Context, input usecase.PartialTransferInput) (*usecase.TransferResult, error)
	historyFn    func(ctx context.Context, input usecase.ListTransfersInput) ([]*domain.TransferRecord, error)
	getFn        func(ctx context.Context, id string) (*domain.TransferRecord, error)
}

func (s *transferServiceStub) Candidates(ctx context.Context, box domain.CashBox, r domain.DateRange) ([]*domain.Comanda, error) {
	return s.candidatesFn(ctx, box, r)
}

func (s *transferServiceStub) TransferFull(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
	return s.fullFn(ctx, input)
}

func (s *transferServiceStub) TransferPartial(ctx context.Context, input usecase.PartialTransferInput) (*usecase.TransferResult, error) {
	return s.partialFn(ctx, input)
}

func (s *transferServiceStub) History(ctx context.Context, input usecase.ListTransfersInput) ([]*domain.TransferRecord, error) {
	return s.historyFn(ctx, input)
}

func (s *transferServiceStub) GetTransfer(ctx context.Context, id string) (*domain.TransferRecord, error) {
	return s.getFn(ctx, id)
}

type reportServiceStub struct {
	summaryFn func(ctx context.Context, box domain.CashBox, filter domain.ReportFilter) (*domain.Summary, error)
	groups    map[string]domain.Summary
}

func (s *reportServiceStub) Summary(ctx context.Context, box domain.CashBox, filter domain.ReportFilter) (*domain.Summary, error) {
	return s.summaryFn(ctx, box, filter)
}

func (s *reportServiceStub) ByBusinessUnit(_ context.Context, _ domain.CashBox, _ domain.ReportFilter) (map[string]domain.Summary, error) {
	return s.groups, nil
}

func (s *reportServiceStub) ByStaff(_ context.Context, _ domain.CashBox, _ domain.ReportFilter) (map[string]domain.Summary, error) {
	return s.groups, nil
}
