package handler

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

// RateService is the exchange rate provider as seen by the HTTP layer.
type RateService interface {
	SetOperationalRate(ctx context.Context, value decimal.Decimal, source domain.RateSource, capturedBy string) (*domain.ExchangeRate, error)
	Current() (*domain.ExchangeRate, error)
	History(limit int) iter.Seq[*domain.ExchangeRate]
}

// Converter converts amounts at the operational rate.
type Converter interface {
	Convert(m domain.Money, target domain.Currency) (domain.Money, error)
	CurrentRate() (decimal.Decimal, error)
	AdvisoryUSD(item domain.LineItem) (domain.Money, error)
}

// ComandaService is the ledger as seen by the HTTP layer.
type ComandaService interface {
	CreateComanda(ctx context.Context, input usecase.CreateComandaInput) (*domain.Comanda, error)
	GetComanda(ctx context.Context, id string) (*domain.Comanda, error)
	AmendComanda(ctx context.Context, input usecase.AmendComandaInput) (*domain.Comanda, error)
	ValidateComanda(ctx context.Context, id string) (*domain.Comanda, error)
	CancelComanda(ctx context.Context, id, cancelledBy string) (*domain.Comanda, error)
	ListComandas(ctx context.Context, filter domain.ComandaFilter) ([]*domain.Comanda, error)
}

// TransferService is the transfer engine as seen by the HTTP layer.
type TransferService interface {
	Candidates(ctx context.Context, box domain.CashBox, r domain.DateRange) ([]*domain.Comanda, error)
	TransferFull(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
	TransferPartial(ctx context.Context, input usecase.PartialTransferInput) (*usecase.TransferResult, error)
	History(ctx context.Context, input usecase.ListTransfersInput) ([]*domain.TransferRecord, error)
	GetTransfer(ctx context.Context, id string) (*domain.TransferRecord, error)
}

// ReportService produces reconciliation summaries.
type ReportService interface {
	Summary(ctx context.Context, box domain.CashBox, filter domain.ReportFilter) (*domain.Summary, error)
	ByBusinessUnit(ctx context.Context, box domain.CashBox, filter domain.ReportFilter) (map[string]domain.Summary, error)
	ByStaff(ctx context.Context, box domain.CashBox, filter domain.ReportFilter) (map[string]domain.Summary, error)
}

var (
	_ RateService     = (*usecase.ExchangeRateProvider)(nil)
	_ Converter       = (*usecase.CurrencyConverter)(nil)
	_ ComandaService  = (*usecase.LedgerUseCase)(nil)
	_ TransferService = (*usecase.TransferUseCase)(nil)
	_ ReportService   = (*usecase.ReconciliationUseCase)(nil)
)
