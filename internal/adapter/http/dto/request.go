package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

// SetRateRequest sets the operational exchange rate.
type SetRateRequest struct {
	Value      string `json:"value"       validate:"required,number"`
	Source     string `json:"source"      validate:"omitempty,oneof=manual external"`
	CapturedBy string `json:"captured_by" validate:"required,max=100"`
}

// Parse returns the rate value and source. Source defaults to manual.
func (r *SetRateRequest) Parse() (decimal.Decimal, domain.RateSource, error) {
	value, err := decimal.NewFromString(r.Value)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("%w: %q", domain.ErrInvalidRate, r.Value)
	}

	source := domain.RateSource(r.Source)
	if source == "" {
		source = domain.RateSourceManual
	}

	return value, source, nil
}

// MoneyRequest is an amount with its currency. Amounts travel as strings.
type MoneyRequest struct {
	Amount   string `json:"amount"   validate:"required,number"`
	Currency string `json:"currency" validate:"required,oneof=USD ARS"`
}

// ToMoney parses the amount.
func (m MoneyRequest) ToMoney() (domain.Money, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, m.Amount)
	}

	currency, err := domain.ParseCurrency(m.Currency)
	if err != nil {
		return domain.Money{}, err
	}

	return domain.NewMoney(amount, currency), nil
}

// LineItemRequest is a priced line. Discount shares the unit price currency.
type LineItemRequest struct {
	ProductID string       `json:"product_id" validate:"required"`
	Name      string       `json:"name"`
	StaffID   string       `json:"staff_id"`
	UnitPrice MoneyRequest `json:"unit_price"`
	Quantity  int          `json:"quantity"   validate:"required,gt=0"`
	Discount  string       `json:"discount"   validate:"omitempty,number"`
	Frozen    bool         `json:"frozen"`
}

// ToDomain builds the line item and checks its invariants.
func (r LineItemRequest) ToDomain() (domain.LineItem, error) {
	price, err := r.UnitPrice.ToMoney()
	if err != nil {
		return domain.LineItem{}, err
	}

	discount := domain.Zero(price.Currency)
	if r.Discount != "" {
		d, err := decimal.NewFromString(r.Discount)
		if err != nil {
			return domain.LineItem{}, fmt.Errorf("%w: discount %q", domain.ErrInvalidAmount, r.Discount)
		}

		discount = domain.NewMoney(d, price.Currency)
	}

	item, err := domain.NewLineItem(r.ProductID, r.Name, price, r.Quantity, discount, r.Frozen)
	if err != nil {
		return domain.LineItem{}, err
	}

	item.StaffID = r.StaffID

	return item, nil
}

// PaymentRequest is a payment as tendered.
type PaymentRequest struct {
	Kind   string       `json:"kind"   validate:"required,oneof=cash card transfer mixed giftcard qr price_list"`
	Amount MoneyRequest `json:"amount"`
}

// CreateComandaRequest creates a pending comanda.
type CreateComandaRequest struct {
	Kind         string            `json:"kind"          validate:"required,oneof=income expense"`
	CashBox      string            `json:"cash_box"      validate:"required,oneof=petty main"`
	BusinessUnit string            `json:"business_unit" validate:"max=100"`
	CreatedBy    string            `json:"created_by"    validate:"required,max=100"`
	Observations string            `json:"observations"`
	Items        []LineItemRequest `json:"items"         validate:"required,min=1,dive"`
	Payments     []PaymentRequest  `json:"payments"      validate:"dive"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateComandaRequest) ToUseCaseInput() (usecase.CreateComandaInput, error) {
	items, payments, err := convertLines(r.Items, r.Payments)
	if err != nil {
		return usecase.CreateComandaInput{}, err
	}

	return usecase.CreateComandaInput{
		Kind:         domain.ComandaKind(r.Kind),
		CashBox:      domain.CashBox(r.CashBox),
		BusinessUnit: r.BusinessUnit,
		CreatedBy:    r.CreatedBy,
		Observations: r.Observations,
		Items:        items,
		Payments:     payments,
	}, nil
}

// AmendComandaRequest replaces the lines of a pending comanda.
type AmendComandaRequest struct {
	Observations *string           `json:"observations,omitempty"`
	Items        []LineItemRequest `json:"items"    validate:"required,min=1,dive"`
	Payments     []PaymentRequest  `json:"payments" validate:"dive"`
}

// ToUseCaseInput converts to use case input.
func (r *AmendComandaRequest) ToUseCaseInput(id string) (usecase.AmendComandaInput, error) {
	items, payments, err := convertLines(r.Items, r.Payments)
	if err != nil {
		return usecase.AmendComandaInput{}, err
	}

	return usecase.AmendComandaInput{
		ID:           id,
		Observations: r.Observations,
		Items:        items,
		Payments:     payments,
	}, nil
}

// CancelComandaRequest cancels a comanda.
type CancelComandaRequest struct {
	CancelledBy string `json:"cancelled_by" validate:"required,max=100"`
}

// TransferRequest moves validated comandas out of a cash box. Without
// comanda_ids every candidate of [from, to] moves. Partial transfers move
// only the requested amounts. from and to take the same forms as the
// range query parameters.
type TransferRequest struct {
	PerformedBy  string   `json:"performed_by" validate:"required,max=100"`
	Observations string   `json:"observations"`
	From         string   `json:"from,omitempty"`
	To           string   `json:"to,omitempty"`
	ComandaIDs   []string `json:"comanda_ids"  validate:"omitempty,dive,required"`
	Partial      bool     `json:"partial"`
	RequestedUSD string   `json:"requested_usd" validate:"omitempty,number"`
	RequestedARS string   `json:"requested_ars" validate:"omitempty,number"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(box domain.CashBox) (usecase.TransferInput, error) {
	rng, err := ParseDateRange(r.From, r.To)
	if err != nil {
		return usecase.TransferInput{}, err
	}

	return usecase.TransferInput{
		CashBox:      box,
		Range:        rng,
		ComandaIDs:   r.ComandaIDs,
		PerformedBy:  r.PerformedBy,
		Observations: r.Observations,
	}, nil
}

// ToPartialInput converts to partial transfer input. Missing amounts are zero.
func (r *TransferRequest) ToPartialInput(box domain.CashBox) (usecase.PartialTransferInput, error) {
	input, err := r.ToUseCaseInput(box)
	if err != nil {
		return usecase.PartialTransferInput{}, err
	}

	usd, err := optionalDecimal(r.RequestedUSD)
	if err != nil {
		return usecase.PartialTransferInput{}, err
	}

	ars, err := optionalDecimal(r.RequestedARS)
	if err != nil {
		return usecase.PartialTransferInput{}, err
	}

	return usecase.PartialTransferInput{
		TransferInput: input,
		RequestedUSD:  usd,
		RequestedARS:  ars,
	}, nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}

	return d, nil
}

func convertLines(itemReqs []LineItemRequest, paymentReqs []PaymentRequest) ([]domain.LineItem, []usecase.PaymentInput, error) {
	items := make([]domain.LineItem, 0, len(itemReqs))
	for _, req := range itemReqs {
		item, err := req.ToDomain()
		if err != nil {
			return nil, nil, err
		}

		items = append(items, item)
	}

	payments := make([]usecase.PaymentInput, 0, len(paymentReqs))
	for _, req := range paymentReqs {
		amount, err := req.Amount.ToMoney()
		if err != nil {
			return nil, nil, err
		}

		payments = append(payments, usecase.PaymentInput{Kind: domain.PaymentKind(req.Kind), Amount: amount})
	}

	return items, payments, nil
}
