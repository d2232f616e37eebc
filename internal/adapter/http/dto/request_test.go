package dto

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/salonledger/internal/domain"
)

func validCreate() CreateComandaRequest {
	return CreateComandaRequest{
		Kind:      "expense",
		CashBox:   "petty",
		CreatedBy: "reception",
		Items: []LineItemRequest{
			{ProductID: "supplies", UnitPrice: MoneyRequest{Amount: "1500.50", Currency: "ARS"}, Quantity: 2, Discount: "1"},
		},
		Payments: []PaymentRequest{
			{Kind: "cash", Amount: MoneyRequest{Amount: "3000", Currency: "ARS"}},
		},
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	req := validCreate()
	req.Kind = "refund"
	req.Items[0].Quantity = 0

	err := Validate(&req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CreateComandaRequest.Kind failed oneof=income expense")
	assert.Contains(t, err.Error(), "Quantity failed")

	ok := validCreate()
	assert.NoError(t, Validate(&ok))
}

func TestCreateComandaRequest_ToUseCaseInput(t *testing.T) {
	req := validCreate()

	input, err := req.ToUseCaseInput()
	require.NoError(t, err)

	assert.Equal(t, domain.KindExpense, input.Kind)
	require.Len(t, input.Items, 1)
	assert.Equal(t, "3001.00", input.Items[0].UnitPrice.MulInt(2).Amount.StringFixed(2))
	assert.Equal(t, domain.ARS, input.Items[0].Discount.Currency)
	assert.Equal(t, "1", input.Items[0].Discount.Amount.String())
	require.Len(t, input.Payments, 1)
	assert.Equal(t, domain.PaymentCash, input.Payments[0].Kind)

	req.Items[0].Discount = "lots"
	_, err = req.ToUseCaseInput()
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	req = validCreate()
	req.Items[0].UnitPrice.Currency = "USD"
	req.Items[0].Frozen = true
	_, err = req.ToUseCaseInput()
	assert.ErrorIs(t, err, domain.ErrFrozenPriceCurrency)
}

func TestTransferRequest_ToPartialInput(t *testing.T) {
	req := TransferRequest{PerformedBy: "manager", From: "2026-06-01T09:00:00-03:00", RequestedARS: "25000"}

	input, err := req.ToPartialInput(domain.CashBoxPetty)
	require.NoError(t, err)

	assert.Equal(t, domain.CashBoxPetty, input.CashBox)
	assert.Equal(t, time.UTC, input.Range.From.Location())
	assert.True(t, input.Range.From.Equal(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, input.Range.To.IsZero())
	assert.True(t, input.RequestedUSD.IsZero())
	assert.Equal(t, "25000", input.RequestedARS.String())

	req.RequestedUSD = "1e"
	_, err = req.ToPartialInput(domain.CashBoxPetty)
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
}

func TestTransferRequest_PlainDates(t *testing.T) {
	req := TransferRequest{PerformedBy: "manager", From: "2026-06-01", To: "2026-06-02"}

	input, err := req.ToUseCaseInput(domain.CashBoxPetty)
	require.NoError(t, err)

	assert.True(t, input.Range.From.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, input.Range.Contains(time.Date(2026, 6, 2, 23, 59, 59, 0, time.UTC)))

	for _, bad := range []TransferRequest{
		{PerformedBy: "manager", From: "yesterday"},
		{PerformedBy: "manager", From: "2026-06-03", To: "2026-06-02"},
	} {
		_, err := bad.ToUseCaseInput(domain.CashBoxPetty)
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

		_, err = bad.ToPartialInput(domain.CashBoxPetty)
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	}
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		wantFrom time.Time
		wantTo   time.Time
		wantErr  bool
	}{
		{name: "open", wantFrom: time.Time{}, wantTo: time.Time{}},
		{
			name: "plain dates", from: "2026-06-01", to: "2026-06-01",
			wantFrom: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 6, 1, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name: "timestamps kept exact", from: "2026-06-01T10:00:00-03:00", to: "2026-06-01T18:00:00Z",
			wantFrom: time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
		},
		{name: "bad to", to: "2026-13-01", wantErr: true},
		{name: "reversed", from: "2026-06-02", to: "2026-06-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := ParseDateRange(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
				return
			}

			require.NoError(t, err)
			assert.True(t, rng.From.Equal(tt.wantFrom), "from %s", rng.From)
			assert.True(t, rng.To.Equal(tt.wantTo), "to %s", rng.To)
		})
	}
}

func TestSetRateRequest_Parse(t *testing.T) {
	req := SetRateRequest{Value: "1180.25", CapturedBy: "admin"}

	value, source, err := req.Parse()
	require.NoError(t, err)
	assert.Equal(t, "1180.25", value.String())
	assert.Equal(t, domain.RateSourceManual, source)

	req.Source = "bcra"
	err = Validate(&req)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Source"))
}
