package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/salonledger/internal/adapter/http/dto"
	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

func money(amount string, cur domain.Currency) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(amount), cur)
}

func pendingComanda(id string, items ...domain.LineItem) *domain.Comanda {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	return &domain.Comanda{
		ID:              id,
		SequenceNumber:  1,
		Kind:            domain.KindIncome,
		CashBox:         domain.CashBoxPetty,
		CreatedBy:       "reception",
		ValidationState: domain.ValidationPending,
		TransferState:   domain.TransferNone,
		Items:           items,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func createRequest() dto.CreateComandaRequest {
	return dto.CreateComandaRequest{
		Kind:      "income",
		CashBox:   "petty",
		CreatedBy: "reception",
		Items: []dto.LineItemRequest{
			{ProductID: "cut", Name: "Haircut", StaffID: "ana", UnitPrice: dto.MoneyRequest{Amount: "20", Currency: "USD"}, Quantity: 1},
			{ProductID: "color", UnitPrice: dto.MoneyRequest{Amount: "30000", Currency: "ARS"}, Quantity: 1, Frozen: true},
		},
		Payments: []dto.PaymentRequest{
			{Kind: "cash", Amount: dto.MoneyRequest{Amount: "20", Currency: "USD"}},
			{Kind: "transfer", Amount: dto.MoneyRequest{Amount: "30000", Currency: "ARS"}},
		},
	}
}

func TestComandaHandler_Create(t *testing.T) {
	var captured usecase.CreateComandaInput

	stub := &comandaServiceStub{
		createFn: func(_ context.Context, input usecase.CreateComandaInput) (*domain.Comanda, error) {
			captured = input
			return pendingComanda("c-1", input.Items...), nil
		},
	}
	h := NewComandaHandler(stub, fixedConverter{rate: decimal.RequireFromString("1000")})

	rec := serve(t, http.MethodPost, "/comandas", "/comandas", createRequest(), h.Create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, domain.KindIncome, captured.Kind)
	assert.Equal(t, domain.CashBoxPetty, captured.CashBox)
	require.Len(t, captured.Items, 2)
	assert.Equal(t, "ana", captured.Items[0].StaffID)
	assert.True(t, captured.Items[1].Frozen)
	require.Len(t, captured.Payments, 2)
	assert.Equal(t, domain.PaymentTransfer, captured.Payments[1].Kind)

	resp := decodeBody[dto.ComandaResponse](t, rec)
	assert.Equal(t, "c-1", resp.ID)
	assert.Equal(t, "pending", resp.ValidationState)
	require.Len(t, resp.Items, 2)
	assert.Nil(t, resp.Items[0].AdvisoryUSD)
	require.NotNil(t, resp.Items[1].AdvisoryUSD)
	assert.Equal(t, "30.00", resp.Items[1].AdvisoryUSD.Amount)
}

func TestComandaHandler_CreateRejectsBadInput(t *testing.T) {
	stub := &comandaServiceStub{
		createFn: func(context.Context, usecase.CreateComandaInput) (*domain.Comanda, error) {
			t.Fatal("use case must not be called")
			return nil, nil
		},
	}
	h := NewComandaHandler(stub, nil)

	tests := []struct {
		name   string
		mutate func(*dto.CreateComandaRequest)
	}{
		{"unknown kind", func(r *dto.CreateComandaRequest) { r.Kind = "refund" }},
		{"unknown cash box", func(r *dto.CreateComandaRequest) { r.CashBox = "safe" }},
		{"no items", func(r *dto.CreateComandaRequest) { r.Items = nil }},
		{"zero quantity", func(r *dto.CreateComandaRequest) { r.Items[0].Quantity = 0 }},
		{"bad currency", func(r *dto.CreateComandaRequest) { r.Items[0].UnitPrice.Currency = "EUR" }},
		{"frozen usd", func(r *dto.CreateComandaRequest) { r.Items[0].Frozen = true }},
		{"unknown payment", func(r *dto.CreateComandaRequest) { r.Payments[0].Kind = "crypto" }},
		{"missing creator", func(r *dto.CreateComandaRequest) { r.CreatedBy = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createRequest()
			tt.mutate(&req)

			rec := serve(t, http.MethodPost, "/comandas", "/comandas", req, h.Create)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestComandaHandler_Lifecycle(t *testing.T) {
	validated := pendingComanda("c-1", domain.LineItem{
		ProductID: "cut", UnitPrice: money("20", domain.USD), Quantity: 1, Discount: money("0", domain.USD),
	})
	validated.ValidationState = domain.ValidationValidated
	validated.SettlementRate = decimal.RequireFromString("1000")

	var cancelledBy string
	var amended usecase.AmendComandaInput

	stub := &comandaServiceStub{
		getFn: func(_ context.Context, id string) (*domain.Comanda, error) {
			if id != "c-1" {
				return nil, domain.ErrComandaNotFound
			}

			return validated, nil
		},
		validateFn: func(_ context.Context, id string) (*domain.Comanda, error) {
			return nil, &domain.UnbalancedPaymentsError{
				Currency: domain.USD,
				Expected: decimal.RequireFromString("20"),
				Actual:   decimal.RequireFromString("15"),
			}
		},
		cancelFn: func(_ context.Context, id, by string) (*domain.Comanda, error) {
			cancelledBy = by
			return nil, &domain.InvalidStateTransitionError{From: "transferred", To: "cancelled"}
		},
		amendFn: func(_ context.Context, input usecase.AmendComandaInput) (*domain.Comanda, error) {
			amended = input
			return pendingComanda(input.ID, input.Items...), nil
		},
	}
	h := NewComandaHandler(stub, nil)

	rec := serve(t, http.MethodGet, "/comandas/{id}", "/comandas/c-1", nil, h.Get)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000", decodeBody[dto.ComandaResponse](t, rec).SettlementRate)

	rec = serve(t, http.MethodGet, "/comandas/{id}", "/comandas/missing", nil, h.Get)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, http.MethodPost, "/comandas/{id}/validate", "/comandas/c-1/validate", nil, h.Validate)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "unbalanced_payments", decodeBody[dto.ErrorResponse](t, rec).Code)

	rec = serve(t, http.MethodPost, "/comandas/{id}/cancel", "/comandas/c-1/cancel",
		dto.CancelComandaRequest{CancelledBy: "manager"}, h.Cancel)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "manager", cancelledBy)

	rec = serve(t, http.MethodPost, "/comandas/{id}/cancel", "/comandas/c-1/cancel", dto.CancelComandaRequest{}, h.Cancel)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	note := "client asked for a different shade"
	req := createRequest()
	rec = serve(t, http.MethodPut, "/comandas/{id}", "/comandas/c-1", dto.AmendComandaRequest{
		Observations: &note,
		Items:        req.Items[:1],
		Payments:     req.Payments[:1],
	}, h.Amend)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "c-1", amended.ID)
	require.NotNil(t, amended.Observations)
	assert.Equal(t, note, *amended.Observations)
	assert.Len(t, amended.Items, 1)
}
