package handler

import (
	"net/http"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/adapter/http/dto"
	"github.com/iho/salonledger/internal/domain"
)

const defaultHistoryLimit = 20

// RateHandler handles exchange rate requests.
type RateHandler struct {
	rates     RateService
	converter Converter
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rates RateService, converter Converter) *RateHandler {
	return &RateHandler{rates: rates, converter: converter}
}

// Set records a new operational rate.
func (h *RateHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req dto.SetRateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	value, source, err := req.Parse()
	if err != nil {
		writeDomainError(w, "invalid rate", err)
		return
	}

	rate, err := h.rates.SetOperationalRate(r.Context(), value, source, req.CapturedBy)
	if err != nil {
		writeDomainError(w, "failed to set rate", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewRateResponse(rate))
}

// Current returns the operational rate.
func (h *RateHandler) Current(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.Current()
	if err != nil {
		writeDomainError(w, "no operational rate", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewRateResponse(rate))
}

// History returns recent rates, newest first.
func (h *RateHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultHistoryLimit)

	rates := slices.Collect(h.rates.History(limit))

	writeJSON(w, http.StatusOK, dto.NewRateListResponse(rates))
}

// Convert converts ?amount=&currency= into the other currency.
func (h *RateHandler) Convert(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	currency, err := domain.ParseCurrency(r.URL.Query().Get("currency"))
	if err != nil {
		writeDomainError(w, "invalid currency", err)
		return
	}

	target := domain.USD
	if currency == domain.USD {
		target = domain.ARS
	}

	from := domain.NewMoney(amount, currency)

	to, err := h.converter.Convert(from, target)
	if err != nil {
		writeDomainError(w, "conversion failed", err)
		return
	}

	rate, err := h.converter.CurrentRate()
	if err != nil {
		writeDomainError(w, "conversion failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConversionResponse{
		From: dto.NewMoneyResponse(from),
		To:   dto.NewMoneyResponse(to),
		Rate: rate.String(),
	})
}
