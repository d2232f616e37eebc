package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/iho/salonledger/internal/adapter/http/dto"
	"github.com/iho/salonledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/rates/history?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/rates/history?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{"comanda not found", domain.ErrComandaNotFound, http.StatusNotFound, "comanda_not_found"},
		{"transfer not found", domain.ErrTransferRecordNotFound, http.StatusNotFound, "transfer_not_found"},
		{"already transferred", &domain.AlreadyTransferredError{ComandaID: "c-1"}, http.StatusConflict, "already_transferred"},
		{"wrapped state transition", fmt.Errorf("cancel: %w", domain.ErrInvalidStateTransition), http.StatusConflict, "invalid_state_transition"},
		{"unbalanced", domain.ErrUnbalancedPayments, http.StatusUnprocessableEntity, "unbalanced_payments"},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
		{"no rate", domain.ErrNoRateAvailable, http.StatusUnprocessableEntity, "no_rate_available"},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{"currency mismatch", domain.ErrCurrencyMismatch, http.StatusBadRequest, "currency_mismatch"},
		{"bad route", domain.ErrInvalidTransferRoute, http.StatusBadRequest, "invalid_transfer_route"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := mapDomainError(tt.err)
			if status != tt.expected || code != tt.code {
				t.Fatalf("expected %d/%s, got %d/%s", tt.expected, tt.code, status, code)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" || resp.Message != "detail" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}

func TestParseDateRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?from=2026-06-01&to=2026-06-02", nil)

	rng, err := parseDateRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rng.From.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %s", rng.From)
	}

	// a plain end date covers the whole day
	if !rng.Contains(time.Date(2026, 6, 2, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("expected end of day to be inside range ending %s", rng.To)
	}

	req = httptest.NewRequest(http.MethodGet, "/x?from=2026-06-01T10:00:00-03:00", nil)

	rng, err = parseDateRange(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rng.From.Equal(time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)) || !rng.To.IsZero() {
		t.Fatalf("unexpected range %+v", rng)
	}

	for _, query := range []string{"from=yesterday", "to=2026-13-01", "from=2026-06-02&to=2026-06-01"} {
		req = httptest.NewRequest(http.MethodGet, "/x?"+query, nil)
		if _, err := parseDateRange(req); !errors.Is(err, domain.ErrInvalidDateRange) {
			t.Fatalf("%s: expected invalid date range, got %v", query, err)
		}
	}
}
