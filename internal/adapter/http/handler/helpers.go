package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iho/salonledger/internal/adapter/http/dto"
	"github.com/iho/salonledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status and code it maps to.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := mapDomainError(err)
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Code:    code,
		Message: err.Error(),
	})
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// first match wins, so wrapped typed errors resolve to their sentinel
var errorMappings = []errorMapping{
	{domain.ErrComandaNotFound, http.StatusNotFound, "comanda_not_found"},
	{domain.ErrTransferRecordNotFound, http.StatusNotFound, "transfer_not_found"},
	{domain.ErrRateNotFound, http.StatusNotFound, "rate_not_found"},
	{domain.ErrAlreadyTransferred, http.StatusConflict, "already_transferred"},
	{domain.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
	{domain.ErrDuplicateSequenceNumber, http.StatusConflict, "duplicate_sequence_number"},
	{domain.ErrOptimisticLock, http.StatusConflict, "concurrent_modification"},
	{domain.ErrUnbalancedPayments, http.StatusUnprocessableEntity, "unbalanced_payments"},
	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
	{domain.ErrNoRateAvailable, http.StatusUnprocessableEntity, "no_rate_available"},
	{domain.ErrRateUnavailable, http.StatusUnprocessableEntity, "rate_unavailable"},
	{domain.ErrInvalidRate, http.StatusBadRequest, "invalid_rate"},
	{domain.ErrInvalidRateSource, http.StatusBadRequest, "invalid_rate_source"},
	{domain.ErrInvalidCurrency, http.StatusBadRequest, "invalid_currency"},
	{domain.ErrCurrencyMismatch, http.StatusBadRequest, "currency_mismatch"},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domain.ErrAmountTooLarge, http.StatusBadRequest, "amount_too_large"},
	{domain.ErrAmountTooSmall, http.StatusBadRequest, "amount_too_small"},
	{domain.ErrInvalidKind, http.StatusBadRequest, "invalid_kind"},
	{domain.ErrInvalidCashBox, http.StatusBadRequest, "invalid_cash_box"},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{domain.ErrInvalidPaymentKind, http.StatusBadRequest, "invalid_payment_kind"},
	{domain.ErrFrozenPriceCurrency, http.StatusBadRequest, "frozen_price_currency"},
	{domain.ErrNoItems, http.StatusBadRequest, "no_items"},
	{domain.ErrInvalidTransferRoute, http.StatusBadRequest, "invalid_transfer_route"},
	{domain.ErrEmptyTransfer, http.StatusBadRequest, "empty_transfer"},
	{domain.ErrCashBoxMismatch, http.StatusBadRequest, "cash_box_mismatch"},
	{domain.ErrInvalidDateRange, http.StatusBadRequest, "invalid_date_range"},
	{domain.ErrInvalidActor, http.StatusBadRequest, "invalid_actor"},
	{domain.ErrObservationsTooBig, http.StatusBadRequest, "observations_too_long"},
}

// mapDomainError maps domain errors to HTTP status codes and error codes.
func mapDomainError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}

	return http.StatusInternalServerError, "internal_error"
}

// decodeJSON decodes and validates a request body.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return dto.Validate(dst)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return i
}

// parseDateRange reads the from and to query parameters. Both accept
// RFC 3339 or a plain date; a plain "to" date covers that whole day.
func parseDateRange(r *http.Request) (domain.DateRange, error) {
	q := r.URL.Query()

	return dto.ParseDateRange(q.Get("from"), q.Get("to"))
}

// parseReportFilter reads a date range plus the kind and business_unit
// query parameters.
func parseReportFilter(r *http.Request) (domain.ReportFilter, error) {
	rng, err := parseDateRange(r)
	if err != nil {
		return domain.ReportFilter{}, err
	}

	return domain.ReportFilter{
		Range:        rng,
		Kind:         domain.ComandaKind(r.URL.Query().Get("kind")),
		BusinessUnit: r.URL.Query().Get("business_unit"),
	}, nil
}
