package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Rate errors
	ErrInvalidRate       = errors.New("exchange rate must be positive")
	ErrInvalidRateSource = errors.New("invalid exchange rate source")
	ErrNoRateAvailable   = errors.New("no operational exchange rate has been set")
	ErrRateUnavailable   = errors.New("exchange rate unavailable for conversion")
	ErrRateNotFound      = errors.New("exchange rate not found")

	// Money errors
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrInvalidAmount    = errors.New("amount must be positive")

	// Comanda errors
	ErrComandaNotFound         = errors.New("comanda not found")
	ErrInvalidKind             = errors.New("invalid comanda kind")
	ErrInvalidCashBox          = errors.New("invalid cash box")
	ErrInvalidQuantity         = errors.New("quantity must be positive")
	ErrInvalidPaymentKind      = errors.New("invalid payment kind")
	ErrFrozenPriceCurrency     = errors.New("frozen prices must be in ARS")
	ErrNoItems                 = errors.New("comanda has no line items")
	ErrUnbalancedPayments      = errors.New("payments do not reconcile with items")
	ErrDuplicateSequenceNumber = errors.New("duplicate sequence number")
	ErrInvalidStateTransition  = errors.New("invalid state transition")
	ErrOptimisticLock          = errors.New("comanda was modified concurrently")

	// Transfer errors
	ErrAlreadyTransferred     = errors.New("comanda already transferred")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrTransferRecordNotFound = errors.New("transfer record not found")
	ErrInvalidTransferRoute   = errors.New("transfers only move petty cash into main cash")
	ErrEmptyTransfer          = errors.New("transfer has no comandas")
	ErrCashBoxMismatch        = errors.New("comanda belongs to another cash box")
	ErrInvalidDateRange       = errors.New("date range end is before its start")
)

// UnbalancedPaymentsError reports a failed reconciliation for one currency.
type UnbalancedPaymentsError struct {
	Currency Currency
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *UnbalancedPaymentsError) Error() string {
	return fmt.Sprintf("%s: %s expected %s, got %s",
		ErrUnbalancedPayments, e.Currency, e.Expected.StringFixed(MoneyPlaces), e.Actual.StringFixed(MoneyPlaces))
}

func (e *UnbalancedPaymentsError) Unwrap() error { return ErrUnbalancedPayments }

// InsufficientFundsError reports a partial transfer asking for more than is available.
type InsufficientFundsError struct {
	Currency  Currency
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: %s requested %s, available %s",
		ErrInsufficientFunds, e.Currency, e.Requested.StringFixed(MoneyPlaces), e.Available.StringFixed(MoneyPlaces))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// AlreadyTransferredError names the comanda that was already moved.
type AlreadyTransferredError struct {
	ComandaID string
}

func (e *AlreadyTransferredError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyTransferred, e.ComandaID)
}

func (e *AlreadyTransferredError) Unwrap() error { return ErrAlreadyTransferred }

// InvalidStateTransitionError reports a refused lifecycle move.
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidStateTransition, e.From, e.To)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }
