package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidActor       = errors.New("invalid operator name")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall     = errors.New("amount below minimum allowed")
	ErrObservationsTooBig = errors.New("observations exceed length limit")
)

// Validation constants
const (
	MaxActorLength        = 255
	MaxObservationsLength = 2000
	MaxAmount             = "1000000000000" // 1 trillion
	MinAmount             = "0.01"
)

// ValidateActor validates the operator recorded as creator or performer.
func ValidateActor(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidActor)
	}

	if utf8.RuneCountInString(name) > MaxActorLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidActor, MaxActorLength)
	}

	return nil
}

// ValidateAmount validates a payment or transfer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount := decimal.RequireFromString(MinAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinAmount)
	}

	maxAmount := decimal.RequireFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateObservations limits free-text notes.
func ValidateObservations(s string) error {
	if utf8.RuneCountInString(s) > MaxObservationsLength {
		return fmt.Errorf("%w: limit is %d characters", ErrObservationsTooBig, MaxObservationsLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
