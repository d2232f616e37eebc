package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource tells where an operational rate came from.
type RateSource string

const (
	RateSourceManual   RateSource = "manual"
	RateSourceExternal RateSource = "external"
)

// IsValid reports whether s is a known source.
func (s RateSource) IsValid() bool {
	return s == RateSourceManual || s == RateSourceExternal
}

// ExchangeRate is an ARS-per-USD quote. Rates are append-only: a new
// operational rate is a new row, never an update.
type ExchangeRate struct {
	ID         string
	Value      decimal.Decimal
	Source     RateSource
	CapturedBy string
	CapturedAt time.Time
}

// Validate checks the rate invariant value > 0.
func (r *ExchangeRate) Validate() error {
	if !r.Value.IsPositive() {
		return ErrInvalidRate
	}

	if !r.Source.IsValid() {
		return ErrInvalidRateSource
	}

	return nil
}
