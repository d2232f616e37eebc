package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is an inclusive range over comanda creation time. A zero
// bound leaves that side open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Validate rejects inverted ranges.
func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return ErrInvalidDateRange
	}

	return nil
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}

	if !r.To.IsZero() && t.After(r.To) {
		return false
	}

	return true
}

// TransferRecord (traspaso) is the immutable record of moving validated
// comandas from the petty cash box to the main cash box.
//
// TotalUSD/TotalARS hold the amount that left the source box. For a
// partial transfer the residual is what stays behind, so
// total + residual equals the net available at transfer time.
type TransferRecord struct {
	PerformedAt        time.Time
	Range              DateRange
	ID                 string
	SourceCashBox      CashBox
	DestinationCashBox CashBox
	PerformedBy        string
	Observations       string
	ComandaIDs         []string
	TotalUSD           decimal.Decimal
	TotalARS           decimal.Decimal
	ResidualUSD        decimal.Decimal
	ResidualARS        decimal.Decimal
	Partial            bool
}

// Validate checks the record before it is persisted.
func (t *TransferRecord) Validate() error {
	if t.SourceCashBox != CashBoxPetty || t.DestinationCashBox != CashBoxMain {
		return ErrInvalidTransferRoute
	}

	if len(t.ComandaIDs) == 0 {
		return ErrEmptyTransfer
	}

	// a full transfer may carry a negative net when expenses exceeded
	// income; a partial one moves only what was requested
	if t.Partial && (t.TotalUSD.IsNegative() || t.TotalARS.IsNegative()) {
		return ErrInvalidAmount
	}

	if !t.Partial && (!t.ResidualUSD.IsZero() || !t.ResidualARS.IsZero()) {
		return ErrInvalidAmount
	}

	return t.Range.Validate()
}

// Involves reports whether the record moved money out of or into box.
func (t *TransferRecord) Involves(box CashBox) bool {
	return t.SourceCashBox == box || t.DestinationCashBox == box
}
