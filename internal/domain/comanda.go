package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CashBox identifies one of the two cooperating cash boxes.
type CashBox string

const (
	CashBoxPetty CashBox = "petty"
	CashBoxMain  CashBox = "main"
)

// CashBoxes lists every cash box in a stable order.
var CashBoxes = []CashBox{CashBoxPetty, CashBoxMain}

// IsValid reports whether b is a known cash box.
func (b CashBox) IsValid() bool {
	return b == CashBoxPetty || b == CashBoxMain
}

// ComandaKind separates money coming in from money going out.
type ComandaKind string

const (
	KindIncome  ComandaKind = "income"
	KindExpense ComandaKind = "expense"
)

// IsValid reports whether k is a known kind.
func (k ComandaKind) IsValid() bool {
	return k == KindIncome || k == KindExpense
}

// ValidationState is the ledger lifecycle of a comanda.
type ValidationState string

const (
	ValidationPending   ValidationState = "pending"
	ValidationValidated ValidationState = "validated"
	ValidationCancelled ValidationState = "cancelled"
)

// IsValid reports whether s is a known state.
func (s ValidationState) IsValid() bool {
	return s == ValidationPending || s == ValidationValidated || s == ValidationCancelled
}

// TransferState tracks whether a comanda has been moved to the main cash box.
type TransferState string

const (
	TransferNone        TransferState = "none"
	TransferPartial     TransferState = "partially_transferred"
	TransferTransferred TransferState = "transferred"
)

// CanTransitionTo enforces forward-only transfer state changes.
func (s TransferState) CanTransitionTo(next TransferState) bool {
	switch s {
	case TransferNone:
		return next == TransferPartial || next == TransferTransferred
	case TransferPartial:
		return next == TransferTransferred
	default:
		return false
	}
}

// LineItem is a priced line of a comanda. Frozen lines carry an ARS price
// that is authoritative and is never recomputed from an exchange rate.
type LineItem struct {
	ProductID    string
	NameSnapshot string
	StaffID      string
	UnitPrice    Money
	Quantity     int
	Discount     Money
	Frozen       bool
}

// NewLineItem builds a line item and checks its invariants once.
func NewLineItem(productID, name string, unitPrice Money, quantity int, discount Money, frozen bool) (LineItem, error) {
	if discount.Currency == "" {
		discount = Zero(unitPrice.Currency)
	}

	item := LineItem{
		ProductID:    productID,
		NameSnapshot: name,
		UnitPrice:    unitPrice,
		Quantity:     quantity,
		Discount:     discount,
		Frozen:       frozen,
	}

	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}

	return item, nil
}

// Validate checks the line item invariants.
func (i LineItem) Validate() error {
	if !i.UnitPrice.Currency.IsValid() {
		return fmt.Errorf("%w: line %q", ErrInvalidCurrency, i.ProductID)
	}

	if i.Quantity <= 0 {
		return fmt.Errorf("%w: line %q", ErrInvalidQuantity, i.ProductID)
	}

	if i.UnitPrice.IsNegative() || i.Discount.IsNegative() {
		return fmt.Errorf("%w: line %q", ErrInvalidAmount, i.ProductID)
	}

	if i.Discount.Currency != i.UnitPrice.Currency {
		return fmt.Errorf("%w: line %q discount", ErrCurrencyMismatch, i.ProductID)
	}

	if i.Frozen && i.UnitPrice.Currency != ARS {
		return fmt.Errorf("%w: line %q", ErrFrozenPriceCurrency, i.ProductID)
	}

	if i.Discount.Amount.GreaterThan(i.UnitPrice.MulInt(i.Quantity).Amount) {
		return fmt.Errorf("%w: line %q discount exceeds gross", ErrInvalidAmount, i.ProductID)
	}

	return nil
}

// Subtotal is unitPrice*quantity - discount, in the unit price currency.
func (i LineItem) Subtotal() Money {
	gross := i.UnitPrice.MulInt(i.Quantity)

	return Money{Amount: gross.Amount.Sub(i.Discount.Amount), Currency: gross.Currency}
}

// PaymentKind is how a payment was settled.
type PaymentKind string

const (
	PaymentCash      PaymentKind = "cash"
	PaymentCard      PaymentKind = "card"
	PaymentTransfer  PaymentKind = "transfer"
	PaymentMixed     PaymentKind = "mixed"
	PaymentGiftCard  PaymentKind = "giftcard"
	PaymentQR        PaymentKind = "qr"
	PaymentPriceList PaymentKind = "price_list"
)

// IsValid reports whether k is a known payment kind.
func (k PaymentKind) IsValid() bool {
	switch k {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentMixed, PaymentGiftCard, PaymentQR, PaymentPriceList:
		return true
	}

	return false
}

// Adjustable reports whether the kind takes a configured discount or surcharge.
func (k PaymentKind) Adjustable() bool {
	return k == PaymentCash || k == PaymentCard || k == PaymentTransfer
}

// PaymentMethod is one payment of a comanda.
//
// FinalAmount stays in the native currency. SettledAmount is the figure
// used for aggregation: the USD equivalent when the comanda is priced in
// the canonical currency, otherwise equal to FinalAmount.
type PaymentMethod struct {
	Kind          PaymentKind
	NativeAmount  Money
	SurchargePct  decimal.Decimal
	Adjustment    Money
	FinalAmount   Money
	SettledAmount Money
}

// Comanda is a single income or expense transaction of a cash box.
type Comanda struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ValidatedAt     *time.Time
	CancelledAt     *time.Time
	ID              string
	CashBox         CashBox
	Kind            ComandaKind
	BusinessUnit    string
	CreatedBy       string
	CancelledBy     string
	Observations    string
	TransferID      string
	ValidationState ValidationState
	TransferState   TransferState
	Items           []LineItem
	Payments        []PaymentMethod
	// SettlementRate is the ARS-per-USD rate applied at validation, zero
	// when nothing had to be converted.
	SettlementRate  decimal.Decimal
	SequenceNumber  int64
	Version         int64
}

// Validate checks the structural invariants of a comanda.
func (c *Comanda) Validate() error {
	if !c.Kind.IsValid() {
		return ErrInvalidKind
	}

	if !c.CashBox.IsValid() {
		return ErrInvalidCashBox
	}

	if len(c.Items) == 0 {
		return ErrNoItems
	}

	for _, item := range c.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	for _, p := range c.Payments {
		if !p.Kind.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidPaymentKind, p.Kind)
		}

		if !p.NativeAmount.Currency.IsValid() {
			return ErrInvalidCurrency
		}

		if !p.NativeAmount.Amount.IsPositive() {
			return ErrInvalidAmount
		}
	}

	return nil
}

// HasFrozenItems reports whether any line has a frozen ARS price. Such a
// comanda is settled entirely in native currencies.
func (c *Comanda) HasFrozenItems() bool {
	for _, item := range c.Items {
		if item.Frozen {
			return true
		}
	}

	return false
}

// HasARSAmounts reports whether any line or payment is priced in ARS.
func (c *Comanda) HasARSAmounts() bool {
	for _, item := range c.Items {
		if item.UnitPrice.Currency == ARS {
			return true
		}
	}

	for _, p := range c.Payments {
		if p.NativeAmount.Currency == ARS {
			return true
		}
	}

	return false
}

// CanCancel returns nil when the comanda may move to cancelled.
func (c *Comanda) CanCancel() error {
	if c.TransferState != TransferNone {
		return &AlreadyTransferredError{ComandaID: c.ID}
	}

	if c.ValidationState == ValidationCancelled {
		return &InvalidStateTransitionError{From: string(c.ValidationState), To: string(ValidationCancelled)}
	}

	return nil
}

// MarkValidated moves a pending comanda to validated.
func (c *Comanda) MarkValidated(now time.Time) error {
	if c.ValidationState != ValidationPending {
		return &InvalidStateTransitionError{From: string(c.ValidationState), To: string(ValidationValidated)}
	}

	c.ValidationState = ValidationValidated
	c.ValidatedAt = &now
	c.UpdatedAt = now

	return nil
}

// MarkCancelled moves the comanda to the terminal cancelled state.
func (c *Comanda) MarkCancelled(now time.Time, by string) error {
	if err := c.CanCancel(); err != nil {
		return err
	}

	c.ValidationState = ValidationCancelled
	c.CancelledAt = &now
	c.CancelledBy = by
	c.UpdatedAt = now

	return nil
}

// Transferable reports whether the comanda may join a transfer candidate set.
func (c *Comanda) Transferable() bool {
	return c.ValidationState == ValidationValidated && c.TransferState != TransferTransferred
}

// Clone returns a deep copy.
func (c *Comanda) Clone() *Comanda {
	cp := *c
	cp.Items = append([]LineItem(nil), c.Items...)
	cp.Payments = append([]PaymentMethod(nil), c.Payments...)

	if c.ValidatedAt != nil {
		t := *c.ValidatedAt
		cp.ValidatedAt = &t
	}

	if c.CancelledAt != nil {
		t := *c.CancelledAt
		cp.CancelledAt = &t
	}

	return &cp
}

// ComandaFilter selects comandas for listing and reporting.
type ComandaFilter struct {
	CashBox         CashBox
	Range           DateRange
	Kind            ComandaKind
	ValidationState ValidationState
	BusinessUnit    string
}

// Matches reports whether c satisfies the filter.
func (f ComandaFilter) Matches(c *Comanda) bool {
	if f.CashBox != "" && c.CashBox != f.CashBox {
		return false
	}

	if f.Kind != "" && c.Kind != f.Kind {
		return false
	}

	if f.ValidationState != "" && c.ValidationState != f.ValidationState {
		return false
	}

	if f.BusinessUnit != "" && c.BusinessUnit != f.BusinessUnit {
		return false
	}

	return f.Range.Contains(c.CreatedAt)
}
