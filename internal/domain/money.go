package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the two currencies the cash boxes hold.
type Currency string

const (
	USD Currency = "USD"
	ARS Currency = "ARS"
)

// MoneyPlaces is the number of decimal places money is rounded to.
const MoneyPlaces = 2

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}

	return c, nil
}

// IsValid reports whether c is USD or ARS.
func (c Currency) IsValid() bool {
	return c == USD || c == ARS
}

// Money is an amount tagged with its currency. Arithmetic between two
// Money values of different currencies fails with ErrCurrencyMismatch.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// NewMoney builds a Money value.
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns zero in the given currency.
func Zero(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}

	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}

	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// MulInt multiplies the amount by an integer quantity.
func (m Money) MulInt(n int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(n))), Currency: m.Currency}
}

// Round rounds half-up to MoneyPlaces.
func (m Money) Round() Money {
	return Money{Amount: RoundMoney(m.Amount), Currency: m.Currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

func (m Money) String() string {
	return m.Amount.StringFixed(MoneyPlaces) + " " + string(m.Currency)
}

// RoundMoney rounds half away from zero, which is half-up for the
// non-negative amounts the ledger deals with.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Totals are per-currency sums split by comanda kind.
type Totals struct {
	IncomeUSD  decimal.Decimal
	IncomeARS  decimal.Decimal
	ExpenseUSD decimal.Decimal
	ExpenseARS decimal.Decimal
	Count      int
}

// NewTotals returns zeroed totals.
func NewTotals() Totals {
	return Totals{
		IncomeUSD:  decimal.Zero,
		IncomeARS:  decimal.Zero,
		ExpenseUSD: decimal.Zero,
		ExpenseARS: decimal.Zero,
	}
}

// NetUSD is income minus expense in USD.
func (t Totals) NetUSD() decimal.Decimal {
	return t.IncomeUSD.Sub(t.ExpenseUSD)
}

// NetARS is income minus expense in ARS.
func (t Totals) NetARS() decimal.Decimal {
	return t.IncomeARS.Sub(t.ExpenseARS)
}

// Net returns the net amount for a currency.
func (t Totals) Net(currency Currency) decimal.Decimal {
	if currency == ARS {
		return t.NetARS()
	}

	return t.NetUSD()
}

// Add accumulates an amount for the given kind.
func (t *Totals) Add(kind ComandaKind, m Money) {
	switch {
	case kind == KindIncome && m.Currency == USD:
		t.IncomeUSD = t.IncomeUSD.Add(m.Amount)
	case kind == KindIncome && m.Currency == ARS:
		t.IncomeARS = t.IncomeARS.Add(m.Amount)
	case kind == KindExpense && m.Currency == USD:
		t.ExpenseUSD = t.ExpenseUSD.Add(m.Amount)
	case kind == KindExpense && m.Currency == ARS:
		t.ExpenseARS = t.ExpenseARS.Add(m.Amount)
	}
}
