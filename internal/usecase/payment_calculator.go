package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// DiscountTable maps adjustable payment kinds to a percentage. Positive
// values discount, negative values surcharge.
type DiscountTable map[domain.PaymentKind]decimal.Decimal

// Pct returns the percentage configured for kind, zero when absent.
func (t DiscountTable) Pct(kind domain.PaymentKind) decimal.Decimal {
	if !kind.Adjustable() {
		return decimal.Zero
	}

	pct, ok := t[kind]
	if !ok {
		return decimal.Zero
	}

	return pct
}

// SettlementMode tells the calculator how a comanda is priced.
type SettlementMode struct {
	// Native keeps every amount in its own currency. Set when the comanda
	// carries frozen-price lines.
	Native bool
	Kind   domain.ComandaKind
}

// ModeFor derives the settlement mode of a comanda.
func ModeFor(c *domain.Comanda) SettlementMode {
	return SettlementMode{Native: c.HasFrozenItems(), Kind: c.Kind}
}

// PaymentCalculator derives adjustments and settled amounts of payments.
type PaymentCalculator struct {
	converter *CurrencyConverter
	discounts DiscountTable
}

// NewPaymentCalculator creates a calculator over the given discount table.
func NewPaymentCalculator(converter *CurrencyConverter, discounts DiscountTable) *PaymentCalculator {
	if discounts == nil {
		discounts = DiscountTable{}
	}

	return &PaymentCalculator{
		converter: converter,
		discounts: discounts,
	}
}

// Calculate produces a fully derived payment from its kind and native
// amount. It never reads a previously derived amount.
func (pc *PaymentCalculator) Calculate(kind domain.PaymentKind, native domain.Money, mode SettlementMode) (domain.PaymentMethod, error) {
	if !kind.IsValid() {
		return domain.PaymentMethod{}, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentKind, kind)
	}

	if !native.Currency.IsValid() {
		return domain.PaymentMethod{}, domain.ErrInvalidCurrency
	}

	if !native.Amount.IsPositive() {
		return domain.PaymentMethod{}, domain.ErrInvalidAmount
	}

	// expenses are paid out at face value
	pct := decimal.Zero
	if mode.Kind == domain.KindIncome {
		pct = pc.discounts.Pct(kind)
	}

	adjustment := domain.NewMoney(domain.RoundMoney(native.Amount.Mul(pct).Div(hundred)), native.Currency)

	final, err := native.Sub(adjustment)
	if err != nil {
		return domain.PaymentMethod{}, err
	}

	if !final.Amount.IsPositive() {
		return domain.PaymentMethod{}, fmt.Errorf("%w: %s discount consumes the payment", domain.ErrInvalidAmount, kind)
	}

	settled := final
	if !mode.Native && final.Currency == domain.ARS {
		settled, err = pc.converter.ToUSD(final)
		if err != nil {
			return domain.PaymentMethod{}, err
		}
	}

	return domain.PaymentMethod{
		Kind:          kind,
		NativeAmount:  native,
		SurchargePct:  pct,
		Adjustment:    adjustment,
		FinalAmount:   final,
		SettledAmount: settled,
	}, nil
}

// CalculateAll re-derives every payment from its native amount.
func (pc *PaymentCalculator) CalculateAll(payments []domain.PaymentMethod, mode SettlementMode) ([]domain.PaymentMethod, error) {
	out := make([]domain.PaymentMethod, 0, len(payments))

	for _, p := range payments {
		derived, err := pc.Calculate(p.Kind, p.NativeAmount, mode)
		if err != nil {
			return nil, err
		}

		out = append(out, derived)
	}

	return out, nil
}

// Pinned returns a calculator whose conversions all use one rate, read
// on first use.
func (pc *PaymentCalculator) Pinned() *PaymentCalculator {
	return &PaymentCalculator{
		converter: pc.converter.Pinned(),
		discounts: pc.discounts,
	}
}

// ItemTotals sums line subtotals per native currency.
func ItemTotals(items []domain.LineItem) map[domain.Currency]decimal.Decimal {
	totals := map[domain.Currency]decimal.Decimal{domain.USD: decimal.Zero, domain.ARS: decimal.Zero}

	for _, item := range items {
		sub := item.Subtotal()
		totals[sub.Currency] = totals[sub.Currency].Add(sub.Amount)
	}

	return totals
}

// PaymentTotals sums payment final amounts per native currency.
func PaymentTotals(payments []domain.PaymentMethod) map[domain.Currency]decimal.Decimal {
	totals := map[domain.Currency]decimal.Decimal{domain.USD: decimal.Zero, domain.ARS: decimal.Zero}

	for _, p := range payments {
		totals[p.FinalAmount.Currency] = totals[p.FinalAmount.Currency].Add(p.FinalAmount.Amount)
	}

	return totals
}

// SettlementRate is the rate a canonical comanda with ARS amounts is
// settled at; zero when no conversion applies.
func (pc *PaymentCalculator) SettlementRate(c *domain.Comanda, mode SettlementMode) (decimal.Decimal, error) {
	if mode.Native || !c.HasARSAmounts() {
		return decimal.Zero, nil
	}

	return pc.converter.CurrentRate()
}

// Reconcile checks that payment final amounts cover the items within
// tolerance. A mismatch returns *domain.UnbalancedPaymentsError.
//
// Amounts are summed in their native currency first. Frozen comandas and
// comandas priced and paid only in ARS compare each currency on its own;
// mixed canonical comandas convert each ARS total to USD once and compare
// in USD.
func (pc *PaymentCalculator) Reconcile(c *domain.Comanda, tolerance decimal.Decimal) error {
	expected := ItemTotals(c.Items)
	actual := PaymentTotals(c.Payments)

	if ModeFor(c).Native || (expected[domain.USD].IsZero() && actual[domain.USD].IsZero()) {
		for _, cur := range []domain.Currency{domain.USD, domain.ARS} {
			if err := balanced(cur, expected[cur], actual[cur], tolerance); err != nil {
				return err
			}
		}

		return nil
	}

	expectedUSD, err := pc.canonicalTotal(expected)
	if err != nil {
		return err
	}

	actualUSD, err := pc.canonicalTotal(actual)
	if err != nil {
		return err
	}

	return balanced(domain.USD, expectedUSD, actualUSD, tolerance)
}

func (pc *PaymentCalculator) canonicalTotal(totals map[domain.Currency]decimal.Decimal) (decimal.Decimal, error) {
	total := totals[domain.USD]
	if totals[domain.ARS].IsZero() {
		return total, nil
	}

	converted, err := pc.converter.ToUSD(domain.NewMoney(totals[domain.ARS], domain.ARS))
	if err != nil {
		return decimal.Zero, err
	}

	return total.Add(converted.Amount), nil
}

func balanced(cur domain.Currency, expected, actual, tolerance decimal.Decimal) error {
	if expected.Sub(actual).Abs().GreaterThan(tolerance) {
		return &domain.UnbalancedPaymentsError{
			Currency: cur,
			Expected: expected,
			Actual:   actual,
		}
	}

	return nil
}
