package usecase

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
)

// RateReader supplies the operational rate to a converter.
type RateReader interface {
	Current() (*domain.ExchangeRate, error)
}

// CurrencyConverter converts money between USD and ARS at the operational
// rate. Results are rounded half-up to two places at the point of
// conversion and never before.
type CurrencyConverter struct {
	rates RateReader
}

// NewCurrencyConverter creates a converter reading rates from rates.
func NewCurrencyConverter(rates RateReader) *CurrencyConverter {
	return &CurrencyConverter{rates: rates}
}

// ToUSD converts an ARS amount: amount / rate.
func (c *CurrencyConverter) ToUSD(m domain.Money) (domain.Money, error) {
	if m.Currency != domain.ARS {
		return domain.Money{}, fmt.Errorf("%w: expected ARS, got %s", domain.ErrCurrencyMismatch, m.Currency)
	}

	rate, err := c.rate()
	if err != nil {
		return domain.Money{}, err
	}

	return domain.NewMoney(domain.RoundMoney(m.Amount.Div(rate.Value)), domain.USD), nil
}

// ToARS converts a USD amount: amount * rate.
func (c *CurrencyConverter) ToARS(m domain.Money) (domain.Money, error) {
	if m.Currency != domain.USD {
		return domain.Money{}, fmt.Errorf("%w: expected USD, got %s", domain.ErrCurrencyMismatch, m.Currency)
	}

	rate, err := c.rate()
	if err != nil {
		return domain.Money{}, err
	}

	return domain.NewMoney(domain.RoundMoney(m.Amount.Mul(rate.Value)), domain.ARS), nil
}

// Convert moves m into target, returning it unchanged when already there.
func (c *CurrencyConverter) Convert(m domain.Money, target domain.Currency) (domain.Money, error) {
	switch {
	case m.Currency == target:
		return m, nil
	case target == domain.USD:
		return c.ToUSD(m)
	case target == domain.ARS:
		return c.ToARS(m)
	default:
		return domain.Money{}, domain.ErrInvalidCurrency
	}
}

// AdvisoryUSD is the display-only USD figure of a frozen line. It is never
// stored on the comanda.
func (c *CurrencyConverter) AdvisoryUSD(item domain.LineItem) (domain.Money, error) {
	return c.Convert(item.Subtotal(), domain.USD)
}

// CurrentRate returns the operational rate value or ErrRateUnavailable.
func (c *CurrencyConverter) CurrentRate() (decimal.Decimal, error) {
	rate, err := c.rate()
	if err != nil {
		return decimal.Zero, err
	}

	return rate.Value, nil
}

// Pinned returns a converter that reads the operational rate once, on
// first use, and keeps it for every later conversion.
func (c *CurrencyConverter) Pinned() *CurrencyConverter {
	return &CurrencyConverter{rates: &pinnedRate{src: c.rates}}
}

type pinnedRate struct {
	src  RateReader
	once sync.Once
	rate *domain.ExchangeRate
	err  error
}

func (p *pinnedRate) Current() (*domain.ExchangeRate, error) {
	p.once.Do(func() {
		p.rate, p.err = p.src.Current()
	})

	return p.rate, p.err
}

func (c *CurrencyConverter) rate() (*domain.ExchangeRate, error) {
	rate, err := c.rates.Current()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRateUnavailable, err)
	}

	return rate, nil
}
