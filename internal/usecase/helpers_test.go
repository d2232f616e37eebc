package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/salonledger/internal/adapter/repository/memory"
	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++

	return fmt.Sprintf("id-%04d", g.n)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time and moves it one second forward so
// every record gets a distinct timestamp.
func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	c.now = c.now.Add(time.Second)

	return now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type env struct {
	store     *memory.Store
	comandas  *memory.ComandaRepository
	transfers *memory.TransferRecordRepository
	rates     *memory.RateRepository
	outbox    *memory.OutboxRepository
	clock     *testClock
	provider  *usecase.ExchangeRateProvider
	converter *usecase.CurrencyConverter
	calc      *usecase.PaymentCalculator
	ledger    *usecase.LedgerUseCase
	transfer  *usecase.TransferUseCase
	recon     *usecase.ReconciliationUseCase
}

func newEnv(t *testing.T, discounts usecase.DiscountTable) *env {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	ids := &seqIDs{}
	clock := newTestClock()
	locker := usecase.NewCashBoxLocker()

	e := &env{
		store:     store,
		comandas:  memory.NewComandaRepository(store),
		transfers: memory.NewTransferRecordRepository(store),
		rates:     memory.NewRateRepository(store),
		outbox:    memory.NewOutboxRepository(store),
		clock:     clock,
	}

	e.provider = usecase.NewExchangeRateProvider(txm, e.rates, e.outbox, nil, ids, nil, zerolog.Nop(),
		usecase.RateProviderConfig{HistorySize: 10, Clock: clock.Now})
	e.converter = usecase.NewCurrencyConverter(e.provider)
	e.calc = usecase.NewPaymentCalculator(e.converter, discounts)
	e.ledger = usecase.NewLedgerUseCase(txm, e.comandas, e.outbox, e.calc, locker, ids, nil,
		usecase.LedgerConfig{Clock: clock.Now})
	e.transfer = usecase.NewTransferUseCase(txm, e.comandas, e.transfers, e.outbox, locker, ids, nil, clock.Now)
	e.recon = usecase.NewReconciliationUseCase(e.comandas, e.transfers)

	return e
}

func (e *env) setRate(t *testing.T, value string) {
	t.Helper()

	_, err := e.provider.SetOperationalRate(context.Background(), decimal.RequireFromString(value), domain.RateSourceManual, "tester")
	require.NoError(t, err)
}

func usd(s string) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(s), domain.USD)
}

func ars(s string) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(s), domain.ARS)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(t *testing.T, productID string, price domain.Money, qty int, frozen bool) domain.LineItem {
	t.Helper()

	item, err := domain.NewLineItem(productID, "name "+productID, price, qty, domain.Money{}, frozen)
	require.NoError(t, err)

	return item
}

func pay(kind domain.PaymentKind, amount domain.Money) usecase.PaymentInput {
	return usecase.PaymentInput{Kind: kind, Amount: amount}
}

// income creates and validates a petty-cash income comanda with a single
// line and a single matching cash payment.
func (e *env) income(t *testing.T, amount domain.Money) *domain.Comanda {
	t.Helper()

	ctx := context.Background()

	c, err := e.ledger.CreateComanda(ctx, usecase.CreateComandaInput{
		Kind:      domain.KindIncome,
		CashBox:   domain.CashBoxPetty,
		CreatedBy: "reception",
		Items:     []domain.LineItem{line(t, "svc", amount, 1, false)},
		Payments:  []usecase.PaymentInput{pay(domain.PaymentCash, amount)},
	})
	require.NoError(t, err)

	c, err = e.ledger.ValidateComanda(ctx, c.ID)
	require.NoError(t, err)

	return c
}

func (e *env) unpublished(t *testing.T, eventType string) int {
	t.Helper()

	events, err := e.outbox.GetUnpublished(context.Background(), 0)
	require.NoError(t, err)

	n := 0
	for _, ev := range events {
		if ev.EventType == eventType {
			n++
		}
	}

	return n
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()

	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}
