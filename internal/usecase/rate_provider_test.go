package usecase_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/salonledger/internal/adapter/repository/memory"
	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
	"github.com/iho/salonledger/internal/usecase/mocks"
)

type stubCache struct {
	rate   *domain.ExchangeRate
	setErr error
	sets   int
}

func (c *stubCache) Get(context.Context) (*domain.ExchangeRate, error) {
	if c.rate == nil {
		return nil, domain.ErrRateNotFound
	}

	cp := *c.rate

	return &cp, nil
}

func (c *stubCache) Set(_ context.Context, rate *domain.ExchangeRate, _ time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}

	cp := *rate
	c.rate = &cp

	return nil
}

func values(seq func(func(*domain.ExchangeRate) bool)) []string {
	var out []string
	for r := range seq {
		out = append(out, r.Value.String())
	}

	return out
}

func TestExchangeRateProvider_CurrentWithoutRate(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.provider.Current()
	assert.ErrorIs(t, err, domain.ErrNoRateAvailable)
	assert.Empty(t, values(e.provider.History(10)))
}

func TestExchangeRateProvider_RejectsNonPositiveRate(t *testing.T) {
	e := newEnv(t, nil)

	for _, v := range []string{"0", "-1", "-0.01"} {
		_, err := e.provider.SetOperationalRate(context.Background(), dec(v), domain.RateSourceManual, "tester")
		assert.ErrorIs(t, err, domain.ErrInvalidRate, v)
	}

	_, err := e.provider.Current()
	assert.ErrorIs(t, err, domain.ErrNoRateAvailable)

	stored, err := e.rates.History(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestExchangeRateProvider_NewRateIsImmediatelyCurrent(t *testing.T) {
	e := newEnv(t, nil)

	e.setRate(t, "1000")
	e.setRate(t, "1200")

	current, err := e.provider.Current()
	require.NoError(t, err)
	assertDecimal(t, "1200", current.Value)
	assert.Equal(t, domain.RateSourceManual, current.Source)

	converted, err := e.converter.ToARS(usd("1"))
	require.NoError(t, err)
	assertDecimal(t, "1200", converted.Amount)

	assert.Equal(t, 2, e.unpublished(t, domain.EventTypeRateChanged))
}

func TestExchangeRateProvider_HistoryIsBoundedAndRestartable(t *testing.T) {
	store := memory.NewStore()
	provider := usecase.NewExchangeRateProvider(
		memory.NewTxManager(store),
		memory.NewRateRepository(store),
		memory.NewOutboxRepository(store),
		nil, &seqIDs{}, nil, zerolog.Nop(),
		usecase.RateProviderConfig{HistorySize: 3},
	)

	for _, v := range []int64{1000, 1100, 1200, 1300, 1400} {
		_, err := provider.SetOperationalRate(context.Background(), decimal.NewFromInt(v), domain.RateSourceExternal, "feed")
		require.NoError(t, err)
	}

	seq := provider.History(0)

	first := values(seq)
	assert.Equal(t, []string{"1400", "1300", "1200"}, first)
	assert.Equal(t, first, values(seq), "history must be restartable")

	assert.Equal(t, []string{"1400", "1300"}, values(provider.History(2)))

	// early break stops the iteration
	var seen int
	for range provider.History(0) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)

	// the store keeps everything
	stored, err := memory.NewRateRepository(store).History(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 5)
}

func TestExchangeRateProvider_HistorySnapshotSurvivesUpdates(t *testing.T) {
	e := newEnv(t, nil)

	e.setRate(t, "1000")

	seq := e.provider.History(0)

	var got []string
	for r := range seq {
		got = append(got, r.Value.String())
		e.setRate(t, "2000")
	}

	assert.Equal(t, []string{"1000"}, got)
	assert.Equal(t, []string{"2000", "1000"}, values(seq))
}

func TestExchangeRateProvider_LoadFromStore(t *testing.T) {
	e := newEnv(t, nil)
	e.setRate(t, "1000")
	e.setRate(t, "1150")

	fresh := usecase.NewExchangeRateProvider(
		memory.NewTxManager(e.store), e.rates, e.outbox, nil, &seqIDs{}, nil, zerolog.Nop(),
		usecase.RateProviderConfig{},
	)

	require.NoError(t, fresh.Load(context.Background()))

	current, err := fresh.Current()
	require.NoError(t, err)
	assertDecimal(t, "1150", current.Value)
	assert.Equal(t, []string{"1150", "1000"}, values(fresh.History(0)))
}

func TestExchangeRateProvider_LoadEmptyStoreHasNoRate(t *testing.T) {
	e := newEnv(t, nil)

	require.NoError(t, e.provider.Load(context.Background()))

	_, err := e.provider.Current()
	assert.ErrorIs(t, err, domain.ErrNoRateAvailable)
}

func TestExchangeRateProvider_CachePublishAndWarmStart(t *testing.T) {
	store := memory.NewStore()
	cache := &stubCache{}
	clock := newTestClock()

	build := func() *usecase.ExchangeRateProvider {
		return usecase.NewExchangeRateProvider(
			memory.NewTxManager(store), memory.NewRateRepository(store), memory.NewOutboxRepository(store),
			cache, &seqIDs{}, nil, zerolog.Nop(),
			usecase.RateProviderConfig{Clock: clock.Now},
		)
	}

	writer := build()
	_, err := writer.SetOperationalRate(context.Background(), dec("1234.5"), domain.RateSourceManual, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// a newer rate published by another instance
	cache.rate = &domain.ExchangeRate{ID: "remote", Value: dec("1300"), Source: domain.RateSourceExternal, CapturedAt: clock.Now().Add(time.Hour)}

	reader := build()
	require.NoError(t, reader.Load(context.Background()))

	current, err := reader.Current()
	require.NoError(t, err)
	assert.Equal(t, "remote", current.ID)

	writer.Refresh(context.Background())

	current, err = writer.Current()
	require.NoError(t, err)
	assertDecimal(t, "1300", current.Value)
}

// microsecondRates stores timestamps at the precision Postgres keeps.
type microsecondRates struct {
	*memory.RateRepository
}

func (r microsecondRates) Append(ctx context.Context, tx usecase.Transaction, rate *domain.ExchangeRate) error {
	cp := *rate
	cp.CapturedAt = cp.CapturedAt.Truncate(time.Microsecond)

	return r.RateRepository.Append(ctx, tx, &cp)
}

func TestExchangeRateProvider_LoadDoesNotDuplicateCachedRate(t *testing.T) {
	store := memory.NewStore()
	cache := &stubCache{}
	at := time.Date(2026, 6, 1, 9, 0, 0, 123456789, time.UTC)

	build := func() *usecase.ExchangeRateProvider {
		return usecase.NewExchangeRateProvider(
			memory.NewTxManager(store), microsecondRates{memory.NewRateRepository(store)}, memory.NewOutboxRepository(store),
			cache, &seqIDs{}, nil, zerolog.Nop(),
			usecase.RateProviderConfig{Clock: func() time.Time { return at }},
		)
	}

	writer := build()
	rate, err := writer.SetOperationalRate(context.Background(), dec("1000"), domain.RateSourceManual, "tester")
	require.NoError(t, err)

	reader := build()
	require.NoError(t, reader.Load(context.Background()))
	assert.Equal(t, []string{"1000"}, values(reader.History(0)))

	current, err := reader.Current()
	require.NoError(t, err)
	assert.Equal(t, rate.ID, current.ID)

	reader.Refresh(context.Background())
	writer.Refresh(context.Background())
	assert.Len(t, values(reader.History(0)), 1)
	assert.Len(t, values(writer.History(0)), 1)
}

func TestExchangeRateProvider_ConcurrentRefreshInstallsOnce(t *testing.T) {
	store := memory.NewStore()
	cache := &stubCache{rate: &domain.ExchangeRate{
		ID: "remote", Value: dec("1300"), Source: domain.RateSourceExternal,
		CapturedAt: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}}

	provider := usecase.NewExchangeRateProvider(
		memory.NewTxManager(store), memory.NewRateRepository(store), memory.NewOutboxRepository(store),
		cache, &seqIDs{}, nil, zerolog.Nop(), usecase.RateProviderConfig{},
	)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			provider.Refresh(context.Background())
		}()
	}

	wg.Wait()

	assert.Equal(t, []string{"1300"}, values(provider.History(0)))
}

func TestExchangeRateProvider_CacheFailureDoesNotFailUpdate(t *testing.T) {
	store := memory.NewStore()
	cache := &stubCache{setErr: errors.New("redis down")}

	provider := usecase.NewExchangeRateProvider(
		memory.NewTxManager(store), memory.NewRateRepository(store), memory.NewOutboxRepository(store),
		cache, &seqIDs{}, nil, zerolog.Nop(), usecase.RateProviderConfig{},
	)

	_, err := provider.SetOperationalRate(context.Background(), dec("1000"), domain.RateSourceManual, "tester")
	require.NoError(t, err)

	current, err := provider.Current()
	require.NoError(t, err)
	assertDecimal(t, "1000", current.Value)
}

func TestExchangeRateProvider_StoreFailureKeepsPreviousRate(t *testing.T) {
	ctrl := gomock.NewController(t)

	txm := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	repo := mocks.NewMockRateRepository(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	ids := mocks.NewMockIDGenerator(ctrl)

	ids.EXPECT().Generate().Return("rate-1").AnyTimes()
	txm.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	repo.EXPECT().Append(gomock.Any(), tx, gomock.Any()).Return(errors.New("disk full"))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	provider := usecase.NewExchangeRateProvider(txm, repo, outbox, nil, ids, nil, zerolog.Nop(), usecase.RateProviderConfig{})

	_, err := provider.SetOperationalRate(context.Background(), dec("1000"), domain.RateSourceManual, "tester")
	require.Error(t, err)

	_, err = provider.Current()
	assert.ErrorIs(t, err, domain.ErrNoRateAvailable)
	assert.False(t, slices.ContainsFunc(values(provider.History(0)), func(v string) bool { return v == "1000" }))
}
