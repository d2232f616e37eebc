package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/salonledger/internal/adapter/http"
	"github.com/iho/salonledger/internal/adapter/http/handler"
	"github.com/iho/salonledger/internal/adapter/http/middleware"
	"github.com/iho/salonledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/salonledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/salonledger/internal/adapter/repository/redis"
	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/infrastructure/config"
	"github.com/iho/salonledger/internal/infrastructure/eventpublisher"
	"github.com/iho/salonledger/internal/infrastructure/metrics"
	"github.com/iho/salonledger/internal/infrastructure/postgres"
	"github.com/iho/salonledger/internal/infrastructure/redis"
	"github.com/iho/salonledger/internal/usecase"
)

// stores is one storage backend behind the use-case interfaces.
type stores struct {
	txManager usecase.TransactionManager
	comandas  usecase.ComandaRepository
	transfers usecase.TransferRecordRepository
	rates     usecase.RateRepository
	outbox    usecase.OutboxRepository
	retrier   usecase.Retrier
	pinger    handler.Pinger
	close     func()
}

// app is the wired service.
type app struct {
	router      http.Handler
	provider    *usecase.ExchangeRateProvider
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires configuration, storage, use cases and the HTTP router.
// Metrics are registered on reg and served from it.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.close)

	var (
		redisClient      *goredis.Client
		rateCache        usecase.RateCache
		idempotencyStore usecase.IdempotencyStore
	)

	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { redisClient.Close() })

		rateCache = redisRepo.NewRateCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		logger.Info().Msg("connected to redis")
	}

	m := metrics.NewWithRegisterer(reg)
	idGen := postgresRepo.NewULIDGenerator()
	locker := usecase.NewCashBoxLocker()

	a.provider = usecase.NewExchangeRateProvider(st.txManager, st.rates, st.outbox, rateCache, idGen, m, logger,
		usecase.RateProviderConfig{
			HistorySize: cfg.RateHistorySize,
			CacheTTL:    cfg.RateCacheTTL,
		})
	if err := a.provider.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	converter := usecase.NewCurrencyConverter(a.provider)
	calculator := usecase.NewPaymentCalculator(converter, discountTable(cfg))

	ledgerUC := usecase.NewLedgerUseCase(st.txManager, st.comandas, st.outbox, calculator, locker, idGen, m,
		usecase.LedgerConfig{
			SequenceStart: cfg.SequenceStart,
			Tolerance:     cfg.ReconciliationTolerance,
		}).WithRetrier(st.retrier)
	transferUC := usecase.NewTransferUseCase(st.txManager, st.comandas, st.transfers, st.outbox, locker, idGen, m, nil).
		WithRetrier(st.retrier)
	reconUC := usecase.NewReconciliationUseCase(st.comandas, st.transfers)

	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: st.outbox,
		Publisher:  eventpublisher.NewLogPublisher(logger),
		Logger:     logger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})

	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	a.router = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RateHandler:      handler.NewRateHandler(a.provider, converter),
		ComandaHandler:   handler.NewComandaHandler(ledgerUC, converter),
		CashBoxHandler:   handler.NewCashBoxHandler(ledgerUC, transferUC, reconUC),
		HealthHandler:    handler.NewHealthHandler(st.pinger, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      a.rateLimiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:           logger,
	})

	return a, nil
}

// openStores opens the configured storage backend.
func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		store := memory.NewStore()
		logger.Warn().Msg("using in-memory storage; data is lost on restart")

		return &stores{
			txManager: memory.NewTxManager(store),
			comandas:  memory.NewComandaRepository(store),
			transfers: memory.NewTransferRecordRepository(store),
			rates:     memory.NewRateRepository(store),
			outbox:    memory.NewOutboxRepository(store),
			close:     func() {},
		}, nil
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	logger.Info().Msg("connected to postgres")

	return &stores{
		txManager: postgresRepo.NewTxManager(pool),
		comandas:  postgresRepo.NewComandaRepository(pool),
		transfers: postgresRepo.NewTransferRecordRepository(pool),
		rates:     postgresRepo.NewRateRepository(pool),
		outbox:    postgresRepo.NewOutboxRepository(pool),
		retrier:   postgresRepo.NewRetrier(logger),
		pinger:    pool,
		close:     pool.Close,
	}, nil
}

// discountTable maps the configured percentages to the adjustable kinds.
func discountTable(cfg *config.Config) usecase.DiscountTable {
	return usecase.DiscountTable{
		domain.PaymentCash:     cfg.DiscountCash,
		domain.PaymentCard:     cfg.DiscountCard,
		domain.PaymentTransfer: cfg.DiscountTransfer,
	}
}
