package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
)

// ExchangeRateProvider holds the operational ARS-per-USD rate and a bounded,
// newest-last history of the rates that preceded it.
type ExchangeRateProvider struct {
	repo      RateRepository
	outbox    OutboxRepository
	txManager TransactionManager
	cache     RateCache
	idGen     IDGenerator
	metrics   MetricsRecorder
	clock     Clock
	logger    zerolog.Logger

	// writeMu orders concurrent SetOperationalRate calls so history and
	// the store agree on append order.
	writeMu  sync.Mutex
	mu       sync.RWMutex
	current  *domain.ExchangeRate
	history  []*domain.ExchangeRate
	maxSize  int
	cacheTTL time.Duration
}

// RateProviderConfig tunes the provider.
type RateProviderConfig struct {
	HistorySize int
	CacheTTL    time.Duration
	Clock       Clock
}

// NewExchangeRateProvider creates a provider with no operational rate.
// cache and metrics may be nil.
func NewExchangeRateProvider(
	txManager TransactionManager,
	repo RateRepository,
	outbox OutboxRepository,
	cache RateCache,
	idGen IDGenerator,
	metrics MetricsRecorder,
	logger zerolog.Logger,
	cfg RateProviderConfig,
) *ExchangeRateProvider {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultRateHistorySize
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultRateCacheTTL
	}

	if cfg.Clock == nil {
		cfg.Clock = systemClock
	}

	return &ExchangeRateProvider{
		repo:      repo,
		outbox:    outbox,
		txManager: txManager,
		cache:     cache,
		idGen:     idGen,
		metrics:   recorderOrNoop(metrics),
		clock:     cfg.Clock,
		logger:    logger.With().Str("component", "rate_provider").Logger(),
		maxSize:   cfg.HistorySize,
		cacheTTL:  cfg.CacheTTL,
	}
}

// SetOperationalRate appends a new rate and makes it current immediately.
func (p *ExchangeRateProvider) SetOperationalRate(ctx context.Context, value decimal.Decimal, source domain.RateSource, capturedBy string) (*domain.ExchangeRate, error) {
	if source == "" {
		source = domain.RateSourceManual
	}

	rate := &domain.ExchangeRate{
		ID:         p.idGen.Generate(),
		Value:      value,
		Source:     source,
		CapturedBy: capturedBy,
		CapturedAt: p.clock(),
	}

	if err := rate.Validate(); err != nil {
		return nil, err
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	tx, err := p.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := p.repo.Append(ctx, tx, rate); err != nil {
		return nil, fmt.Errorf("append rate: %w", err)
	}

	if err := p.outbox.Create(ctx, tx, domain.NewRateEvent(p.idGen.Generate(), rate)); err != nil {
		return nil, fmt.Errorf("record rate event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	p.install(rate)
	p.metrics.ObserveRate(string(rate.Source), rate.Value)
	p.publish(ctx, rate)

	p.logger.Info().
		Str("rate_id", rate.ID).
		Str("value", rate.Value.String()).
		Str("source", string(rate.Source)).
		Msg("operational rate changed")

	return p.copyOf(rate), nil
}

// Current returns the operational rate or ErrNoRateAvailable.
func (p *ExchangeRateProvider) Current() (*domain.ExchangeRate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return nil, domain.ErrNoRateAvailable
	}

	return p.copyOf(p.current), nil
}

// History yields at most limit rates, newest first. Each range over the
// returned sequence reads a fresh snapshot, so it can be iterated again.
// A non-positive limit yields the whole retained history.
func (p *ExchangeRateProvider) History(limit int) iter.Seq[*domain.ExchangeRate] {
	return func(yield func(*domain.ExchangeRate) bool) {
		p.mu.RLock()
		snapshot := p.history
		p.mu.RUnlock()

		n := len(snapshot)
		if limit > 0 && limit < n {
			n = limit
		}

		for i := 0; i < n; i++ {
			if !yield(p.copyOf(snapshot[len(snapshot)-1-i])) {
				return
			}
		}
	}
}

// Load warms the provider from the shared cache, falling back to the
// store's history. An empty store leaves the provider without a rate.
func (p *ExchangeRateProvider) Load(ctx context.Context) error {
	rates, err := p.repo.History(ctx, p.maxSize, 0)
	if err != nil {
		return fmt.Errorf("load rate history: %w", err)
	}

	// store returns newest first
	history := make([]*domain.ExchangeRate, 0, len(rates))
	for i := len(rates) - 1; i >= 0; i-- {
		history = append(history, rates[i])
	}

	var current *domain.ExchangeRate
	if len(history) > 0 {
		current = history[len(history)-1]
	}

	if cached := p.fromCache(ctx); cached != nil && newer(cached, current, history) {
		current = cached
		history = append(history, cached)
	}

	if len(history) > p.maxSize {
		history = history[len(history)-p.maxSize:]
	}

	p.mu.Lock()
	p.current = current
	p.history = history
	p.mu.Unlock()

	if current != nil {
		p.logger.Info().Str("rate_id", current.ID).Str("value", current.Value.String()).Msg("operational rate loaded")
	}

	return nil
}

// Refresh adopts a newer rate published by another instance, if any.
func (p *ExchangeRateProvider) Refresh(ctx context.Context) {
	cached := p.fromCache(ctx)
	if cached == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if newer(cached, p.current, p.history) {
		p.installLocked(cached)
	}
}

// newer reports whether cached should replace current. The snapshot
// timestamp may carry more precision than the store keeps, so a rate
// already held is recognised by ID.
func newer(cached, current *domain.ExchangeRate, history []*domain.ExchangeRate) bool {
	if current == nil {
		return true
	}

	if slices.ContainsFunc(history, func(r *domain.ExchangeRate) bool { return r.ID == cached.ID }) {
		return false
	}

	return cached.ID != current.ID && cached.CapturedAt.After(current.CapturedAt)
}

func (p *ExchangeRateProvider) install(rate *domain.ExchangeRate) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.installLocked(rate)
}

func (p *ExchangeRateProvider) installLocked(rate *domain.ExchangeRate) {
	// copy-on-write keeps snapshots taken by History stable
	next := make([]*domain.ExchangeRate, 0, min(len(p.history)+1, p.maxSize))
	start := 0
	if len(p.history)+1 > p.maxSize {
		start = len(p.history) + 1 - p.maxSize
	}

	next = append(next, p.history[start:]...)
	next = append(next, rate)

	p.history = next
	p.current = rate
}

func (p *ExchangeRateProvider) publish(ctx context.Context, rate *domain.ExchangeRate) {
	if p.cache == nil {
		return
	}

	if err := p.cache.Set(ctx, rate, p.cacheTTL); err != nil {
		p.logger.Warn().Err(err).Str("rate_id", rate.ID).Msg("failed to publish rate snapshot")
	}
}

func (p *ExchangeRateProvider) fromCache(ctx context.Context) *domain.ExchangeRate {
	if p.cache == nil {
		return nil
	}

	rate, err := p.cache.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrRateNotFound) {
			p.logger.Warn().Err(err).Msg("failed to read rate snapshot")
		}

		return nil
	}

	if rate.Validate() != nil {
		return nil
	}

	return rate
}

func (p *ExchangeRateProvider) copyOf(r *domain.ExchangeRate) *domain.ExchangeRate {
	cp := *r
	return &cp
}
