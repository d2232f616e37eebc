package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
	"github.com/iho/salonledger/internal/usecase"
)

const currentRateKey = "current"

// RateCache implements usecase.RateCache using Redis. It holds a single
// snapshot of the operational rate so that every instance converts with
// the same value.
type RateCache struct {
	client *redis.Client
	prefix string
}

// NewRateCache creates a new RateCache.
func NewRateCache(client *redis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "rate:",
	}
}

type rateSnapshot struct {
	ID         string          `json:"id"`
	Value      decimal.Decimal `json:"value"`
	Source     string          `json:"source"`
	CapturedBy string          `json:"captured_by"`
	CapturedAt time.Time       `json:"captured_at"`
}

// Get returns the cached rate, or domain.ErrRateNotFound.
func (c *RateCache) Get(ctx context.Context) (*domain.ExchangeRate, error) {
	raw, err := c.client.Get(ctx, c.prefix+currentRateKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRateNotFound
		}

		return nil, err
	}

	var snap rateSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cached rate: %w", err)
	}

	rate := &domain.ExchangeRate{
		ID:         snap.ID,
		Value:      snap.Value,
		Source:     domain.RateSource(snap.Source),
		CapturedBy: snap.CapturedBy,
		CapturedAt: snap.CapturedAt,
	}

	if err := rate.Validate(); err != nil {
		return nil, fmt.Errorf("cached rate: %w", err)
	}

	return rate, nil
}

// Set stores rate as the current snapshot with TTL.
func (c *RateCache) Set(ctx context.Context, rate *domain.ExchangeRate, ttl time.Duration) error {
	raw, err := json.Marshal(rateSnapshot{
		ID:         rate.ID,
		Value:      rate.Value,
		Source:     string(rate.Source),
		CapturedBy: rate.CapturedBy,
		CapturedAt: rate.CapturedAt,
	})
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.prefix+currentRateKey, raw, ttl).Err()
}

var _ usecase.RateCache = (*RateCache)(nil)
