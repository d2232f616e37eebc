package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/salonledger/internal/domain"
)

// newTestRedisClient starts an in-process Redis that is shut down with the
// test.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func newTestRateCache(t *testing.T) (*RateCache, *miniredis.Miniredis) {
	t.Helper()

	client, mr := newTestRedisClient(t)

	return NewRateCache(client), mr
}

func (c *RateCache) snapshotKey() string {
	return c.prefix + currentRateKey
}

func sampleRate(id, value string, capturedAt time.Time) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		ID:         id,
		Value:      decimal.RequireFromString(value),
		Source:     domain.RateSourceManual,
		CapturedBy: "reception",
		CapturedAt: capturedAt,
	}
}
