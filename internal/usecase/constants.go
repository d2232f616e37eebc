package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultSequenceStart is the first sequence number of an empty (cash box, kind) pair.
	DefaultSequenceStart = 1

	// DefaultRateHistorySize bounds the in-memory rate history.
	DefaultRateHistorySize = 100

	// DefaultRateCacheTTL is how long the shared rate snapshot lives in the cache.
	DefaultRateCacheTTL = 24 * time.Hour

	// DefaultReconciliationTolerance is the accepted payments vs items gap.
	DefaultReconciliationTolerance = "0.01"

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
