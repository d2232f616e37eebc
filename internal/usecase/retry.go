package usecase

import "context"

// Retrier re-runs an operation that failed with a transient store error,
// such as a deadlock or a serialization failure.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}

func retrierOrNoop(r Retrier) Retrier {
	if r == nil {
		return noRetry{}
	}

	return r
}
