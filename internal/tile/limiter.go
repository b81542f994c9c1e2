package tile

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter throttles upstream fetches process-wide: at most maxConcurrent
// requests in flight, and successive dispatches spaced at least 1/rps apart.
// Waiters queue in FIFO order on the semaphore.
type Limiter struct {
	sem     *semaphore.Weighted
	spacing *rate.Limiter
}

func NewLimiter(maxConcurrent int, requestsPerSecond float64) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Limiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		spacing: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Acquire blocks until a slot is free and the inter-request spacing has
// elapsed. Every successful Acquire must be paired with Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	if err := l.spacing.Wait(ctx); err != nil {
		l.sem.Release(1)
		return err
	}

	return nil
}

func (l *Limiter) Release() {
	l.sem.Release(1)
}
