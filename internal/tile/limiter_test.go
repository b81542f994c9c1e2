package tile

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterConcurrencyCap(t *testing.T) {
	const maxConcurrent = 2
	limiter := NewLimiter(maxConcurrent, 10000)

	var inFlight, peak int64
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			require.NoError(t, limiter.Acquire(context.Background()))
			defer limiter.Release()

			current := atomic.AddInt64(&inFlight, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if current <= old || atomic.CompareAndSwapInt64(&peak, old, current) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(maxConcurrent))
}

func TestLimiterSpacing(t *testing.T) {
	const rps = 20.0 // 50ms between dispatches
	limiter := NewLimiter(4, rps)

	var mu sync.Mutex
	var dispatches []time.Time
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			require.NoError(t, limiter.Acquire(context.Background()))
			mu.Lock()
			dispatches = append(dispatches, time.Now())
			mu.Unlock()
			limiter.Release()
		}()
	}

	wg.Wait()

	sort.Slice(dispatches, func(i, j int) bool { return dispatches[i].Before(dispatches[j]) })
	for i := 1; i < len(dispatches); i++ {
		gap := dispatches[i].Sub(dispatches[i-1])
		assert.GreaterOrEqual(t, gap, 35*time.Millisecond, "dispatch %d followed too quickly", i)
	}
}

func TestLimiterAcquireHonorsContext(t *testing.T) {
	limiter := NewLimiter(1, 10000)

	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
