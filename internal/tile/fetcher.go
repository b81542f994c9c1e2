package tile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"staticmap/internal/repository/cache"
	"staticmap/pkg/config"
	"staticmap/pkg/logger"
	"staticmap/pkg/metrics"
)

// Fetcher acquires raw upstream tiles: tile cache first, then a rate-limited
// HTTP fetch with bounded retries. The cache and limiter are shared across
// all concurrent requests.
type Fetcher struct {
	cache      cache.TileCache
	limiter    *Limiter
	httpClient *http.Client

	baseURL    string
	userAgent  string
	referer    string
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration

	logger logger.Logger
}

func NewFetcher(cfg config.Upstream, tileCache cache.TileCache, limiter *Limiter, l logger.Logger) *Fetcher {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 16,
		},
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Fetcher{
		cache:      tileCache,
		limiter:    limiter,
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		referer:    cfg.Referer,
		timeout:    cfg.Timeout,
		maxRetries: maxRetries,
		baseDelay:  cfg.RetryBaseDelay,
		logger:     l,
	}
}

// FetchTile returns the raw bytes of one tile. A 4xx upstream answer fails
// immediately, every other failure is retried with exponential backoff up to
// maxRetries total attempts. The returned error is always an *UpstreamError
// unless the context was canceled.
func (f *Fetcher) FetchTile(ctx context.Context, z, x, y int) ([]byte, error) {
	key := cache.TileCacheKey{X: x, Y: y, Z: z}

	data, exists, err := f.cache.Get(key)
	if err != nil {
		f.logger.Warn("tile cache lookup failed, fetching from upstream", "z", z, "x", x, "y", y, "error", err)
	}
	if exists {
		metrics.TileCacheHits.Inc()
		return data, nil
	}
	metrics.TileCacheMisses.Inc()

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.UpstreamRetries.Inc()
			delay := f.baseDelay << (attempt - 1)
			f.logger.Debug("retrying upstream fetch", "z", z, "x", x, "y", y, "attempt", attempt, "delay", delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, retryable, err := f.attempt(ctx, z, x, y)
		if err == nil {
			if setErr := f.cache.Set(key, data); setErr != nil {
				f.logger.Warn("failed to store tile in cache", "z", z, "x", x, "y", y, "error", setErr)
			} else {
				metrics.TileCacheStores.Inc()
			}
			return data, nil
		}

		lastErr = err
		if !retryable {
			break
		}
	}

	f.logger.Error("upstream tile fetch failed", "z", z, "x", x, "y", y, "error", lastErr)
	return nil, lastErr
}

// attempt performs one upstream request under the limiter. The second return
// value reports whether the failure is worth retrying.
func (f *Fetcher) attempt(ctx context.Context, z, x, y int) ([]byte, bool, error) {
	if err := f.limiter.Acquire(ctx); err != nil {
		return nil, false, err
	}
	defer f.limiter.Release()

	url := fmt.Sprintf("%s/%d/%d/%d.png", f.baseURL, z, x, y)

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, &UpstreamError{Z: z, X: x, Y: y, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}

	metrics.UpstreamRequests.Inc()
	start := time.Now()

	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamErrors.Inc()
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, &UpstreamError{Z: z, X: x, Y: y, Err: err}
	}
	defer resp.Body.Close()

	metrics.UpstreamLatency.Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamErrors.Inc()
		// Client errors cannot succeed on retry.
		retryable := resp.StatusCode < 400 || resp.StatusCode > 499
		return nil, retryable, &UpstreamError{Z: z, X: x, Y: y, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamErrors.Inc()
		return nil, true, &UpstreamError{Z: z, X: x, Y: y, Err: err}
	}

	return data, false, nil
}
