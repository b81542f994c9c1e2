package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MapRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "map_requests_total",
		Help: "Total number of map image requests",
	})

	ResultCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "result_cache_hits_total",
		Help: "Total number of composed images served from the disk cache",
	})

	ResultCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "result_cache_misses_total",
		Help: "Total number of disk cache misses",
	})

	TileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_hits_total",
		Help: "Total number of tile cache hits",
	})

	TileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_misses_total",
		Help: "Total number of tile cache misses",
	})

	TileCacheStores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_cache_stores_total",
		Help: "Total number of tile cache store operations",
	})

	UpstreamRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total number of upstream (OSM) tile fetches",
	})

	UpstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upstream_errors_total",
		Help: "Total number of failed upstream tile fetch attempts",
	})

	UpstreamRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upstream_retries_total",
		Help: "Total number of upstream fetch retries",
	})

	UpstreamLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "upstream_latency_seconds",
		Help:    "Latency of upstream tile fetches in seconds",
		Buckets: prometheus.DefBuckets,
	})

	ComposeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compose_duration_seconds",
		Help:    "Duration of map composition in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
