package usecase

import (
	"context"

	"staticmap/internal/render"
	"staticmap/internal/repository/resultcache"
	"staticmap/pkg/logger"
	"staticmap/pkg/metrics"
)

// MapUseCase serves composed map images, consulting the disk result cache
// before invoking the compositor and persisting successful compositions.
type MapUseCase struct {
	compositor *render.Compositor
	results    *resultcache.Store // nil when the disk cache is disabled
	logger     logger.Logger
}

func NewMapUseCase(compositor *render.Compositor, results *resultcache.Store, l logger.Logger) *MapUseCase {
	return &MapUseCase{
		compositor: compositor,
		results:    results,
		logger:     l,
	}
}

func (uc *MapUseCase) GetMap(ctx context.Context, req render.Request) ([]byte, error) {
	digest := resultcache.Key(req.Zoom, req.Lat, req.Lon, req.Marker, req.Anchor, req.Scale)

	if uc.results != nil {
		if data, ok := uc.results.Read(digest); ok {
			metrics.ResultCacheHits.Inc()
			uc.logger.Debug("result cache hit", "digest", digest, "size", len(data))
			return data, nil
		}
		metrics.ResultCacheMisses.Inc()
	}

	data, err := uc.compositor.Compose(ctx, req)
	if err != nil {
		return nil, err
	}

	if uc.results != nil {
		// Serving the composed image takes priority over cache persistence.
		if err := uc.results.Write(digest, data); err != nil {
			uc.logger.Warn("failed to persist composed image", "digest", digest, "error", err)
		}
	}

	return data, nil
}
