package cache

import (
	"fmt"

	"staticmap/pkg/config"
	"staticmap/pkg/logger"
)

// New creates a tile cache backend based on the configured type.
func New(cfg *config.Config, l logger.Logger) (TileCache, error) {
	switch cfg.TileCache.Backend {
	case "memory":
		l.Info("using memory tile cache", "max_size", cfg.TileCache.MaxSize, "ttl", cfg.TileCache.TTL)
		return NewMemoryCache(cfg.TileCache.MaxSize, cfg.TileCache.TTL), nil
	case "redis":
		l.Info("using redis tile cache", "addr", cfg.Redis.Addr)
		return NewRedisCache(cfg.Redis)
	case "sqlite":
		l.Info("using sqlite tile cache", "path", cfg.SQLite.Path)
		return NewSQLiteCache(cfg.SQLite.Path, l)
	default:
		return nil, fmt.Errorf("unknown tile cache backend: %s (supported: memory, redis, sqlite)", cfg.TileCache.Backend)
	}
}
