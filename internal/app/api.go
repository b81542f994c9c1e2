package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	v1 "staticmap/internal/infrastructure/http/v1"
	"staticmap/internal/infrastructure/http/v1/handler"
	"staticmap/internal/render"
	"staticmap/internal/repository/cache"
	"staticmap/internal/repository/resultcache"
	"staticmap/internal/tile"
	"staticmap/internal/usecase"
	"staticmap/pkg/config"
	"staticmap/pkg/http_server"
	"staticmap/pkg/logger"
	"staticmap/pkg/telemetry"
)

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger.Level)
	defer l.Sync()

	l.Info("app config", "cfg", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = logger.WithLogger(ctx, l)

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
		if err != nil {
			l.Fatal("failed to initialize telemetry", "error", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				l.Error("telemetry shutdown failed", "error", err)
			}
		}()
	}

	markers, err := config.LoadMarkerCatalog(cfg.Map.MarkerCatalog)
	if err != nil {
		l.Fatal("failed to load marker catalog", "error", err)
	}
	anchors, err := config.LoadAnchorCatalog(cfg.Map.AnchorCatalog)
	if err != nil {
		l.Fatal("failed to load anchor catalog", "error", err)
	}

	tileCache, err := cache.New(cfg, l)
	if err != nil {
		l.Fatal("failed to initialize tile cache", "error", err)
	}

	limiter := tile.NewLimiter(cfg.Limiter.MaxConcurrent, cfg.Limiter.RequestsPerSecond)
	fetcher := tile.NewFetcher(cfg.Upstream, tileCache, limiter, l)

	compositor := render.NewCompositor(cfg.Map, cfg.Attribution, markers, anchors, fetcher, l)

	var results *resultcache.Store
	if cfg.ResultCache.Enabled {
		results, err = resultcache.New(cfg.ResultCache.Dir, l)
		if err != nil {
			l.Fatal("failed to initialize result cache", "error", err)
		}
	}

	mapUseCase := usecase.NewMapUseCase(compositor, results, l)
	tileUseCase := usecase.NewTileUseCase(fetcher, l)

	validate := validator.New()
	h := handler.NewHandler(validate, cfg, mapUseCase, tileUseCase, l)
	router := v1.NewRouter(h, cfg, l)

	httpServer := http_server.NewServer(ctx, cfg.HTTP.Server, router)

	serverErr := make(chan error, 1)
	go func() {
		l.Info("starting http server...", "address", httpServer.Addr)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("http server failed", "error", err)
		}
	case <-ctx.Done():
		l.Info("received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	l.Info("shutting down http server...", "address", httpServer.Addr)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Error("http server shutdown failed", "error", err)
	} else {
		l.Info("http server shutdown completed")
	}

	l.Info("application shutdown completed")
}
