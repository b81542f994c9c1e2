package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"staticmap/internal/infrastructure/http/v1/handler"
	"staticmap/pkg/config"
	"staticmap/pkg/logger"
	"staticmap/pkg/telemetry"
)

func NewRouter(handler *handler.Handler, cfg *config.Config, l logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(ginZapLogger(l))
	if cfg.Telemetry.Enabled {
		r.Use(telemetry.GinMiddleware(cfg.Telemetry.ServiceName))
	}

	r.GET("/healthz", handler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	v1 := api.Group("/v1")

	v1.GET("/map", handler.Map)
	v1.GET("/tile/:z/:x/:y", handler.Tile)

	return r
}

func ginZapLogger(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		l.Info("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}
