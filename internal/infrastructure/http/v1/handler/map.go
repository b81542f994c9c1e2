package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"staticmap/internal/infrastructure/http/v1/dto"
	"staticmap/internal/render"
	"staticmap/internal/tile"
	"staticmap/pkg/metrics"
)

func (h *Handler) Map(c *gin.Context) {
	metrics.MapRequests.Inc()

	var req dto.MapRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("malformed map request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid query parameters",
		})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn("map request out of range", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if req.Zoom < h.cfg.Map.MinZoom || req.Zoom > h.cfg.Map.MaxZoom {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "zoom out of range",
		})
		return
	}

	if req.Scale == 0 {
		req.Scale = 1
	}

	h.logger.Info("map request",
		"lat", req.Lat, "lon", req.Lon, "zoom", req.Zoom,
		"marker", req.Marker, "anchor", req.Anchor, "scale", req.Scale,
	)

	data, err := h.mapUseCase.GetMap(c.Request.Context(), render.Request{
		Lat:    req.Lat,
		Lon:    req.Lon,
		Zoom:   req.Zoom,
		Marker: req.Marker,
		Anchor: req.Anchor,
		Scale:  req.Scale,
	})
	if err != nil {
		h.respondWithMapError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

func (h *Handler) respondWithMapError(c *gin.Context, err error) {
	var upstreamErr *tile.UpstreamError
	if errors.As(err, &upstreamErr) {
		h.logger.Error("upstream tile source unavailable", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "upstream tile source unavailable",
		})
		return
	}

	var renderErr *render.RenderError
	if errors.As(err, &renderErr) {
		h.logger.Error("failed to render map", "error", err)
		h.RespondWithInternalServerError(c)
		return
	}

	h.logger.Error("failed to get map", "error", err)
	h.RespondWithInternalServerError(c)
}
