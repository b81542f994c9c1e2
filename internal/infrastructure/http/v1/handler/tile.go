package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"staticmap/internal/tile"
)

func (h *Handler) Tile(c *gin.Context) {
	strX := c.Param("x")
	strY := c.Param("y")
	strZ := c.Param("z")

	x, err := strconv.Atoi(strX)
	if err != nil {
		h.logger.Warn("invalid x parameter", "x", strX, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "x should be integer",
		})
		return
	}

	y, err := strconv.Atoi(strY)
	if err != nil {
		h.logger.Warn("invalid y parameter", "y", strY, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "y should be integer",
		})
		return
	}

	z, err := strconv.Atoi(strZ)
	if err != nil {
		h.logger.Warn("invalid z parameter", "z", strZ, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "z should be integer",
		})
		return
	}

	if z < h.cfg.Map.MinZoom || z > h.cfg.Map.MaxZoom {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "zoom out of range",
		})
		return
	}

	n := 1 << z
	if x < 0 || x >= n || y < 0 || y >= n {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "tile coordinates out of range",
		})
		return
	}

	data, err := h.tileUseCase.GetTile(c.Request.Context(), z, x, y)
	if err != nil {
		var upstreamErr *tile.UpstreamError
		if errors.As(err, &upstreamErr) {
			h.logger.Error("failed to get tile", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "upstream tile source unavailable",
			})
			return
		}
		h.RespondWithInternalServerError(c)
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}
