package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"staticmap/internal/usecase"
	"staticmap/pkg/config"
	"staticmap/pkg/logger"
)

const (
	internalServerErrorText = "the server encountered an error and could not process your request"
)

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type Handler struct {
	validate    *validator.Validate
	cfg         *config.Config
	mapUseCase  *usecase.MapUseCase
	tileUseCase *usecase.TileUseCase
	logger      logger.Logger
}

func NewHandler(v *validator.Validate, cfg *config.Config, mapUC *usecase.MapUseCase, tileUC *usecase.TileUseCase, l logger.Logger) *Handler {
	return &Handler{
		validate:    v,
		cfg:         cfg,
		mapUseCase:  mapUC,
		tileUseCase: tileUC,
		logger:      l,
	}
}

func (h *Handler) RespondWithInternalServerError(c *gin.Context) {
	h.RespondWithJSON(c, http.StatusInternalServerError, internalServerErrorText, nil)
}

func (h *Handler) RespondWithJSON(c *gin.Context, code int, message string, data any) {
	success := code < 400

	r := response{
		Success: success,
		Message: message,
		Data:    data,
	}

	c.JSON(code, r)
}
