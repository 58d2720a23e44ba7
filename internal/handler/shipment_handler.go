package handler

import (
	"net/http"

	"ton-shipping/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ShipmentHandler struct {
	uc  *usecase.ShipmentUsecase
	log *zap.Logger
}

func NewShipmentHandler(uc *usecase.ShipmentUsecase, log *zap.Logger) *ShipmentHandler {
	return &ShipmentHandler{uc: uc, log: log}
}

// GET /shipments（顧客ダッシュボード）
func (h *ShipmentHandler) ListMine(c echo.Context) error {
	out, err := h.uc.ListMine(c.Request().Context(), actorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /shipments
func (h *ShipmentHandler) Create(c echo.Context) error {
	var req usecase.CreateShipmentInput
	if err := bindJSON(c, &req); err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.Create(c.Request().Context(), actorFrom(c), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// GET /shipments/:id
func (h *ShipmentHandler) Detail(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.Detail(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /track/:tracking_number（公開）
func (h *ShipmentHandler) Track(c echo.Context) error {
	out, err := h.uc.Track(c.Request().Context(), c.Param("tracking_number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
