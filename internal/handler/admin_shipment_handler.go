package handler

import (
	"net/http"

	repo "ton-shipping/internal/repository"
	"ton-shipping/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AdminShipmentHandler struct {
	uc  *usecase.AdminShipmentUsecase
	log *zap.Logger
}

func NewAdminShipmentHandler(uc *usecase.AdminShipmentUsecase, log *zap.Logger) *AdminShipmentHandler {
	return &AdminShipmentHandler{uc: uc, log: log}
}

type updateStatusRequest struct {
	Status          string  `json:"status"`
	Notes           string  `json:"notes"`
	Location        *string `json:"location"`
	ExpectedVersion *int64  `json:"expected_version"`
}

// GET /admin/dashboard
func (h *AdminShipmentHandler) Dashboard(c echo.Context) error {
	out, err := h.uc.Dashboard(c.Request().Context(), actorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /admin/shipments?status=&q=&page=&limit=
func (h *AdminShipmentHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return writeError(c, h.log, err)
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.List(c.Request().Context(), actorFrom(c), repo.AdminShipmentListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		Q:      c.QueryParam("q"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// PUT /admin/shipments/:id/status
func (h *AdminShipmentHandler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	var req updateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), actorFrom(c), id, usecase.AdminUpdateShipmentStatusInput{
		Status:          req.Status,
		Notes:           req.Notes,
		Location:        req.Location,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
