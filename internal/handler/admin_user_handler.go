package handler

import (
	"net/http"

	"ton-shipping/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AdminUserHandler struct {
	uc  *usecase.AdminUserUsecase
	log *zap.Logger
}

func NewAdminUserHandler(uc *usecase.AdminUserUsecase, log *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{uc: uc, log: log}
}

type verificationRequest struct {
	Verified *bool `json:"verified"`
}

// GET /admin/users?verified=&page=&limit=
func (h *AdminUserHandler) List(c echo.Context) error {
	verified, err := queryBoolPtr(c, "verified")
	if err != nil {
		return writeError(c, h.log, err)
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return writeError(c, h.log, err)
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.List(c.Request().Context(), actorFrom(c), usecase.AdminUserListInput{
		Verified: verified,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// PUT /admin/users/:id/verification
func (h *AdminUserHandler) SetVerification(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	var req verificationRequest
	if err := bindJSON(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	if req.Verified == nil {
		return writeError(c, h.log, usecase.NewValidationError("verified is required"))
	}

	user, err := h.uc.SetVerified(c.Request().Context(), actorFrom(c), id, *req.Verified)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, user)
}

// POST /admin/users/:id/force-logout
func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}
