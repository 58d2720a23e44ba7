package handler

import (
	"net/http"
	"time"

	"ton-shipping/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuditLogHandler struct {
	uc  *usecase.AuditLogUsecase
	log *zap.Logger
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase, log *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{uc: uc, log: log}
}

// RFC3339のみ受け付ける
func queryTimePtr(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, usecase.NewValidationError("invalid " + name)
	}
	return &t, nil
}

// GET /admin/audit-logs
func (h *AuditLogHandler) List(c echo.Context) error {
	in := usecase.AuditLogListInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
	}

	var err error
	if in.ActorUserID, err = queryInt64Ptr(c, "actor_user_id"); err != nil {
		return writeError(c, h.log, err)
	}
	if in.ResourceID, err = queryInt64Ptr(c, "resource_id"); err != nil {
		return writeError(c, h.log, err)
	}
	if in.From, err = queryTimePtr(c, "from"); err != nil {
		return writeError(c, h.log, err)
	}
	if in.To, err = queryTimePtr(c, "to"); err != nil {
		return writeError(c, h.log, err)
	}
	if in.Limit, err = queryInt(c, "limit", 0); err != nil {
		return writeError(c, h.log, err)
	}
	if in.Offset, err = queryInt(c, "offset", 0); err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.List(c.Request().Context(), actorFrom(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
