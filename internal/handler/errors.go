package handler

import (
	"errors"
	"net/http"
	"strconv"

	"ton-shipping/internal/domain/model"
	"ton-shipping/internal/middleware"
	"ton-shipping/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// usecaseのエラーをステータスとJSONにする。5xxは中身をログにだけ出す。
func writeError(c echo.Context, log *zap.Logger, err error) error {
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("path", c.Path()),
				zap.String("kind", string(he.Kind)),
				zap.Error(he.Err),
			)
		}
		return c.JSON(he.Status, errorResponse{Error: he.Message, Details: he.Details})
	}

	var ee *echo.HTTPError
	if errors.As(err, &ee) {
		return c.JSON(ee.Code, errorJSON(http.StatusText(ee.Code)))
	}

	log.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
}

// ルートは必ずAuthJWTの後ろに置く
func actorFrom(c echo.Context) model.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}

// パスの:idなどを正の整数として読む
func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewValidationError("invalid " + name)
	}
	return id, nil
}

// JSONボディを読む。壊れたJSONは400。
func bindJSON(c echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return usecase.NewValidationError("invalid request body")
	}
	return nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, usecase.NewValidationError("invalid " + name)
	}
	return n, nil
}

func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, usecase.NewValidationError("invalid " + name)
	}
	return &n, nil
}

func queryBoolPtr(c echo.Context, name string) (*bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, usecase.NewValidationError("invalid " + name)
	}
	return &b, nil
}
