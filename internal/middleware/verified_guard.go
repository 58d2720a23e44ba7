package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 未承認の顧客は書き込み系に入れない
func VerifiedGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if !actor.CanTransact() {
				return c.JSON(http.StatusForbidden, errorJSON("account not verified"))
			}
			return next(c)
		}
	}
}
