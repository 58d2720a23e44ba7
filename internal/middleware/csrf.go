package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CsrfCookieName = "csrf_token"
	CsrfHeaderName = "X-CSRF-Token"
)

// Double Submit：cookie csrf_tokenとheader X-CSRF-Tokenが同じ値であること
func CSRFGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CsrfCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusForbidden, errorJSON("csrf token missing"))
			}
			header := c.Request().Header.Get(CsrfHeaderName)
			if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
				return c.JSON(http.StatusForbidden, errorJSON("csrf token mismatch"))
			}
			return next(c)
		}
	}
}
