package handler

import (
	"net/http"
	"time"

	"ton-shipping/internal/middleware"
	auth "ton-shipping/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	registerUC   *auth.RegisterUserUsecase
	loginUC      *auth.LoginUsecase
	refreshUC    *auth.RefreshUsecase
	logoutUC     *auth.LogoutUsecase
	meUC         *auth.MeUsecase
	refreshTTL   time.Duration // refresh/csrf cookie の有効期限
	cookieSecure bool
	log          *zap.Logger
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	refreshUC *auth.RefreshUsecase,
	logoutUC *auth.LogoutUsecase,
	meUC *auth.MeUsecase,
	refreshTTL time.Duration,
	cookieSecure bool,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		refreshUC:    refreshUC,
		logoutUC:     logoutUC,
		meUC:         meUC,
		refreshTTL:   refreshTTL,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req auth.RegisterUserInput
	if err := bindJSON(c, &req); err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.registerUC.Execute(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req auth.LoginInput
	if err := bindJSON(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	// User-Agentを取得（refreshtokenに紐付ける）
	req.UserAgent = c.Request().UserAgent()

	out, side, err := h.loginUC.Execute(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}

	h.setSessionCookies(c, side)
	return c.JSON(http.StatusOK, out)
}

// POST /auth/refresh（CSRFGuardの後ろ）
func (h *AuthHandler) Refresh(c echo.Context) error {
	var plain string
	if ck, err := c.Cookie(refreshCookieName); err == nil {
		plain = ck.Value
	}

	out, side, err := h.refreshUC.Execute(c.Request().Context(), auth.RefreshInput{
		PlainRefreshToken: plain,
		UserAgent:         c.Request().UserAgent(),
	})
	if err != nil {
		h.clearSessionCookies(c)
		return writeError(c, h.log, err)
	}

	h.setSessionCookies(c, side)
	return c.JSON(http.StatusOK, out)
}

// POST /auth/logout（CSRFGuardの後ろ）
func (h *AuthHandler) Logout(c echo.Context) error {
	var plain string
	if ck, err := c.Cookie(refreshCookieName); err == nil {
		plain = ck.Value
	}

	if err := h.logoutUC.Execute(c.Request().Context(), plain); err != nil {
		return writeError(c, h.log, err)
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logout success"})
}

// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.meUC.Execute(c.Request().Context(), actorFrom(c).UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, user)
}

// refresh tokenはHttpOnly、csrfはJSから読めるようにする
func (h *AuthHandler) setSessionCookies(c echo.Context, side auth.SessionCookies) {
	exp := time.Now().Add(h.refreshTTL)

	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    side.PlainRefreshToken,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
	c.SetCookie(&http.Cookie{
		Name:     middleware.CsrfCookieName,
		Value:    side.CsrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	for _, ck := range []*http.Cookie{
		{Name: refreshCookieName, Path: "/auth", HttpOnly: true},
		{Name: middleware.CsrfCookieName, Path: "/"},
	} {
		ck.MaxAge = -1
		ck.Secure = h.cookieSecure
		ck.SameSite = http.SameSiteLaxMode
		c.SetCookie(ck)
	}
}
