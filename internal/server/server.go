package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ton-shipping/internal/config"
	"ton-shipping/internal/handler"
	appmw "ton-shipping/internal/middleware"
	"ton-shipping/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ルーティングに必要なhandler一式
type Handlers struct {
	Auth          *handler.AuthHandler
	Shipment      *handler.ShipmentHandler
	Document      *handler.DocumentHandler
	Invoice       *handler.InvoiceHandler
	AdminShipment *handler.AdminShipmentHandler
	AdminUser     *handler.AdminUserHandler
	AuditLog      *handler.AuditLogHandler
}

type Deps struct {
	Cfg      config.Config
	Log      *zap.Logger
	Users    repository.UserRepository
	Handlers Handlers
}

// 共通middlewareとルートを載せたechoを作る
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(appmw.RequestLogger(d.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{d.Cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, appmw.CsrfHeaderName},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit(bodyLimit(d.Cfg.MaxUploadBytes)))

	registerRoutes(e, d)
	return e
}

// アップロード上限にmultipartのヘッダ分を足す
func bodyLimit(maxUpload int64) string {
	kb := (maxUpload + 1<<20) / 1024
	return fmt.Sprintf("%dK", kb)
}

// IPごとの簡易レート制限
func rateLimit(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = 5
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     int(perSecond * 2),
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		},
	})
}

// echo由来のエラー（404ルートなど）も {"error": ...} で返す
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = http.StatusText(code)
		} else {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}

// Graceful shutdown付きで起動する。ctxがキャンセルされたら止める。
func Run(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("server shutting down")
	return e.Shutdown(shutdownCtx)
}
