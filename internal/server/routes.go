package server

import (
	"ton-shipping/internal/handler"
	appmw "ton-shipping/internal/middleware"

	"github.com/labstack/echo/v4"
)

func registerRoutes(e *echo.Echo, d Deps) {
	h := d.Handlers
	authed := []echo.MiddlewareFunc{
		appmw.AuthJWT(d.Cfg.JWTSecret),
		appmw.TokenVersionGuard(d.Users),
	}

	//公開
	e.GET("/track/:tracking_number", h.Shipment.Track, rateLimit(d.Cfg.TrackRateLimit))
	e.GET("/meta/vocabulary", handler.Vocabulary)

	//認証
	a := e.Group("/auth")
	a.POST("/register", h.Auth.Register, rateLimit(d.Cfg.TrackRateLimit))
	a.POST("/login", h.Auth.Login, rateLimit(d.Cfg.TrackRateLimit))
	a.POST("/refresh", h.Auth.Refresh, appmw.CSRFGuard())
	a.POST("/logout", h.Auth.Logout, appmw.CSRFGuard())
	a.GET("/me", h.Auth.Me, authed...)

	//顧客（閲覧はログインのみ、書き込みは承認済み）
	s := e.Group("/shipments", authed...)
	s.GET("", h.Shipment.ListMine)
	s.GET("/:id", h.Shipment.Detail)
	s.GET("/:id/documents/:doc_id/file", h.Document.Download)
	s.POST("", h.Shipment.Create, appmw.VerifiedGuard())
	s.POST("/:id/documents", h.Document.Upload, appmw.VerifiedGuard())
	s.POST("/:id/invoices/:invoice_id/proof", h.Invoice.UploadProof, appmw.VerifiedGuard())

	e.GET("/invoices/:id", h.Invoice.Get, authed...)

	//管理者
	adminMW := append(authed, appmw.AdminRoleGuard())
	ad := e.Group("/admin", adminMW...)
	ad.GET("/dashboard", h.AdminShipment.Dashboard)
	ad.GET("/shipments", h.AdminShipment.List)
	ad.PUT("/shipments/:id/status", h.AdminShipment.UpdateStatus)
	ad.POST("/shipments/:id/invoice", h.Invoice.Generate)
	ad.POST("/invoices/:id/confirm", h.Invoice.ConfirmPayment)
	ad.GET("/invoices/:id/proofs", h.Invoice.ListProofs)
	ad.GET("/users", h.AdminUser.List)
	ad.PUT("/users/:id/verification", h.AdminUser.SetVerification)
	ad.POST("/users/:id/force-logout", h.AdminUser.ForceLogout)
	ad.GET("/audit-logs", h.AuditLog.List)
}
