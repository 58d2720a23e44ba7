package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ton-shipping/internal/config"
	"ton-shipping/internal/handler"
	"ton-shipping/internal/infra/db"
	infraRepo "ton-shipping/internal/infra/repository"
	"ton-shipping/internal/infra/storage/local"
	s3store "ton-shipping/internal/infra/storage/s3"
	"ton-shipping/internal/logger"
	"ton-shipping/internal/server"
	"ton-shipping/internal/usecase"
	auth "ton-shipping/internal/usecase/auth_usecase"
	"ton-shipping/internal/validator"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg.DatabaseDSN(), db.DefaultPoolOptions())
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	//ファイル保存先
	store, err := newFileStore(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info("file store ready", zap.String("backend", cfg.StorageBackend))

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	ids := usecase.UUIDGenerator{}
	reqValidator := validator.NewRequestValidator()
	uploadRules := validator.DefaultUploadRules(cfg.MaxUploadBytes)
	allocator := usecase.NewNumberAllocator(clock)
	lifecycle := usecase.NewLifecycle(clock)

	//bcrypt（会員登録：Hash / ログイン：Verify）とJWT
	passwords := auth.NewBcrypt(cfg.BcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, passwords, reqValidator, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, passwords, issuer, reqValidator, ids, clock, cfg.RefreshTokenTTL)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, ids, clock, cfg.RefreshTokenTTL)
	logoutUC := auth.NewLogoutUsecase(rtRepo)
	meUC := auth.NewMeUsecase(userRepo)

	shipmentUC := usecase.NewShipmentUsecase(txm, allocator, reqValidator, clock)
	adminShipmentUC := usecase.NewAdminShipmentUsecase(txm, lifecycle, clock)
	documentUC := usecase.NewDocumentUsecase(txm, store, lifecycle, uploadRules, ids, clock, log)
	invoiceUC := usecase.NewInvoiceUsecase(txm, allocator, lifecycle, reqValidator, store, uploadRules, ids, clock, log)
	adminUserUC := usecase.NewAdminUserUsecase(txm, clock)
	auditUC := usecase.NewAuditLogUsecase(txm)

	//Handler生成
	e := server.New(server.Deps{
		Cfg:   cfg,
		Log:   log,
		Users: userRepo,
		Handlers: server.Handlers{
			Auth:          handler.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, meUC, cfg.RefreshTokenTTL, cfg.CookieSecure, log),
			Shipment:      handler.NewShipmentHandler(shipmentUC, log),
			Document:      handler.NewDocumentHandler(documentUC, log),
			Invoice:       handler.NewInvoiceHandler(invoiceUC, log),
			AdminShipment: handler.NewAdminShipmentHandler(adminShipmentUC, log),
			AdminUser:     handler.NewAdminUserHandler(adminUserUC, log),
			AuditLog:      handler.NewAuditLogHandler(auditUC, log),
		},
	})

	//Server起動
	addr := cfg.Port
	if addr == "" || addr[0] != ':' {
		addr = ":" + addr
	}
	return server.Run(ctx, e, addr, log)
}

func newFileStore(ctx context.Context, cfg config.Config) (usecase.FileStore, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		st, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		return st, nil
	default:
		return local.New(cfg.UploadDir), nil
	}
}
