package main

import (
	"context"
	"fmt"
	"os"

	"ton-shipping/internal/config"
	"ton-shipping/internal/infra/db"
	"ton-shipping/internal/logger"

	"go.uber.org/zap"
)

// usage: migrate [up|down]
func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	config.LoadDotEnv()
	cfg, err := config.LoadDatabase()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, cmd); err != nil {
		log.Error("migration failed", zap.String("cmd", cmd), zap.Error(err))
		os.Exit(1)
	}
	log.Info("migration done", zap.String("cmd", cmd))
}

func run(ctx context.Context, cfg config.Config, cmd string) error {
	gormDB, err := db.Connect(cfg.DatabaseDSN(), db.DefaultPoolOptions())
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	switch cmd {
	case "up":
		return db.RunMigrations(ctx, sqlDB)
	case "down":
		return db.RollbackMigration(ctx, sqlDB)
	default:
		return fmt.Errorf("unknown command %q (use up or down)", cmd)
	}
}
