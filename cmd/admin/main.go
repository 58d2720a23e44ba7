package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"ton-shipping/internal/config"
	"ton-shipping/internal/domain/model"
	"ton-shipping/internal/infra/db"
	infraRepo "ton-shipping/internal/infra/repository"
	"ton-shipping/internal/repository"
	auth "ton-shipping/internal/usecase/auth_usecase"
	"ton-shipping/internal/validator"
)

// 管理者アカウントの作成（既存ユーザーなら昇格）
// usage: admin -email a@example.com -password xxxxxxxx -name "Port Admin"
func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password (new accounts only)")
	name := flag.String("name", "Administrator", "full name")
	flag.Parse()

	if err := run(context.Background(), *email, *password, *name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, email, password, name string) error {
	email = validator.NormalizeEmail(email)
	if email == "" {
		return errors.New("-email is required")
	}

	config.LoadDotEnv()
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg.DatabaseDSN(), db.DefaultPoolOptions())
	if err != nil {
		return err
	}
	users := infraRepo.NewUserGormRepository(gormDB)

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = model.RoleAdmin
		existing.IsVerified = true
		if err := users.Update(ctx, existing); err != nil {
			return err
		}
		fmt.Printf("promoted %s to admin\n", email)
		return nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return err
	}

	if len(password) < 8 || validator.IsWeakPassword(password) {
		return errors.New("-password must be at least 8 characters and not a common password")
	}
	hashed, err := auth.NewBcrypt(0).Hash(password)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := users.Create(ctx, &model.User{
		FullName:     name,
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return err
	}
	fmt.Printf("created admin %s\n", email)
	return nil
}
