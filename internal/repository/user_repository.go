package repository

import (
	"context"
	"errors"

	"ton-shipping/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 管理画面のユーザー一覧条件
type UserListFilter struct {
	Verified *bool
	Page     int
	Limit    int
}

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 最終ログインやロールの変更など
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error

	// 管理者以外のユーザー一覧（未承認が先、新しい順）
	ListCustomers(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
	// 顧客の承認状態を変える。管理者は対象外（ErrUserNotFound）。
	SetVerified(ctx context.Context, userID int64, verified bool) error
	// 顧客数と未承認数
	CountCustomers(ctx context.Context) (total int64, pending int64, err error)
}
