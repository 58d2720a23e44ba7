package repository

import (
	"context"
	"errors"
	"time"

	"ton-shipping/internal/domain/model"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// ログインセッション（ハッシュ化したrefresh token）
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// 未使用のものだけ使用済みにする。既に使用済みならErrRefreshTokenNotFound
	MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error
	// 強制ログアウト・承認取り消し・replay検知で使う
	DeleteAllByUserID(ctx context.Context, userID int64) error
	DeleteByID(ctx context.Context, tokenID string) error
}
