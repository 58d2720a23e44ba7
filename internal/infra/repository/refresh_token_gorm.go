package repository

import (
	"context"
	"errors"
	"time"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"gorm.io/gorm"
)

type RefreshTokenGormRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenGormRepository {
	return &RefreshTokenGormRepository{db: db}
}

// 0件ならセッションが無い扱い
func sessionAffected(res *gorm.DB) error {
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrRefreshTokenNotFound
	}
	return nil
}

func (r *RefreshTokenGormRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return translateError(r.db.WithContext(ctx).Create(token).Error)
}

func (r *RefreshTokenGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var token model.RefreshToken
	err := translateError(r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Take(&token).Error)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, repo.ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// 2つのrefreshが同時に来ても片方しか通らない
func (r *RefreshTokenGormRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	return sessionAffected(r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("id = ? AND used_at IS NULL", tokenID).
		Update("used_at", usedAt))
}

func (r *RefreshTokenGormRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	return translateError(r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error)
}

func (r *RefreshTokenGormRepository) DeleteByID(ctx context.Context, tokenID string) error {
	return sessionAffected(r.db.WithContext(ctx).Where("id = ?", tokenID).Delete(&model.RefreshToken{}))
}
