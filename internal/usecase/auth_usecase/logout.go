package auth

import (
	"context"
	"errors"

	"ton-shipping/internal/repository"
)

type LogoutUsecase struct {
	rtRepo repository.RefreshTokenRepository
}

func NewLogoutUsecase(rtRepo repository.RefreshTokenRepository) *LogoutUsecase {
	return &LogoutUsecase{rtRepo: rtRepo}
}

// refreshを削除（失効）。既に無いトークンは成功扱い。
func (u *LogoutUsecase) Execute(ctx context.Context, plainRefreshToken string) error {
	if plainRefreshToken == "" {
		return nil
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plainRefreshToken))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return u.rtRepo.DeleteByID(ctx, rt.ID)
}
