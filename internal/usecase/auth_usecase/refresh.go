package auth

import (
	"context"
	"errors"
	"time"

	"ton-shipping/internal/repository"
)

type RefreshInput struct {
	PlainRefreshToken string
	UserAgent         string
}

// refresh tokenのローテーション。使用済みが来たらそのユーザーの全セッションを消す。
type RefreshUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

func (u *RefreshUsecase) Execute(ctx context.Context, in RefreshInput) (JwtAccessToken, SessionCookies, error) {
	var side SessionCookies
	if in.PlainRefreshToken == "" {
		return JwtAccessToken{}, side, ErrInvalidRefreshToken
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(in.PlainRefreshToken))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return JwtAccessToken{}, side, ErrInvalidRefreshToken
	}
	if err != nil {
		return JwtAccessToken{}, side, err
	}

	now := u.clock.Now()

	//期限切れ
	if rt.ExpiresAt.Before(now) {
		_ = u.rtRepo.DeleteByID(ctx, rt.ID)
		return JwtAccessToken{}, side, ErrInvalidRefreshToken
	}

	//used済みが来たら replay → 全削除
	if rt.UsedAt != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return JwtAccessToken{}, side, ErrSecurityIncident
	}

	//user_agent違い（再認証扱い。全削除）
	if in.UserAgent != "" && rt.UserAgent != "" && in.UserAgent != rt.UserAgent {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return JwtAccessToken{}, side, ErrSecurityIncident
	}

	user, err := u.userRepo.FindByID(ctx, rt.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return JwtAccessToken{}, side, ErrInvalidRefreshToken
	}
	if err != nil {
		return JwtAccessToken{}, side, err
	}
	if !canSignIn(user) {
		_ = u.rtRepo.DeleteAllByUserID(ctx, user.ID)
		return JwtAccessToken{}, side, ErrPendingVerification
	}

	//旧tokenをusedにする
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return JwtAccessToken{}, side, ErrSecurityIncident
	}

	//新tokenを作って保存
	newRT, side, err := newSession(u.idGen, user.ID, in.UserAgent, now, u.refreshTTL)
	if err != nil {
		return JwtAccessToken{}, side, err
	}
	if err := u.rtRepo.Create(ctx, newRT); err != nil {
		return JwtAccessToken{}, side, err
	}

	//access再発行
	accessToken, exp, err := u.issuer.Issue(*user, now)
	if err != nil {
		return JwtAccessToken{}, side, err
	}
	return newJwtAccessToken(accessToken, exp, now, user.TokenVersion), side, nil
}
