package auth

import (
	"context"
	"errors"
	"time"

	"ton-shipping/internal/domain/model"
	"ton-shipping/internal/repository"
	"ton-shipping/internal/usecase"
	"ton-shipping/internal/validator"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	UserAgent string `json:"-"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User     `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type LoginUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	verifier   PasswordVerifier
	issuer     AccessTokenIssuer
	validator  usecase.InputValidator
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	inputValidator usecase.InputValidator,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		verifier:   verifier,
		issuer:     issuer,
		validator:  inputValidator,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, SessionCookies, error) {
	var out LoginOutput
	var side SessionCookies

	in.Email = validator.NormalizeEmail(in.Email)
	if msgs := u.validator.ValidateStruct(in); len(msgs) > 0 {
		return out, side, usecase.NewValidationError(msgs...)
	}

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, side, ErrInvalidCredentials
		}
		return out, side, err
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, side, ErrInvalidCredentials
	}

	//未承認の顧客はログイン不可
	if !canSignIn(user) {
		return out, side, ErrPendingVerification
	}

	//AccessToken発行
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(*user, now)
	if err != nil {
		return out, side, err
	}

	//RefreshToken生成
	refresh, side, err := newSession(u.idGen, user.ID, in.UserAgent, now, u.refreshTTL)
	if err != nil {
		return out, side, err
	}
	if err := u.rtRepo.Create(ctx, refresh); err != nil {
		return out, side, err
	}

	//最終ログイン時刻更新
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, side, err
	}

	out.User = *user
	out.Token = newJwtAccessToken(accessToken, accessExp, now, user.TokenVersion)
	return out, side, nil
}
