package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"ton-shipping/internal/domain/model"
	"ton-shipping/internal/usecase"
)

var (
	// メールまたはパスワードが違う
	ErrInvalidCredentials = usecase.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	// 管理者の承認待ち
	ErrPendingVerification = usecase.NewHTTPError(http.StatusForbidden, "account pending verification")
	// 同じメールで登録済み
	ErrEmailAlreadyExists = usecase.NewHTTPError(http.StatusConflict, "email already registered")
	// refresh tokenが無効・期限切れ
	ErrInvalidRefreshToken = usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	// 使用済みrefresh tokenの再利用
	ErrSecurityIncident = usecase.NewHTTPError(http.StatusUnauthorized, "security incident")
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(user model.User, now time.Time) (token string, expiresAt time.Time, err error)
}

// token 形（JwtAccessToken相当）
type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// handlerがCookieに詰めるために必要な値
type SessionCookies struct {
	PlainRefreshToken string
	CsrfToken         string
}

func newJwtAccessToken(token string, expiresAt, now time.Time, tv int) JwtAccessToken {
	return JwtAccessToken{
		AccessToken:  token,
		ExpiresIn:    int(expiresAt.Sub(now).Seconds()),
		TokenVersion: tv,
	}
}

func generateSecureToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", fmt.Errorf("bytesLen must be positive")
	}

	// ランダムなバイト列を作る（OSが持つ安全な乱数）
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DBにはハッシュだけ保存する
func hashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// refresh tokenとcsrf tokenを作ってrefreshだけ保存用のモデルにする
func newSession(idGen IDGenerator, userID int64, userAgent string, now time.Time, ttl time.Duration) (*model.RefreshToken, SessionCookies, error) {
	plain, err := generateSecureToken(32)
	if err != nil {
		return nil, SessionCookies{}, err
	}
	csrf, err := generateSecureToken(32)
	if err != nil {
		return nil, SessionCookies{}, err
	}

	rt := &model.RefreshToken{
		ID:        idGen.NewID(),
		UserID:    userID,
		TokenHash: hashRefreshToken(plain),
		UserAgent: userAgent,
		ExpiresAt: now.Add(ttl),
	}
	return rt, SessionCookies{PlainRefreshToken: plain, CsrfToken: csrf}, nil
}

// 顧客は承認済みでないとトークンを渡さない
func canSignIn(u *model.User) bool {
	return u.IsAdmin() || u.IsVerified
}
