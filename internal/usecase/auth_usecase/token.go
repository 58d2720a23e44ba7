package auth

import (
	"time"

	"ton-shipping/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// HS256のアクセストークン発行
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

// claims: sub / role / vf(verified) / tv(token_version)
func (i *JWTIssuer) Issue(user model.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"vf":   user.IsVerified,
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
