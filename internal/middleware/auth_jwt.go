package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ton-shipping/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxActorKey        = "actor"         // model.Actor
	CtxTokenVersionKey = "token_version" // int
)

var errBadClaims = errors.New("invalid claims")

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
}

// Authorization: Bearer <jwt> を検証してActorとtvをcontextに入れる。
// HS256以外、期限切れ、未知のroleは401。
func AuthJWT(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c)
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
				return key, nil
			})
			if err != nil || !token.Valid {
				return unauthorized(c)
			}

			actor, tv, err := actorFromClaims(claims)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(CtxActorKey, actor)
			c.Set(CtxTokenVersionKey, tv)
			return next(c)
		}
	}
}

// AuthJWTが入れたActorを取り出す
func ActorFrom(c echo.Context) (model.Actor, bool) {
	actor, ok := c.Get(CtxActorKey).(model.Actor)
	if !ok || !actor.Authenticated() {
		return model.Actor{}, false
	}
	return actor, true
}

func bearerToken(header string) (string, bool) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// sub / role / vf / tv
func actorFromClaims(claims jwt.MapClaims) (model.Actor, int, error) {
	userID, err := claimInt64(claims["sub"])
	if err != nil || userID <= 0 {
		return model.Actor{}, 0, errBadClaims
	}

	roleStr, _ := claims["role"].(string)
	role := model.Role(roleStr)
	if role != model.RoleCustomer && role != model.RoleAdmin {
		return model.Actor{}, 0, errBadClaims
	}

	tv, err := claimInt64(claims["tv"])
	if err != nil || tv < 0 {
		return model.Actor{}, 0, errBadClaims
	}

	verified, _ := claims["vf"].(bool)
	return model.Actor{UserID: userID, Role: role, Verified: verified}, int(tv), nil
}

// JSONの数値はfloat64で来る。文字列も受ける。
func claimInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	}
	return 0, errBadClaims
}
