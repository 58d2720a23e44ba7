package usecase

import (
	"net/http"
	"time"

	"ton-shipping/internal/domain/model"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// 保存ファイル名などに使うID
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// 入力structの検証（validator.RequestValidatorが実装）
type InputValidator interface {
	ValidateStruct(s interface{}) []string
}

// 認証済みかつ取引可能か
func requireTransactor(actor model.Actor) error {
	if !actor.Authenticated() {
		return errUnauthorized()
	}
	if !actor.CanTransact() {
		return NewHTTPError(http.StatusForbidden, "account not verified")
	}
	return nil
}

func requireAdmin(actor model.Actor) error {
	if !actor.Authenticated() {
		return errUnauthorized()
	}
	if !actor.IsAdmin() {
		return NewHTTPError(http.StatusForbidden, "admin only")
	}
	return nil
}

// 管理者か持ち主だけ
func canAccessShipment(actor model.Actor, s model.Shipment) bool {
	return actor.IsAdmin() || (actor.Authenticated() && s.UserID == actor.UserID)
}
