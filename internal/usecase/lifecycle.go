package usecase

import (
	"context"
	"errors"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"
)

// 貨物ステータスの変更と履歴の追記を1組で行う。
// どのメソッドも呼び出し側のWithinTxの中で使う。
type Lifecycle struct {
	clock Clock
}

func NewLifecycle(clock Clock) *Lifecycle {
	return &Lifecycle{clock: clock}
}

type TransitionRequest struct {
	ShipmentID int64
	To         model.ShipmentStatus
	Note       string
	ActorID    int64
	// nilなら現在地は変えない
	Location *string
	// 指定があれば画面で見ていたversionと一致しないと409
	ExpectedVersion *int64
}

// 行ロックを取ってから遷移する。戻り値は変更前と変更後。
func (l *Lifecycle) Transition(ctx context.Context, r repo.TxRepos, req TransitionRequest) (model.Shipment, model.Shipment, error) {
	if !req.To.Valid() {
		return model.Shipment{}, model.Shipment{}, NewValidationError("invalid status")
	}

	s, err := r.Shipments().FindByIDForUpdate(ctx, req.ShipmentID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Shipment{}, model.Shipment{}, errNotFound("shipment")
	}
	if err != nil {
		return model.Shipment{}, model.Shipment{}, errDB(err)
	}

	if req.ExpectedVersion != nil && *req.ExpectedVersion != s.Version {
		return model.Shipment{}, model.Shipment{}, errConflict("shipment was modified by someone else")
	}

	after, err := l.apply(ctx, r, s, req.To, req.Note, req.ActorID, req.Location)
	if err != nil {
		return model.Shipment{}, model.Shipment{}, err
	}
	return s, after, nil
}

// ロック済みのsを遷移させる（自動遷移用）
func (l *Lifecycle) apply(ctx context.Context, r repo.TxRepos, s model.Shipment, to model.ShipmentStatus, note string, actorID int64, location *string) (model.Shipment, error) {
	if !to.Valid() {
		return model.Shipment{}, NewValidationError("invalid status")
	}

	err := r.Shipments().UpdateStatusIfVersion(ctx, s.ID, s.Version, to, location)
	if errors.Is(err, repo.ErrStaleVersion) {
		return model.Shipment{}, errConflict("shipment was modified by someone else")
	}
	if errors.Is(err, repo.ErrNotFound) {
		return model.Shipment{}, errNotFound("shipment")
	}
	if err != nil {
		return model.Shipment{}, errDB(err)
	}

	now := l.clock.Now()
	if err := r.History().Append(ctx, model.ShipmentHistory{
		ShipmentID: s.ID,
		Status:     to,
		Notes:      note,
		ChangedBy:  actorID,
		ChangedAt:  now,
	}); err != nil {
		return model.Shipment{}, errDB(err)
	}

	s.Status = to
	s.Version++
	if location != nil {
		s.CurrentLocation = *location
	}
	s.UpdatedAt = now
	return s, nil
}

// ステータスは変えずに履歴だけ残す（最新履歴=現ステータスを保つ）
func (l *Lifecycle) annotate(ctx context.Context, r repo.TxRepos, s model.Shipment, note string, actorID int64) error {
	if err := r.History().Append(ctx, model.ShipmentHistory{
		ShipmentID: s.ID,
		Status:     s.Status,
		Notes:      note,
		ChangedBy:  actorID,
		ChangedAt:  l.clock.Now(),
	}); err != nil {
		return errDB(err)
	}
	return nil
}
