package repository

import (
	"context"

	"ton-shipping/internal/domain/model"
)

// 追記のみ。更新・削除は持たない。
type ShipmentHistoryRepository interface {
	Append(ctx context.Context, h model.ShipmentHistory) error
	// 新しい順
	ListByShipmentID(ctx context.Context, shipmentID int64) ([]model.ShipmentHistory, error)
}
