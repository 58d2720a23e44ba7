package repository

import (
	"context"

	"ton-shipping/internal/domain/model"

	"gorm.io/gorm"
)

type ShipmentHistoryGormRepository struct {
	db *gorm.DB
}

func NewShipmentHistoryGormRepository(db *gorm.DB) *ShipmentHistoryGormRepository {
	return &ShipmentHistoryGormRepository{db: db}
}

func (r *ShipmentHistoryGormRepository) Append(ctx context.Context, h model.ShipmentHistory) error {
	return r.db.WithContext(ctx).Create(&h).Error
}

// 同時刻はidで並べる
func (r *ShipmentHistoryGormRepository) ListByShipmentID(ctx context.Context, shipmentID int64) ([]model.ShipmentHistory, error) {
	var items []model.ShipmentHistory
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("changed_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return []model.ShipmentHistory{}, err
	}
	return items, nil
}
