package model

import "time"

// ステータス変更の追記専用ログ。更新・削除はしない。
type ShipmentHistory struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ShipmentID int64          `gorm:"not null;index" json:"shipment_id"`
	Status     ShipmentStatus `gorm:"type:varchar(50);not null" json:"status"`
	Notes      string         `gorm:"type:text" json:"notes"`
	ChangedBy  int64          `gorm:"not null" json:"changed_by"`
	ChangedAt  time.Time      `gorm:"not null" json:"changed_at"`
}

func (ShipmentHistory) TableName() string {
	return "shipment_history"
}
