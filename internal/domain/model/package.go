package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 貨物の梱包単位
type Package struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ShipmentID    int64           `gorm:"not null;index" json:"shipment_id"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	Weight        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"weight"`
	Dimensions    string          `gorm:"type:varchar(100)" json:"dimensions"`
	DeclaredValue decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"declared_value"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
