package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "Pending"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
)

const DefaultCurrency = "NAD"

type Invoice struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ShipmentID    int64           `gorm:"not null;uniqueIndex" json:"shipment_id"`
	InvoiceNumber string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"invoice_number"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'NAD'" json:"currency"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     int64           `gorm:"not null" json:"created_by"`
	PaidAt        *time.Time      `json:"paid_at"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 請求の内訳1行。positionの順に表示する。
type InvoiceFeeItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID int64           `gorm:"not null;index" json:"invoice_id"`
	Position  int             `gorm:"not null" json:"position"`
	Name      string          `gorm:"type:varchar(100);not null" json:"name"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
}
