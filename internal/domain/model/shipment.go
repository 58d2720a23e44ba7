package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShipmentStatus string

const (
	ShipmentStatusRegistered         ShipmentStatus = "Registered"
	ShipmentStatusDocumentsPending   ShipmentStatus = "Documents Pending"
	ShipmentStatusDocumentsSubmitted ShipmentStatus = "Documents Submitted"
	ShipmentStatusCustomsProcessing  ShipmentStatus = "Customs Processing"
	ShipmentStatusCleared            ShipmentStatus = "Cleared"
	ShipmentStatusInTransit          ShipmentStatus = "In Transit"
	ShipmentStatusAtPort             ShipmentStatus = "At Port"
	ShipmentStatusOutForDelivery     ShipmentStatus = "Out for Delivery"
	ShipmentStatusDelivered          ShipmentStatus = "Delivered"
	ShipmentStatusException          ShipmentStatus = "Exception"
)

// 通常の進行順。Exceptionはどこからでも入れる。
var ShipmentStatuses = []ShipmentStatus{
	ShipmentStatusRegistered,
	ShipmentStatusDocumentsPending,
	ShipmentStatusDocumentsSubmitted,
	ShipmentStatusCustomsProcessing,
	ShipmentStatusCleared,
	ShipmentStatusInTransit,
	ShipmentStatusAtPort,
	ShipmentStatusOutForDelivery,
	ShipmentStatusDelivered,
	ShipmentStatusException,
}

var statusBadgeColors = map[ShipmentStatus]string{
	ShipmentStatusRegistered:         "secondary",
	ShipmentStatusDocumentsPending:   "warning",
	ShipmentStatusDocumentsSubmitted: "info",
	ShipmentStatusCustomsProcessing:  "primary",
	ShipmentStatusCleared:            "success",
	ShipmentStatusInTransit:          "primary",
	ShipmentStatusAtPort:             "info",
	ShipmentStatusOutForDelivery:     "warning",
	ShipmentStatusDelivered:          "success",
	ShipmentStatusException:          "danger",
}

func (s ShipmentStatus) Valid() bool {
	_, ok := statusBadgeColors[s]
	return ok
}

// 表示用のバッジ色。未知の値はsecondary。
func (s ShipmentStatus) BadgeColor() string {
	if c, ok := statusBadgeColors[s]; ok {
		return c
	}
	return "secondary"
}

// 輸送中として数えるステータス
var ActiveShipmentStatuses = []ShipmentStatus{
	ShipmentStatusInTransit,
	ShipmentStatusAtPort,
	ShipmentStatusOutForDelivery,
}

// 管理者の対応待ち
var AttentionShipmentStatuses = []ShipmentStatus{
	ShipmentStatusRegistered,
	ShipmentStatusDocumentsPending,
}

type ShipmentType string

const (
	ShipmentTypeImport ShipmentType = "import"
	ShipmentTypeExport ShipmentType = "export"
	ShipmentTypeLocal  ShipmentType = "local"
)

var ShipmentTypes = []ShipmentType{ShipmentTypeImport, ShipmentTypeExport, ShipmentTypeLocal}

func (t ShipmentType) Valid() bool {
	switch t {
	case ShipmentTypeImport, ShipmentTypeExport, ShipmentTypeLocal:
		return true
	}
	return false
}

const DefaultDestinationPort = "Walvis Bay"

type Shipment struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TrackingNumber  string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"tracking_number"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	SenderName      string          `gorm:"type:varchar(255);not null" json:"sender_name"`
	SenderPhone     string          `gorm:"type:varchar(50)" json:"sender_phone"`
	SenderAddress   string          `gorm:"type:text" json:"sender_address"`
	ReceiverName    string          `gorm:"type:varchar(255);not null" json:"receiver_name"`
	ReceiverPhone   string          `gorm:"type:varchar(50)" json:"receiver_phone"`
	ReceiverAddress string          `gorm:"type:text;not null" json:"receiver_address"`
	OriginPort      string          `gorm:"type:varchar(255)" json:"origin_port"`
	DestinationPort string          `gorm:"type:varchar(255);not null" json:"destination_port"`
	ShipmentType    ShipmentType    `gorm:"type:varchar(20);not null" json:"shipment_type"`
	TotalWeight     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_weight"`
	ContainerNumber string          `gorm:"type:varchar(100)" json:"container_number"`
	VesselName      string          `gorm:"type:varchar(255)" json:"vessel_name"`
	Status          ShipmentStatus  `gorm:"type:varchar(50);not null;index" json:"status"`
	CurrentLocation string          `gorm:"type:varchar(255)" json:"current_location"`
	Notes           string          `gorm:"type:text" json:"notes"`
	Version         int64           `gorm:"not null;default:1" json:"version"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
