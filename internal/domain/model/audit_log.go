package model

import (
	"time"

	"gorm.io/datatypes"
)

// 管理者操作の種類
type AuditAction string

const (
	//顧客の承認
	AuditActionVerifyUser AuditAction = "VERIFY_USER"
	//顧客の承認取り消し
	AuditActionUnverifyUser AuditAction = "UNVERIFY_USER"
	//貨物ステータスの更新
	AuditActionUpdateShipmentStatus AuditAction = "UPDATE_SHIPMENT_STATUS"
	//請求書の発行
	AuditActionGenerateInvoice AuditAction = "GENERATE_INVOICE"
	//入金確認
	AuditActionConfirmPayment AuditAction = "CONFIRM_PAYMENT"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceShipment AuditResourceType = "shipment"
	AuditResourceInvoice  AuditResourceType = "invoice"
	AuditResourceUser     AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//変更前後（jsonb）
	BeforeJSON datatypes.JSON `gorm:"type:jsonb" json:"before_json"`
	AfterJSON  datatypes.JSON `gorm:"type:jsonb" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
