package repository

import (
	"context"

	"ton-shipping/internal/domain/model"
)

type AdminShipmentListFilter struct {
	Page   int
	Limit  int
	Status string
	// 追跡番号・顧客名・受取人名の部分一致
	Q string
}

// 管理画面の一覧行（顧客名つき）
type ShipmentWithCustomer struct {
	model.Shipment
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

type ShipmentRepository interface {
	// Tx内ではSAVEPOINTで挿入する。ErrDuplicateでもTxはそのまま使える。
	Create(ctx context.Context, s *model.Shipment) error
	FindByID(ctx context.Context, shipmentID int64) (model.Shipment, error)
	// 行ロック付き（Tx内で使う）
	FindByIDForUpdate(ctx context.Context, shipmentID int64) (model.Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (model.Shipment, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Shipment, error)
	ListAdmin(ctx context.Context, f AdminShipmentListFilter) ([]ShipmentWithCustomer, int64, error)

	// versionが一致したときだけ更新し、versionを+1する。
	// 不一致ならErrStaleVersion。locationがnilなら現在地は変えない。
	UpdateStatusIfVersion(ctx context.Context, shipmentID int64, expectedVersion int64, status model.ShipmentStatus, location *string) error

	// ステータス別件数。userIDがnilなら全件。
	CountByStatus(ctx context.Context, userID *int64) (map[model.ShipmentStatus]int64, error)
	ListRecent(ctx context.Context, limit int) ([]ShipmentWithCustomer, error)
	// 古い順
	ListByStatuses(ctx context.Context, statuses []model.ShipmentStatus, limit int) ([]ShipmentWithCustomer, error)
}
