package repository

import (
	"context"
	"time"

	"ton-shipping/internal/domain/model"
)

type InvoiceRepository interface {
	// 請求書と内訳をまとめて保存する
	Create(ctx context.Context, inv *model.Invoice, items []model.InvoiceFeeItem) error
	FindByID(ctx context.Context, invoiceID int64) (model.Invoice, error)
	FindByIDForUpdate(ctx context.Context, invoiceID int64) (model.Invoice, error)
	FindByShipmentID(ctx context.Context, shipmentID int64) (model.Invoice, error)
	ListByShipmentIDs(ctx context.Context, shipmentIDs []int64) (map[int64]model.Invoice, error)
	ListItems(ctx context.Context, invoiceID int64) ([]model.InvoiceFeeItem, error)

	// Pendingのときだけ Paid にする。更新できなければ false。
	MarkPaidIfPending(ctx context.Context, invoiceID int64, paidAt time.Time) (bool, error)
}
