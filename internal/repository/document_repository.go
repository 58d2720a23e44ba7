package repository

import (
	"context"

	"ton-shipping/internal/domain/model"
)

type DocumentRepository interface {
	Create(ctx context.Context, d *model.Document) error
	FindByID(ctx context.Context, documentID int64) (model.Document, error)
	// 新しい順（支払い証明も含む）
	ListByShipmentID(ctx context.Context, shipmentID int64) ([]model.Document, error)
	ListPaymentProofs(ctx context.Context, invoiceID int64) ([]model.Document, error)
	HasPaymentProof(ctx context.Context, invoiceID int64) (bool, error)
}
