package repository

import (
	"context"
	"errors"
	"time"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceGormRepository struct {
	db *gorm.DB
}

func NewInvoiceGormRepository(db *gorm.DB) *InvoiceGormRepository {
	return &InvoiceGormRepository{db: db}
}

func (r *InvoiceGormRepository) Create(ctx context.Context, inv *model.Invoice, items []model.InvoiceFeeItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(inv).Error; err != nil {
		return translateError(err)
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].InvoiceID = inv.ID
	}
	return translateError(db.Create(&items).Error)
}

func (r *InvoiceGormRepository) find(q *gorm.DB) (model.Invoice, error) {
	var inv model.Invoice
	err := q.First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceGormRepository) FindByID(ctx context.Context, invoiceID int64) (model.Invoice, error) {
	return r.find(r.db.WithContext(ctx).Where("id = ?", invoiceID))
}

func (r *InvoiceGormRepository) FindByIDForUpdate(ctx context.Context, invoiceID int64) (model.Invoice, error) {
	return r.find(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", invoiceID))
}

func (r *InvoiceGormRepository) FindByShipmentID(ctx context.Context, shipmentID int64) (model.Invoice, error) {
	return r.find(r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID))
}

func (r *InvoiceGormRepository) ListByShipmentIDs(ctx context.Context, shipmentIDs []int64) (map[int64]model.Invoice, error) {
	out := make(map[int64]model.Invoice, len(shipmentIDs))
	if len(shipmentIDs) == 0 {
		return out, nil
	}
	var items []model.Invoice
	if err := r.db.WithContext(ctx).Where("shipment_id IN ?", shipmentIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, inv := range items {
		out[inv.ShipmentID] = inv
	}
	return out, nil
}

func (r *InvoiceGormRepository) ListItems(ctx context.Context, invoiceID int64) ([]model.InvoiceFeeItem, error) {
	var items []model.InvoiceFeeItem
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("position asc").
		Find(&items).Error
	if err != nil {
		return []model.InvoiceFeeItem{}, err
	}
	return items, nil
}

// 条件付きUPDATEで二重の入金確認を防ぐ
func (r *InvoiceGormRepository) MarkPaidIfPending(ctx context.Context, invoiceID int64, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ? AND status = ?", invoiceID, model.InvoiceStatusPending).
		Updates(map[string]interface{}{
			"status":  model.InvoiceStatusPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
