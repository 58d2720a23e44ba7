package repository

import (
	"context"
	"errors"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"gorm.io/gorm"
)

type DocumentGormRepository struct {
	db *gorm.DB
}

func NewDocumentGormRepository(db *gorm.DB) *DocumentGormRepository {
	return &DocumentGormRepository{db: db}
}

func (r *DocumentGormRepository) Create(ctx context.Context, d *model.Document) error {
	return translateError(r.db.WithContext(ctx).Create(d).Error)
}

func (r *DocumentGormRepository) FindByID(ctx context.Context, documentID int64) (model.Document, error) {
	var d model.Document
	err := r.db.WithContext(ctx).Where("id = ?", documentID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Document{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Document{}, err
	}
	return d, nil
}

func (r *DocumentGormRepository) ListByShipmentID(ctx context.Context, shipmentID int64) ([]model.Document, error) {
	var items []model.Document
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return []model.Document{}, err
	}
	return items, nil
}

func (r *DocumentGormRepository) ListPaymentProofs(ctx context.Context, invoiceID int64) ([]model.Document, error) {
	var items []model.Document
	err := r.db.WithContext(ctx).
		Where("invoice_id = ? AND is_payment_proof = ?", invoiceID, true).
		Order("uploaded_at DESC").
		Find(&items).Error
	if err != nil {
		return []model.Document{}, err
	}
	return items, nil
}

func (r *DocumentGormRepository) HasPaymentProof(ctx context.Context, invoiceID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Document{}).
		Where("invoice_id = ? AND is_payment_proof = ?", invoiceID, true).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
