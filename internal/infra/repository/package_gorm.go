package repository

import (
	"context"

	"ton-shipping/internal/domain/model"

	"gorm.io/gorm"
)

type PackageGormRepository struct {
	db *gorm.DB
}

func NewPackageGormRepository(db *gorm.DB) *PackageGormRepository {
	return &PackageGormRepository{db: db}
}

func (r *PackageGormRepository) CreateBulk(ctx context.Context, shipmentID int64, pkgs []model.Package) error {
	if len(pkgs) == 0 {
		return nil
	}
	for i := range pkgs {
		pkgs[i].ShipmentID = shipmentID
	}
	return translateError(r.db.WithContext(ctx).Create(&pkgs).Error)
}

func (r *PackageGormRepository) ListByShipmentID(ctx context.Context, shipmentID int64) ([]model.Package, error) {
	var items []model.Package
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Package{}, err
	}
	return items, nil
}
