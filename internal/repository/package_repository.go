package repository

import (
	"context"

	"ton-shipping/internal/domain/model"
)

type PackageRepository interface {
	CreateBulk(ctx context.Context, shipmentID int64, pkgs []model.Package) error
	ListByShipmentID(ctx context.Context, shipmentID int64) ([]model.Package, error)
}
