package repository

import (
	"context"
	"errors"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShipmentGormRepository struct {
	db *gorm.DB
}

func NewShipmentGormRepository(db *gorm.DB) *ShipmentGormRepository {
	return &ShipmentGormRepository{db: db}
}

// Tx内で呼ばれるとgormはSAVEPOINT/ROLLBACK TOで入れ子にする
func (r *ShipmentGormRepository) Create(ctx context.Context, s *model.Shipment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(s).Error
	})
	return translateError(err)
}

func (r *ShipmentGormRepository) FindByID(ctx context.Context, shipmentID int64) (model.Shipment, error) {
	var s model.Shipment
	err := r.db.WithContext(ctx).Where("id = ?", shipmentID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Shipment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Shipment{}, err
	}
	return s, nil
}

// SELECT ... FOR UPDATE
func (r *ShipmentGormRepository) FindByIDForUpdate(ctx context.Context, shipmentID int64) (model.Shipment, error) {
	var s model.Shipment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", shipmentID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Shipment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Shipment{}, err
	}
	return s, nil
}

func (r *ShipmentGormRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (model.Shipment, error) {
	var s model.Shipment
	err := r.db.WithContext(ctx).Where("tracking_number = ?", trackingNumber).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Shipment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Shipment{}, err
	}
	return s, nil
}

func (r *ShipmentGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Shipment, error) {
	var items []model.Shipment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return []model.Shipment{}, err
	}
	return items, nil
}

// 顧客名をjoinしたベースクエリ
func (r *ShipmentGormRepository) withCustomer(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("shipments AS s").
		Select("s.*, u.full_name AS customer_name, u.email AS customer_email").
		Joins("JOIN users u ON u.id = s.user_id")
}

func (r *ShipmentGormRepository) ListAdmin(ctx context.Context, f repo.AdminShipmentListFilter) ([]repo.ShipmentWithCustomer, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.withCustomer(ctx)

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("s.status = ?", f.Status)
	}

	//キーワード
	if f.Q != "" {
		like := "%" + f.Q + "%"
		q = q.Where("(s.tracking_number ILIKE ? OR u.full_name ILIKE ? OR s.receiver_name ILIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []repo.ShipmentWithCustomer
	err := q.Order("s.created_at DESC").
		Order("s.id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// versionをCASに使う。0件ならErrStaleVersionかErrNotFound。
func (r *ShipmentGormRepository) UpdateStatusIfVersion(ctx context.Context, shipmentID int64, expectedVersion int64, status model.ShipmentStatus, location *string) error {
	updates := map[string]interface{}{
		"status":  status,
		"version": gorm.Expr("version + 1"),
	}
	if location != nil {
		updates["current_location"] = *location
	}

	res := r.db.WithContext(ctx).Model(&model.Shipment{}).
		Where("id = ? AND version = ?", shipmentID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Shipment{}).Where("id = ?", shipmentID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrStaleVersion
}

func (r *ShipmentGormRepository) CountByStatus(ctx context.Context, userID *int64) (map[model.ShipmentStatus]int64, error) {
	var rows []struct {
		Status model.ShipmentStatus
		N      int64
	}
	q := r.db.WithContext(ctx).Model(&model.Shipment{}).Select("status, COUNT(*) AS n")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[model.ShipmentStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *ShipmentGormRepository) ListRecent(ctx context.Context, limit int) ([]repo.ShipmentWithCustomer, error) {
	var rows []repo.ShipmentWithCustomer
	err := r.withCustomer(ctx).
		Order("s.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ShipmentGormRepository) ListByStatuses(ctx context.Context, statuses []model.ShipmentStatus, limit int) ([]repo.ShipmentWithCustomer, error) {
	var rows []repo.ShipmentWithCustomer
	err := r.withCustomer(ctx).
		Where("s.status IN ?", statuses).
		Order("s.created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
