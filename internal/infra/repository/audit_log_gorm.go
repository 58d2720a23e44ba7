package repository

import (
	"context"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Record(ctx context.Context, entry model.AuditLog) error {
	return translateError(r.db.WithContext(ctx).Create(&entry).Error)
}

func (r *AuditLogGormRepository) Search(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})

	q = whereIf(q, "actor_user_id = ?", f.ActorUserID)
	q = whereIf(q, "action = ?", f.Action)
	q = whereIf(q, "resource_type = ?", f.ResourceType)
	q = whereIf(q, "resource_id = ?", f.ResourceID)
	q = whereIf(q, "created_at >= ?", f.CreatedFrom)
	q = whereIf(q, "created_at <= ?", f.CreatedTo)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.AuditLog
	err := q.Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// vがnilなら条件を足さない
func whereIf[T any](q *gorm.DB, cond string, v *T) *gorm.DB {
	if v == nil {
		return q
	}
	return q.Where(cond, *v)
}
