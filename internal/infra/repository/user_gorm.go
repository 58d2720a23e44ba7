package repository

import (
	"context"
	"errors"

	"ton-shipping/internal/domain/model"
	repo "ton-shipping/internal/repository"

	"gorm.io/gorm"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

// 顧客だけ（管理者は一覧・承認の対象外）
func (r *UserGormRepository) customers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("role <> ?", model.RoleAdmin)
}

func (r *UserGormRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User
	err := translateError(r.db.WithContext(ctx).Where(query, arg).Take(&u).Error)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, repo.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// 0件更新は対象なし
func userAffected(res *gorm.DB) error {
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrUserNotFound
	}
	return nil
}

// email重複はunique index(LOWER(email))でErrDuplicate
func (r *UserGormRepository) Create(ctx context.Context, user *model.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *UserGormRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	return r.findOne(ctx, "id = ?", userID)
}

func (r *UserGormRepository) Update(ctx context.Context, user *model.User) error {
	return translateError(r.db.WithContext(ctx).Save(user).Error)
}

// 発行済みのaccess tokenを全部無効にする
func (r *UserGormRepository) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return userAffected(r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")))
}

// 未承認が先、その中は新しい順
func (r *UserGormRepository) ListCustomers(ctx context.Context, f repo.UserListFilter) ([]model.User, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.customers(ctx)
	if f.Verified != nil {
		q = q.Where("is_verified = ?", *f.Verified)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := q.Order("is_verified ASC, created_at DESC, id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserGormRepository) SetVerified(ctx context.Context, userID int64, verified bool) error {
	return userAffected(r.customers(ctx).Where("id = ?", userID).Update("is_verified", verified))
}

func (r *UserGormRepository) CountCustomers(ctx context.Context) (total int64, pending int64, err error) {
	var row struct {
		Total   int64
		Pending int64
	}
	err = r.customers(ctx).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE NOT is_verified) AS pending").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Pending, nil
}
