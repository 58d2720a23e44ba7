package repository

import (
	"context"

	"ton-shipping/internal/domain/model"

	"gorm.io/gorm"
)

// 1文で採番する。行ロックはTxのcommit/rollbackまで保持される。
const nextSequenceSQL = `INSERT INTO sequence_counters (scope, year, last_value) VALUES (?, ?, 1)
ON CONFLICT (scope, year) DO UPDATE SET last_value = sequence_counters.last_value + 1
RETURNING last_value`

type SequenceGormRepository struct {
	db *gorm.DB
}

func NewSequenceGormRepository(db *gorm.DB) *SequenceGormRepository {
	return &SequenceGormRepository{db: db}
}

func (r *SequenceGormRepository) Next(ctx context.Context, scope model.SequenceScope, year int) (int64, error) {
	var v int64
	row := r.db.WithContext(ctx).Raw(nextSequenceSQL, string(scope), year).Row()
	if err := row.Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}
