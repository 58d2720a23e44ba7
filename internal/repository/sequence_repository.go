package repository

import (
	"context"

	"ton-shipping/internal/domain/model"
)

// 年ごとの連番。Tx内で呼ぶとcommitまで同じ年の採番は待たされる。
type SequenceRepository interface {
	Next(ctx context.Context, scope model.SequenceScope, year int) (int64, error)
}
