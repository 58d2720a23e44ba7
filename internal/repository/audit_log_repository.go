package repository

import (
	"context"
	"time"

	"ton-shipping/internal/domain/model"
)

// 管理画面の監査ログ検索。nilは無指定。
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// 管理操作の記録。対象の更新と同じTxで書く。
type AuditLogRepository interface {
	Record(ctx context.Context, entry model.AuditLog) error
	// 新しい順。totalはlimit/offset前の件数
	Search(ctx context.Context, f AuditLogFilter) (entries []model.AuditLog, total int64, err error)
}
