package repository

import (
	"context"
	"time"

	"cakeshop/internal/domain/model"
)

// 監査ログの絞り込み条件。
type AuditLogFilter struct {
	ActorUserID *int64
	// 空なら全アクション
	Actions      []model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// 操作した管理者の名前つきの1行。退会済みなら名前は空。
type AuditLogEntry struct {
	model.AuditLog
	ActorUsername string
	ActorEmail    string
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]AuditLogEntry, error)
	// ケーキ・注文1件ぶんの履歴を古い順で
	ListForResource(ctx context.Context, resourceType model.AuditResourceType, resourceID int64) ([]AuditLogEntry, error)
}
