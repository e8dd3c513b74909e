package repository

import (
	"context"
	"fmt"
	"time"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	switch log.ResourceType {
	case model.AuditResourceCake, model.AuditResourceOrder:
	default:
		return fmt.Errorf("audit log: unknown resource type %q", log.ResourceType)
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

// users と LEFT JOIN して操作者名を載せる
func (r *auditLogGormRepository) entries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("audit_logs AS a").
		Select("a.*, u.username AS actor_username, u.email AS actor_email").
		Joins("LEFT JOIN users AS u ON u.id = a.actor_user_id")
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]repo.AuditLogEntry, error) {
	q := r.entries(ctx)

	if filter.ActorUserID != nil {
		q = q.Where("a.actor_user_id = ?", *filter.ActorUserID)
	}
	if len(filter.Actions) > 0 {
		q = q.Where("a.action IN ?", filter.Actions)
	}
	if filter.ResourceType != nil {
		q = q.Where("a.resource_type = ?", *filter.ResourceType)
	}
	if filter.ResourceID != nil {
		q = q.Where("a.resource_id = ?", *filter.ResourceID)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("a.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("a.created_at <= ?", *filter.CreatedTo)
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	rows := []repo.AuditLogEntry{}
	if err := q.Order("a.id DESC").Limit(limit).Offset(offset).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *auditLogGormRepository) ListForResource(ctx context.Context, resourceType model.AuditResourceType, resourceID int64) ([]repo.AuditLogEntry, error) {
	rows := []repo.AuditLogEntry{}
	err := r.entries(ctx).
		Where("a.resource_type = ? AND a.resource_id = ?", resourceType, resourceID).
		Order("a.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
