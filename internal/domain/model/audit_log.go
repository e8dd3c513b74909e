package model

import "time"

type AuditAction string

const (
	AuditActionCreateCake        AuditAction = "CREATE_CAKE"
	AuditActionUpdateCake        AuditAction = "UPDATE_CAKE"
	AuditActionDeleteCake        AuditAction = "DELETE_CAKE"
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

type AuditResourceType string

const (
	AuditResourceCake  AuditResourceType = "cake"
	AuditResourceOrder AuditResourceType = "order"
)

// 管理者操作ログ。
// 誰が・どの対象に・どう変えたかを before/after のJSONで残す。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`
	BeforeJSON   string            `gorm:"type:text" json:"before_json"`
	AfterJSON    string            `gorm:"type:text" json:"after_json"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"created_at"`
}
