package model

import "time"

type ContactStatus string

const (
	ContactStatusUnread ContactStatus = "unread"
	ContactStatusRead   ContactStatus = "read"
)

// お問い合わせ。ユーザーとは紐付かない。
type ContactMessage struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string        `gorm:"type:varchar(100);not null" json:"name"`
	Email     string        `gorm:"type:varchar(255);not null" json:"email"`
	Phone     string        `gorm:"type:varchar(50)" json:"phone"`
	Subject   string        `gorm:"type:varchar(255);not null" json:"subject"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	Status    ContactStatus `gorm:"type:varchar(10);not null;default:'unread';index" json:"status"`
	CreatedAt time.Time     `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
