package model

import "time"

// カートの1行（ユーザー×ケーキで1行）。
type CartEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_carts_user_cake" json:"user_id"`
	CakeID    int64     `gorm:"not null;uniqueIndex:idx_carts_user_cake;index" json:"cake_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Cake *Cake `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (CartEntry) TableName() string { return "carts" }
