package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品（ケーキ）。価格は小数2桁。
type Cake struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int64           `gorm:"not null;default:0" json:"stock"`
	Category    string          `gorm:"type:varchar(100)" json:"category"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Images []CakeImage `gorm:"foreignKey:CakeID;constraint:OnDelete:CASCADE" json:"-"`
}

// 画像URLだけを取り出す（表示は集合扱い）。
func (c Cake) ImageURLs() []string {
	urls := make([]string, 0, len(c.Images))
	for _, img := range c.Images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}

type CakeImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CakeID    int64     `gorm:"not null;index" json:"cake_id"`
	ImageURL  string    `gorm:"type:varchar(500);not null" json:"image_url"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
