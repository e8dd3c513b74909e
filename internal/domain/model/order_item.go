package model

import "github.com/shopspring/decimal"

// 注文明細。price_at_purchase は購入時点の価格で、作成後は変更しない。
type OrderItem struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         int64           `gorm:"not null;index" json:"order_id"`
	CakeID          int64           `gorm:"not null;index" json:"cake_id"`
	Quantity        int64           `gorm:"not null" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_purchase"`

	Cake *Cake `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.PriceAtPurchase.Mul(decimal.NewFromInt(it.Quantity))
}
