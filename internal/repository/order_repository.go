package repository

import (
	"context"
	"time"

	"cakeshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一覧用の注文サマリ（明細数つき）。
type OrderSummary struct {
	ID            int64
	UserID        int64
	TotalAmount   decimal.Decimal
	Status        model.OrderStatus
	PaymentMethod string
	Address       string
	CreatedAt     time.Time
	ItemCount     int64

	// 管理者一覧のときだけ埋まる
	CustomerName  string
	CustomerEmail string
}

type AdminOrderListFilter struct {
	Status  string
	OrderID *int64
	UserID  *int64
	Limit   int
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]OrderSummary, error)
	Create(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// 現在の状態が from のどれかのときだけ to に変える
	TransitionStatus(ctx context.Context, orderID int64, from []model.OrderStatus, to model.OrderStatus) (bool, error)

	// 管理者用（顧客名・メールつき）
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]OrderSummary, error)
}
