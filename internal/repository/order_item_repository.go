package repository

import (
	"context"

	"cakeshop/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	// Cake と Cake.Images をプリロード
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
