package repository

import (
	"context"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"

	"gorm.io/gorm"
)

// 明細数はサブクエリで数える（GROUP BY を使わない）
const orderSummaryColumns = "orders.id, orders.user_id, orders.total_amount, orders.status, " +
	"orders.payment_method, orders.address, orders.created_at, " +
	"(SELECT COUNT(*) FROM order_items WHERE order_items.order_id = orders.id) AS item_count"

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if err != nil {
		return model.Order{}, translateError(err)
	}
	return o, nil
}

// 新しい順
func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64) ([]repo.OrderSummary, error) {
	var rows []repo.OrderSummary
	err := r.db.WithContext(ctx).
		Table("orders").
		Select(orderSummaryColumns).
		Where("orders.user_id = ?", userID).
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit("User", "Items").Create(order).Error
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 状態を条件にしたUPDATE。二重キャンセルで在庫が二回戻らないようにする
func (r *OrderGormRepository) TransitionStatus(ctx context.Context, orderID int64, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status IN ?", orderID, from).
		Update("status", to)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]repo.OrderSummary, error) {
	q := r.db.WithContext(ctx).
		Table("orders").
		Select(orderSummaryColumns + ", users.username AS customer_name, users.email AS customer_email").
		Joins("JOIN users ON users.id = orders.user_id")

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.OrderID != nil {
		q = q.Where("orders.id = ?", *f.OrderID)
	}
	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("orders.user_id = ?", *f.UserID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []repo.OrderSummary
	if err := q.Order("orders.created_at DESC").Order("orders.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
