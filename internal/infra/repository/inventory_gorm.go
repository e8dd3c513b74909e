package repository

import (
	"context"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) SetStock(ctx context.Context, cakeID int64, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cake{}).
		Where("id = ?", cakeID).
		Update("stock", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 条件付きUPDATEで減らす。同時注文でも stock がマイナスにならない
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, cakeID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Cake{}).
		Where("id = ? AND stock >= ?", cakeID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, cakeID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cake{}).
		Where("id = ?", cakeID).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
