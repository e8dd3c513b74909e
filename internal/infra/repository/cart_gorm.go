package repository

import (
	"context"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"

	"gorm.io/gorm"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// カート明細を新しい順で取得（ケーキと画像つき）
func (r *CartGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartEntry, error) {
	var entries []model.CartEntry
	err := r.db.WithContext(ctx).
		Preload("Cake").
		Preload("Cake.Images", orderedImages).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *CartGormRepository) FindByUserAndCake(ctx context.Context, userID int64, cakeID int64) (model.CartEntry, error) {
	var e model.CartEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND cake_id = ?", userID, cakeID).
		First(&e).Error
	if err != nil {
		return model.CartEntry{}, translateError(err)
	}
	return e, nil
}

// 所有チェック込みで1件取得
func (r *CartGormRepository) FindByIDForUser(ctx context.Context, cartID int64, userID int64) (model.CartEntry, error) {
	var e model.CartEntry
	err := r.db.WithContext(ctx).
		Preload("Cake").
		Where("id = ? AND user_id = ?", cartID, userID).
		First(&e).Error
	if err != nil {
		return model.CartEntry{}, translateError(err)
	}
	return e, nil
}

// 同じケーキなら数量を加算、無ければ作成
func (r *CartGormRepository) UpsertByUserAndCake(ctx context.Context, userID int64, cakeID int64, addQty int64) error {
	db := r.db.WithContext(ctx)

	var existing model.CartEntry
	err := db.Where("user_id = ? AND cake_id = ?", userID, cakeID).First(&existing).Error
	if err == nil {
		return db.Model(&model.CartEntry{}).
			Where("id = ?", existing.ID).
			Update("quantity", gorm.Expr("quantity + ?", addQty)).Error
	}
	if !isNotFound(err) {
		return err
	}

	entry := model.CartEntry{
		UserID:   userID,
		CakeID:   cakeID,
		Quantity: addQty,
	}
	if err := db.Create(&entry).Error; err != nil {
		if !isDuplicate(err) {
			return err
		}
		// 同時に作られていたら加算に切り替える
		return db.Model(&model.CartEntry{}).
			Where("user_id = ? AND cake_id = ?", userID, cakeID).
			Update("quantity", gorm.Expr("quantity + ?", addQty)).Error
	}
	return nil
}

func (r *CartGormRepository) UpdateQuantity(ctx context.Context, cartID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartEntry{}).
		Where("id = ?", cartID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) DeleteByIDForUser(ctx context.Context, cartID int64, userID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", cartID, userID).
		Delete(&model.CartEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 0件でもエラーにしない
func (r *CartGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartEntry{}).Error
}
