package repository

import (
	"context"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"

	"gorm.io/gorm"
)

type CakeGormRepository struct {
	db *gorm.DB
}

func NewCakeGormRepository(db *gorm.DB) *CakeGormRepository {
	return &CakeGormRepository{db: db}
}

// 画像はメイン画像を先頭に
func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("is_primary DESC").Order("id ASC")
}

// 新しい順
func (r *CakeGormRepository) List(ctx context.Context) ([]model.Cake, error) {
	var cakes []model.Cake
	err := r.db.WithContext(ctx).
		Preload("Images", orderedImages).
		Order("created_at DESC").
		Order("id DESC").
		Find(&cakes).Error
	if err != nil {
		return nil, err
	}
	return cakes, nil
}

func (r *CakeGormRepository) FindByID(ctx context.Context, id int64) (model.Cake, error) {
	var c model.Cake
	err := r.db.WithContext(ctx).
		Preload("Images", orderedImages).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return model.Cake{}, translateError(err)
	}
	return c, nil
}

// Images が入っていれば一緒に作成される
func (r *CakeGormRepository) Create(ctx context.Context, cake *model.Cake) error {
	return translateError(r.db.WithContext(ctx).Create(cake).Error)
}

func (r *CakeGormRepository) Update(ctx context.Context, cake model.Cake) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cake{}).
		Where("id = ?", cake.ID).
		Updates(map[string]interface{}{
			"name":        cake.Name,
			"description": cake.Description,
			"price":       cake.Price,
			"stock":       cake.Stock,
			"category":    cake.Category,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CakeGormRepository) ReplaceImages(ctx context.Context, cakeID int64, urls []string) error {
	if urls == nil {
		return nil
	}

	db := r.db.WithContext(ctx)
	if err := db.Where("cake_id = ?", cakeID).Delete(&model.CakeImage{}).Error; err != nil {
		return err
	}
	if len(urls) == 0 {
		return nil
	}

	images := make([]model.CakeImage, 0, len(urls))
	for i, u := range urls {
		images = append(images, model.CakeImage{
			CakeID:    cakeID,
			ImageURL:  u,
			IsPrimary: i == 0,
		})
	}
	return db.Create(&images).Error
}

// cake_images / carts / order_items は外部キーのカスケードで消える
func (r *CakeGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Cake{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
