package repository

import (
	"context"

	"cakeshop/internal/domain/model"
)

// ケーキの保存・取得。画像は Images に詰めて返す。
type CakeRepository interface {
	List(ctx context.Context) ([]model.Cake, error)
	FindByID(ctx context.Context, id int64) (model.Cake, error)

	Create(ctx context.Context, cake *model.Cake) error
	Update(ctx context.Context, cake model.Cake) error
	// nil なら何もしない、空スライスなら全削除
	ReplaceImages(ctx context.Context, cakeID int64, urls []string) error
	Delete(ctx context.Context, id int64) error
}
