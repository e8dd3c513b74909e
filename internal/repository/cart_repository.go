package repository

import (
	"context"

	"cakeshop/internal/domain/model"
)

// carts テーブル（ユーザー×ケーキで1行）。
type CartRepository interface {
	// Cake と Cake.Images をプリロードして新しい順に返す
	ListByUserID(ctx context.Context, userID int64) ([]model.CartEntry, error)
	FindByUserAndCake(ctx context.Context, userID int64, cakeID int64) (model.CartEntry, error)
	// 他人の行は ErrNotFound
	FindByIDForUser(ctx context.Context, cartID int64, userID int64) (model.CartEntry, error)

	// 同じケーキは数量を加算
	UpsertByUserAndCake(ctx context.Context, userID int64, cakeID int64, addQty int64) error
	UpdateQuantity(ctx context.Context, cartID int64, qty int64) error
	DeleteByIDForUser(ctx context.Context, cartID int64, userID int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
}
