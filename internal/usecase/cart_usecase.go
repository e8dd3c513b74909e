package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	repo "cakeshop/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /api/cart の業務ロジック。
// 追加・数量変更のたびに現在の在庫と突き合わせる。
type CartUsecase struct {
	tx    repo.TransactionManager
	carts repo.CartRepository
}

func NewCartUsecase(tx repo.TransactionManager, carts repo.CartRepository) *CartUsecase {
	return &CartUsecase{tx: tx, carts: carts}
}

type CartItemResponse struct {
	CartID      int64    `json:"cart_id"`
	Quantity    int64    `json:"quantity"`
	CakeID      int64    `json:"cake_id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Stock       int64    `json:"stock"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Subtotal    string   `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total string             `json:"total"`
}

type AddCartInput struct {
	CakeID   int64
	Quantity int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, userID)
}

// AddToCart は同じケーキなら数量を加算する。
// 合計数量が在庫を超える場合はカートを変更しない。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.CakeID <= 0 {
		return CartResponse{}, validationError("Invalid cake id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, validationError("Quantity must be at least 1")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cake, err := r.Cakes().FindByID(ctx, in.CakeID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Cake not found")
		}
		if err != nil {
			return dbError(err)
		}
		if cake.Stock <= 0 {
			return newCodedError(http.StatusBadRequest, CodeOutOfStock, "This cake is currently out of stock", nil)
		}

		var inCart int64
		existing, err := r.Carts().FindByUserAndCake(ctx, userID, in.CakeID)
		switch {
		case err == nil:
			inCart = existing.Quantity
		case errors.Is(err, repo.ErrNotFound):
		default:
			return dbError(err)
		}

		requested := inCart + in.Quantity
		if requested > cake.Stock {
			return newCodedError(http.StatusBadRequest, CodeInsufficientStock,
				fmt.Sprintf("Not enough stock available. Only %d left (you already have %d in cart)", cake.Stock, inCart),
				StockDetails{CakeID: cake.ID, Name: cake.Name, Available: cake.Stock, InCart: inCart, Requested: requested},
			)
		}

		if err := r.Carts().UpsertByUserAndCake(ctx, userID, in.CakeID, in.Quantity); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, userID)
}

// 数量変更。追加時と同じく在庫を超える数量は拒否する。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartID <= 0 {
		return CartResponse{}, validationError("Invalid cart id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, validationError("Quantity must be at least 1")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		entry, err := r.Carts().FindByIDForUser(ctx, cartID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Cart item not found")
		}
		if err != nil {
			return dbError(err)
		}

		if entry.Cake != nil && in.Quantity > entry.Cake.Stock {
			return newCodedError(http.StatusBadRequest, CodeInsufficientStock,
				fmt.Sprintf("Not enough stock available. Only %d left", entry.Cake.Stock),
				StockDetails{CakeID: entry.CakeID, Name: entry.Cake.Name, Available: entry.Cake.Stock, InCart: entry.Quantity, Requested: in.Quantity},
			)
		}

		if err := r.Carts().UpdateQuantity(ctx, cartID, in.Quantity); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("Cart item not found")
			}
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, userID)
}

// 明細削除（他人の明細は404）
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, cartID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartID <= 0 {
		return validationError("Invalid cart id")
	}

	err := u.carts.DeleteByIDForUser(ctx, cartID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("Cart item not found")
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

// 何度呼んでも成功する
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.carts.DeleteByUserID(ctx, userID); err != nil {
		return dbError(err)
	}
	return nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	entries, err := u.carts.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError(err)
	}

	items := make([]CartItemResponse, 0, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		// ケーキ削除はカスケードで消えるが、念のため飛ばす
		if e.Cake == nil {
			continue
		}
		subtotal := lineSubtotal(e.Cake.Price, e.Quantity)
		total = total.Add(subtotal)

		items = append(items, CartItemResponse{
			CartID:      e.ID,
			Quantity:    e.Quantity,
			CakeID:      e.CakeID,
			Name:        e.Cake.Name,
			Price:       formatMoney(e.Cake.Price),
			Description: e.Cake.Description,
			Stock:       e.Cake.Stock,
			Category:    e.Cake.Category,
			Images:      e.Cake.ImageURLs(),
			Subtotal:    formatMoney(subtotal),
		})
	}

	return CartResponse{Items: items, Total: formatMoney(total)}, nil
}
