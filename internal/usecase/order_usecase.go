package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"

	"github.com/shopspring/decimal"
)

const minAddressLength = 5

type OrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	items  repo.OrderItemRepository
}

func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, items repo.OrderItemRepository) *OrderUsecase {
	return &OrderUsecase{tx: tx, orders: orders, items: items}
}

type PlaceOrderInput struct {
	Address string
}

type PlaceOrderOutput struct {
	OrderID       int64             `json:"orderId"`
	TotalAmount   string            `json:"totalAmount"`
	Status        model.OrderStatus `json:"status"`
	PaymentMethod string            `json:"paymentMethod"`
	Address       string            `json:"address"`
	ItemCount     int               `json:"itemCount"`
}

// 一覧用
type OrderSummaryOutput struct {
	ID            int64             `json:"id"`
	TotalAmount   string            `json:"total_amount"`
	Status        model.OrderStatus `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	Address       string            `json:"address"`
	CreatedAt     time.Time         `json:"created_at"`
	ItemCount     int64             `json:"item_count"`
}

type OrderItemOutput struct {
	ID              int64    `json:"id"`
	CakeID          int64    `json:"cake_id"`
	Quantity        int64    `json:"quantity"`
	PriceAtPurchase string   `json:"price_at_purchase"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Images          []string `json:"images"`
	Subtotal        string   `json:"subtotal"`
}

type OrderDetailOutput struct {
	Order OrderSummaryOutput `json:"order"`
	Items []OrderItemOutput  `json:"items"`
}

type UnavailableItem struct {
	Name      string `json:"name"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

type ReorderOutput struct {
	AddedItems       int               `json:"addedItems"`
	UnavailableItems []UnavailableItem `json:"unavailableItems"`
	Success          bool              `json:"success"`
}

// PlaceOrder はカートを注文に変換する。
// 注文作成・在庫減算・カート削除は1トランザクションで、どれかが失敗したら全部戻す。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (PlaceOrderOutput, error) {
	if userID <= 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	address := strings.TrimSpace(in.Address)
	if utf8.RuneCountInString(address) < minAddressLength {
		return PlaceOrderOutput{}, newCodedError(http.StatusBadRequest, CodeInvalidAddress,
			"Delivery address is required and must be at least 5 characters", nil)
	}

	var out PlaceOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//ケーキの現在の価格・在庫つきで取得
		entries, err := r.Carts().ListByUserID(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		if len(entries) == 0 {
			return newCodedError(http.StatusBadRequest, CodeEmptyCart, "Cart is empty", nil)
		}

		//1行でも足りなければ注文自体を作らない
		total := decimal.Zero
		orderItems := make([]model.OrderItem, 0, len(entries))
		for _, e := range entries {
			if e.Cake == nil {
				return notFound("Cake not found")
			}
			if e.Cake.Stock < e.Quantity {
				return insufficientForOrder(*e.Cake, e.Quantity)
			}
			total = total.Add(lineSubtotal(e.Cake.Price, e.Quantity))
			orderItems = append(orderItems, model.OrderItem{
				CakeID:          e.CakeID,
				Quantity:        e.Quantity,
				PriceAtPurchase: e.Cake.Price,
			})
		}
		total = total.Round(2)

		order := model.Order{
			UserID:        userID,
			TotalAmount:   total,
			Status:        model.OrderStatusPending,
			PaymentMethod: model.PaymentMethodCOD,
			Address:       address,
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return dbError(err)
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return dbError(err)
		}

		//在庫を確定時に再チェックして減らす
		for _, e := range entries {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, e.CakeID, e.Quantity)
			if err != nil {
				return dbError(err)
			}
			if !ok {
				// 読んだ後に他の注文が先に減らした。件数は読み直した在庫で返す
				latest, err := r.Cakes().FindByID(ctx, e.CakeID)
				switch {
				case errors.Is(err, repo.ErrNotFound):
					latest = *e.Cake
					latest.Stock = 0
				case err != nil:
					return dbError(err)
				}
				return insufficientForOrder(latest, e.Quantity)
			}
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				CakeID:      e.CakeID,
				ActorUserID: userID,
				Delta:       -e.Quantity,
				Reason:      fmt.Sprintf("order #%d", order.ID),
			}); err != nil {
				return dbError(err)
			}
		}

		if err := r.Carts().DeleteByUserID(ctx, userID); err != nil {
			return dbError(err)
		}

		out = PlaceOrderOutput{
			OrderID:       order.ID,
			TotalAmount:   formatMoney(total),
			Status:        order.Status,
			PaymentMethod: order.PaymentMethod,
			Address:       order.Address,
			ItemCount:     len(entries),
		}
		return nil
	})
	if err != nil {
		return PlaceOrderOutput{}, err
	}
	return out, nil
}

func insufficientForOrder(cake model.Cake, requested int64) error {
	return newCodedError(http.StatusBadRequest, CodeInsufficientStock,
		fmt.Sprintf("Not enough stock for %s. Only %d available.", cake.Name, cake.Stock),
		StockDetails{CakeID: cake.ID, Name: cake.Name, Available: cake.Stock, Requested: requested},
	)
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderSummaryOutput, error) {
	if userID <= 0 {
		return []OrderSummaryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rows, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return []OrderSummaryOutput{}, dbError(err)
	}

	outs := make([]OrderSummaryOutput, 0, len(rows))
	for _, s := range rows {
		outs = append(outs, toOrderSummaryOutput(s))
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderDetailOutput, error) {
	if userID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderDetailOutput{}, validationError("Invalid order id")
	}

	o, err := u.findOwnedOrder(ctx, u.orders, userID, orderID)
	if err != nil {
		return OrderDetailOutput{}, err
	}

	items, err := u.items.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderDetailOutput{}, dbError(err)
	}

	return OrderDetailOutput{
		Order: orderToSummary(o, int64(len(items))),
		Items: toOrderItemOutputs(items),
	}, nil
}

// CancelOrder は pending / confirmed の注文だけ取り消して在庫を戻す。
func (u *OrderUsecase) CancelOrder(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return validationError("Invalid order id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.findOwnedOrder(ctx, r.Orders(), userID, orderID)
		if err != nil {
			return err
		}
		if !o.Status.Cancellable() {
			return cannotCancel(o.Status)
		}

		return cancelAndRestock(ctx, r, userID, o, model.CancellableStatuses)
	})
}

func cannotCancel(status model.OrderStatus) error {
	return newCodedError(http.StatusBadRequest, CodeInvalidTransition,
		fmt.Sprintf("Cannot cancel order with status: %s", status), nil)
}

// cancelAndRestock は状態を from -> cancelled に切り替えられたときだけ在庫を戻す。
// 顧客キャンセルと管理者のステータス変更で共通。
func cancelAndRestock(ctx context.Context, r repo.TxRepos, actorID int64, o model.Order, from []model.OrderStatus) error {
	ok, err := r.Orders().TransitionStatus(ctx, o.ID, from, model.OrderStatusCancelled)
	if err != nil {
		return dbError(err)
	}
	if !ok {
		// 同時に別のリクエストが状態を変えた
		latest, err := r.Orders().FindByID(ctx, o.ID)
		if err != nil {
			return dbError(err)
		}
		return cannotCancel(latest.Status)
	}

	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return dbError(err)
	}
	for _, it := range items {
		if err := r.Inventory().IncreaseStock(ctx, it.CakeID, it.Quantity); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				// ケーキ削除時は明細もカスケードで消えるので通常起きない
				continue
			}
			return dbError(err)
		}
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			CakeID:      it.CakeID,
			ActorUserID: actorID,
			Delta:       it.Quantity,
			Reason:      fmt.Sprintf("cancel order #%d", o.ID),
		}); err != nil {
			return dbError(err)
		}
	}
	return nil
}

// Reorder は過去の注文の明細をカートに戻す。
// 在庫が足りない明細だけ飛ばし、残りは追加する（全体は失敗させない）。
func (u *OrderUsecase) Reorder(ctx context.Context, userID int64, orderID int64) (ReorderOutput, error) {
	if userID <= 0 {
		return ReorderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return ReorderOutput{}, validationError("Invalid order id")
	}

	out := ReorderOutput{UnavailableItems: []UnavailableItem{}}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := u.findOwnedOrder(ctx, r.Orders(), userID, orderID); err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError(err)
		}
		if len(items) == 0 {
			return newCodedError(http.StatusBadRequest, CodeEmptyOrder, "No items found in this order", nil)
		}

		for _, it := range items {
			if it.Cake == nil {
				continue
			}

			// 注文時の数量が今の在庫に収まるかだけを見る（カートの分は足し込む）
			if it.Cake.Stock < it.Quantity {
				out.UnavailableItems = append(out.UnavailableItems, UnavailableItem{
					Name:      it.Cake.Name,
					Requested: it.Quantity,
					Available: it.Cake.Stock,
				})
				continue
			}

			if err := r.Carts().UpsertByUserAndCake(ctx, userID, it.CakeID, it.Quantity); err != nil {
				return dbError(err)
			}
			out.AddedItems++
		}
		return nil
	})
	if err != nil {
		return ReorderOutput{}, err
	}

	out.Success = out.AddedItems > 0
	return out, nil
}

// 他人の注文は「存在しない扱い」にする
func (u *OrderUsecase) findOwnedOrder(ctx context.Context, orders repo.OrderRepository, userID int64, orderID int64) (model.Order, error) {
	o, err := orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, notFound("Order not found")
	}
	if err != nil {
		return model.Order{}, dbError(err)
	}
	if o.UserID != userID {
		return model.Order{}, notFound("Order not found")
	}
	return o, nil
}

func toOrderSummaryOutput(s repo.OrderSummary) OrderSummaryOutput {
	return OrderSummaryOutput{
		ID:            s.ID,
		TotalAmount:   formatMoney(s.TotalAmount),
		Status:        s.Status,
		PaymentMethod: s.PaymentMethod,
		Address:       s.Address,
		CreatedAt:     s.CreatedAt,
		ItemCount:     s.ItemCount,
	}
}

func orderToSummary(o model.Order, itemCount int64) OrderSummaryOutput {
	return OrderSummaryOutput{
		ID:            o.ID,
		TotalAmount:   formatMoney(o.TotalAmount),
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Address:       o.Address,
		CreatedAt:     o.CreatedAt,
		ItemCount:     itemCount,
	}
}

func toOrderItemOutputs(items []model.OrderItem) []OrderItemOutput {
	outs := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		o := OrderItemOutput{
			ID:              it.ID,
			CakeID:          it.CakeID,
			Quantity:        it.Quantity,
			PriceAtPurchase: formatMoney(it.PriceAtPurchase),
			Images:          []string{},
			Subtotal:        formatMoney(it.Subtotal()),
		}
		if it.Cake != nil {
			o.Name = it.Cake.Name
			o.Description = it.Cake.Description
			o.Category = it.Cake.Category
			o.Images = it.Cake.ImageURLs()
		}
		outs = append(outs, o)
	}
	return outs
}
