package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	items     repo.OrderItemRepository
	auditLogs repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, items repo.OrderItemRepository, auditLogs repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, orders: orders, items: items, auditLogs: auditLogs}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

type AdminOrderSummaryOutput struct {
	OrderSummaryOutput
	UserID        int64  `json:"user_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

type OrderCustomerOutput struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// 管理者によるステータス変更の履歴1件
type OrderStatusChangeOutput struct {
	From      model.OrderStatus `json:"from"`
	To        model.OrderStatus `json:"to"`
	ChangedBy string            `json:"changed_by"`
	ChangedAt time.Time         `json:"changed_at"`
}

type AdminOrderDetailOutput struct {
	Order    AdminOrderSummaryOutput   `json:"order"`
	Customer OrderCustomerOutput       `json:"customer"`
	Items    []OrderItemOutput         `json:"items"`
	History  []OrderStatusChangeOutput `json:"history"`
}

type AdminUpdateOrderStatusOutput struct {
	OrderID int64             `json:"orderId"`
	Status  model.OrderStatus `json:"status"`
}

// 注文一覧（新しい順、status で絞り込み可）
func (u *AdminOrderUsecase) List(ctx context.Context, status string) ([]AdminOrderSummaryOutput, error) {
	status = strings.TrimSpace(status)
	if status != "" && !isKnownStatus(model.OrderStatus(status)) {
		return []AdminOrderSummaryOutput{}, newCodedError(http.StatusBadRequest, CodeInvalidStatus, "Invalid status", nil)
	}

	rows, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{Status: status})
	if err != nil {
		return []AdminOrderSummaryOutput{}, dbError(err)
	}
	return toAdminOrderSummaries(rows), nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (AdminOrderDetailOutput, error) {
	if orderID <= 0 {
		return AdminOrderDetailOutput{}, validationError("Invalid order id")
	}

	rows, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{OrderID: &orderID, Limit: 1})
	if err != nil {
		return AdminOrderDetailOutput{}, dbError(err)
	}
	if len(rows) == 0 {
		return AdminOrderDetailOutput{}, notFound("Order not found")
	}

	items, err := u.items.ListByOrderID(ctx, orderID)
	if err != nil {
		return AdminOrderDetailOutput{}, dbError(err)
	}

	logs, err := u.auditLogs.ListForResource(ctx, model.AuditResourceOrder, orderID)
	if err != nil {
		return AdminOrderDetailOutput{}, dbError(err)
	}

	s := rows[0]
	return AdminOrderDetailOutput{
		Order: toAdminOrderSummary(s),
		Customer: OrderCustomerOutput{
			ID:       s.UserID,
			Username: s.CustomerName,
			Email:    s.CustomerEmail,
		},
		Items:   toOrderItemOutputs(items),
		History: toStatusHistory(logs),
	}, nil
}

type statusSnapshot struct {
	Status model.OrderStatus `json:"status"`
}

// UPDATE_ORDER_STATUS の before/after から変更履歴を組み立てる。読めない行は飛ばす。
func toStatusHistory(logs []repo.AuditLogEntry) []OrderStatusChangeOutput {
	out := make([]OrderStatusChangeOutput, 0, len(logs))
	for _, l := range logs {
		if l.Action != model.AuditActionUpdateOrderStatus {
			continue
		}
		var before, after statusSnapshot
		if json.Unmarshal([]byte(l.BeforeJSON), &before) != nil || json.Unmarshal([]byte(l.AfterJSON), &after) != nil {
			continue
		}
		out = append(out, OrderStatusChangeOutput{
			From:      before.Status,
			To:        after.Status,
			ChangedBy: l.ActorUsername,
			ChangedAt: l.CreatedAt,
		})
	}
	return out
}

// UpdateStatus は管理者によるステータス変更。
// cancelled への変更は在庫を戻し、cancelled からは戻せない。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (AdminUpdateOrderStatusOutput, error) {
	if actorAdminUserID <= 0 {
		return AdminUpdateOrderStatusOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return AdminUpdateOrderStatusOutput{}, validationError("Invalid order id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.AdminSettable() {
		return AdminUpdateOrderStatusOutput{}, newCodedError(http.StatusBadRequest, CodeInvalidStatus, "Invalid status", nil)
	}

	out := AdminUpdateOrderStatusOutput{OrderID: orderID, Status: newStatus}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Order not found")
		}
		if err != nil {
			return dbError(err)
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		// 終端ガード
		if o.Status == model.OrderStatusCancelled {
			return newCodedError(http.StatusBadRequest, CodeInvalidTransition, "Cannot change status of a cancelled order", nil)
		}

		if newStatus == model.OrderStatusCancelled {
			if err := cancelAndRestock(ctx, r, actorAdminUserID, o, []model.OrderStatus{o.Status}); err != nil {
				return err
			}
		} else {
			ok, err := r.Orders().TransitionStatus(ctx, orderID, []model.OrderStatus{o.Status}, newStatus)
			if err != nil {
				return dbError(err)
			}
			if !ok {
				return newCodedError(http.StatusConflict, CodeConflict, "Order status was changed by another request", nil)
			}
		}

		before, _ := json.Marshal(statusSnapshot{Status: o.Status})
		after, _ := json.Marshal(statusSnapshot{Status: newStatus})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return AdminUpdateOrderStatusOutput{}, err
	}
	return out, nil
}

func isKnownStatus(s model.OrderStatus) bool {
	switch s {
	case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusCompleted, model.OrderStatusCancelled:
		return true
	}
	return false
}

func toAdminOrderSummary(s repo.OrderSummary) AdminOrderSummaryOutput {
	return AdminOrderSummaryOutput{
		OrderSummaryOutput: toOrderSummaryOutput(s),
		UserID:             s.UserID,
		CustomerName:       s.CustomerName,
		CustomerEmail:      s.CustomerEmail,
	}
}

func toAdminOrderSummaries(rows []repo.OrderSummary) []AdminOrderSummaryOutput {
	outs := make([]AdminOrderSummaryOutput, 0, len(rows))
	for _, s := range rows {
		outs = append(outs, toAdminOrderSummary(s))
	}
	return outs
}
