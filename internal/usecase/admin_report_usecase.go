package usecase

import (
	"context"
	"errors"
	"time"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"
)

const recentOrdersLimit = 5

// 管理画面の集計。読み取りのみ。
type AdminReportUsecase struct {
	reports   repo.ReportRepository
	orders    repo.OrderRepository
	auditLogs repo.AuditLogRepository
}

func NewAdminReportUsecase(reports repo.ReportRepository, orders repo.OrderRepository, auditLogs repo.AuditLogRepository) *AdminReportUsecase {
	return &AdminReportUsecase{reports: reports, orders: orders, auditLogs: auditLogs}
}

type DashboardStatsOutput struct {
	TotalOrders     int64  `json:"totalOrders"`
	TotalCustomers  int64  `json:"totalCustomers"`
	TotalProducts   int64  `json:"totalProducts"`
	PendingOrders   int64  `json:"pendingOrders"`
	CompletedOrders int64  `json:"completedOrders"`
	TotalRevenue    string `json:"totalRevenue"`
}

type RecentOrderOutput struct {
	ID           int64             `json:"id"`
	TotalAmount  string            `json:"total_amount"`
	Status       model.OrderStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	CustomerName string            `json:"customerName"`
	ItemCount    int64             `json:"itemCount"`
}

type DashboardOutput struct {
	Stats        DashboardStatsOutput `json:"stats"`
	RecentOrders []RecentOrderOutput  `json:"recentOrders"`
}

type CustomerOutput struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	CreatedAt     time.Time  `json:"created_at"`
	TotalOrders   int64      `json:"total_orders"`
	TotalSpent    string     `json:"total_spent"`
	LastOrderDate *time.Time `json:"last_order_date"`
}

type CustomerDetailOutput struct {
	Customer CustomerOutput            `json:"customer"`
	Orders   []AdminOrderSummaryOutput `json:"orders"`
}

func (u *AdminReportUsecase) Dashboard(ctx context.Context) (DashboardOutput, error) {
	s, err := u.reports.DashboardStats(ctx)
	if err != nil {
		return DashboardOutput{}, dbError(err)
	}

	rows, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{Limit: recentOrdersLimit})
	if err != nil {
		return DashboardOutput{}, dbError(err)
	}

	recent := make([]RecentOrderOutput, 0, len(rows))
	for _, o := range rows {
		recent = append(recent, RecentOrderOutput{
			ID:           o.ID,
			TotalAmount:  formatMoney(o.TotalAmount),
			Status:       o.Status,
			CreatedAt:    o.CreatedAt,
			CustomerName: o.CustomerName,
			ItemCount:    o.ItemCount,
		})
	}

	return DashboardOutput{
		Stats: DashboardStatsOutput{
			TotalOrders:     s.TotalOrders,
			TotalCustomers:  s.TotalCustomers,
			TotalProducts:   s.TotalProducts,
			PendingOrders:   s.PendingOrders,
			CompletedOrders: s.CompletedOrders,
			TotalRevenue:    formatMoney(s.TotalRevenue),
		},
		RecentOrders: recent,
	}, nil
}

func (u *AdminReportUsecase) ListCustomers(ctx context.Context) ([]CustomerOutput, error) {
	rows, err := u.reports.ListCustomers(ctx)
	if err != nil {
		return []CustomerOutput{}, dbError(err)
	}

	outs := make([]CustomerOutput, 0, len(rows))
	for _, c := range rows {
		outs = append(outs, toCustomerOutput(c))
	}
	return outs, nil
}

// 管理者や存在しないIDは404
func (u *AdminReportUsecase) GetCustomer(ctx context.Context, userID int64) (CustomerDetailOutput, error) {
	if userID <= 0 {
		return CustomerDetailOutput{}, validationError("Invalid customer id")
	}

	c, err := u.reports.FindCustomer(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CustomerDetailOutput{}, notFound("Customer not found")
	}
	if err != nil {
		return CustomerDetailOutput{}, dbError(err)
	}

	rows, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{UserID: &userID})
	if err != nil {
		return CustomerDetailOutput{}, dbError(err)
	}

	return CustomerDetailOutput{
		Customer: toCustomerOutput(c),
		Orders:   toAdminOrderSummaries(rows),
	}, nil
}

type AuditLogOutput struct {
	ID            int64                   `json:"id"`
	ActorUserID   int64                   `json:"actor_user_id"`
	ActorUsername string                  `json:"actor_username"`
	Action        model.AuditAction       `json:"action"`
	ResourceType  model.AuditResourceType `json:"resource_type"`
	ResourceID    int64                   `json:"resource_id"`
	BeforeJSON    string                  `json:"before_json"`
	AfterJSON     string                  `json:"after_json"`
	CreatedAt     time.Time               `json:"created_at"`
}

func (u *AdminReportUsecase) ListAuditLogs(ctx context.Context, filter repo.AuditLogFilter) ([]AuditLogOutput, error) {
	rows, err := u.auditLogs.List(ctx, filter)
	if err != nil {
		return []AuditLogOutput{}, dbError(err)
	}

	out := make([]AuditLogOutput, 0, len(rows))
	for _, r := range rows {
		out = append(out, AuditLogOutput{
			ID:            r.ID,
			ActorUserID:   r.ActorUserID,
			ActorUsername: r.ActorUsername,
			Action:        r.Action,
			ResourceType:  r.ResourceType,
			ResourceID:    r.ResourceID,
			BeforeJSON:    r.BeforeJSON,
			AfterJSON:     r.AfterJSON,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}

func toCustomerOutput(c repo.CustomerSummary) CustomerOutput {
	return CustomerOutput{
		ID:            c.ID,
		Username:      c.Username,
		Email:         c.Email,
		CreatedAt:     c.CreatedAt,
		TotalOrders:   c.TotalOrders,
		TotalSpent:    formatMoney(c.TotalSpent),
		LastOrderDate: c.LastOrderDate,
	}
}
