package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalOrders     int64
	TotalCustomers  int64
	TotalProducts   int64
	PendingOrders   int64
	CompletedOrders int64
	TotalRevenue    decimal.Decimal
}

type CustomerSummary struct {
	ID            int64
	Username      string
	Email         string
	CreatedAt     time.Time
	TotalOrders   int64
	TotalSpent    decimal.Decimal
	LastOrderDate *time.Time
}

// 管理画面の集計（読み取りのみ）。
type ReportRepository interface {
	DashboardStats(ctx context.Context) (DashboardStats, error)
	ListCustomers(ctx context.Context) ([]CustomerSummary, error)
	// admin や存在しないIDは ErrNotFound
	FindCustomer(ctx context.Context, userID int64) (CustomerSummary, error)
}
