package repository

import (
	"context"
	"time"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const customerSummaryColumns = "users.id, users.username, users.email, users.created_at, " +
	"(SELECT COUNT(*) FROM orders WHERE orders.user_id = users.id) AS total_orders, " +
	"(SELECT COALESCE(SUM(orders.total_amount), 0) FROM orders " +
	"WHERE orders.user_id = users.id AND orders.status = ?) AS total_spent"

type ReportGormRepository struct {
	db *gorm.DB
}

func NewReportGormRepository(db *gorm.DB) *ReportGormRepository {
	return &ReportGormRepository{db: db}
}

func (r *ReportGormRepository) DashboardStats(ctx context.Context) (repo.DashboardStats, error) {
	db := r.db.WithContext(ctx)
	var s repo.DashboardStats

	if err := db.Model(&model.Order{}).Count(&s.TotalOrders).Error; err != nil {
		return repo.DashboardStats{}, err
	}
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleCustomer).Count(&s.TotalCustomers).Error; err != nil {
		return repo.DashboardStats{}, err
	}
	if err := db.Model(&model.Cake{}).Count(&s.TotalProducts).Error; err != nil {
		return repo.DashboardStats{}, err
	}
	if err := db.Model(&model.Order{}).Where("status = ?", model.OrderStatusPending).Count(&s.PendingOrders).Error; err != nil {
		return repo.DashboardStats{}, err
	}
	if err := db.Model(&model.Order{}).Where("status = ?", model.OrderStatusCompleted).Count(&s.CompletedOrders).Error; err != nil {
		return repo.DashboardStats{}, err
	}

	// 売上は完了した注文のみ
	row := db.Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status = ?", model.OrderStatusCompleted).
		Row()
	var revenue decimal.Decimal
	if err := row.Scan(&revenue); err != nil {
		return repo.DashboardStats{}, err
	}
	s.TotalRevenue = revenue

	return s, nil
}

func (r *ReportGormRepository) ListCustomers(ctx context.Context) ([]repo.CustomerSummary, error) {
	var rows []repo.CustomerSummary
	err := r.db.WithContext(ctx).
		Table("users").
		Select(customerSummaryColumns, model.OrderStatusCompleted).
		Where("users.role = ?", model.RoleCustomer).
		Order("users.created_at DESC").
		Order("users.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if err := r.fillLastOrderDates(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportGormRepository) FindCustomer(ctx context.Context, userID int64) (repo.CustomerSummary, error) {
	var rows []repo.CustomerSummary
	err := r.db.WithContext(ctx).
		Table("users").
		Select(customerSummaryColumns, model.OrderStatusCompleted).
		Where("users.id = ? AND users.role = ?", userID, model.RoleCustomer).
		Scan(&rows).Error
	if err != nil {
		return repo.CustomerSummary{}, err
	}
	if len(rows) == 0 {
		return repo.CustomerSummary{}, repo.ErrNotFound
	}
	if err := r.fillLastOrderDates(ctx, rows); err != nil {
		return repo.CustomerSummary{}, err
	}
	return rows[0], nil
}

// MAX(created_at) はドライバによって文字列で返るので、行を取って最新を選ぶ
func (r *ReportGormRepository) fillLastOrderDates(ctx context.Context, rows []repo.CustomerSummary) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ID)
	}

	var orders []struct {
		UserID    int64
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("user_id, created_at").
		Where("user_id IN ?", ids).
		Order("created_at DESC").
		Scan(&orders).Error
	if err != nil {
		return err
	}

	latest := make(map[int64]time.Time, len(orders))
	for _, o := range orders {
		if _, ok := latest[o.UserID]; !ok {
			latest[o.UserID] = o.CreatedAt
		}
	}
	for i := range rows {
		if t, ok := latest[rows[i].ID]; ok {
			t := t
			rows[i].LastOrderDate = &t
		}
	}
	return nil
}
