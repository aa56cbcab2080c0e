package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
)

// Report row limits matching what the admin UI renders.
const (
	topCustomerLimit    = 10
	popularProductLimit = 20
	recentOrderLimit    = 10
)

// ReportService assembles the admin sales report and dashboard summary from
// the aggregation queries. All figures exclude pending-payment orders; the
// dashboard status histogram is the one exception, so abandoned checkouts
// stay visible.
type ReportService struct {
	reports repository.ReportRepository
	orders  repository.OrderRepository
	logger  *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(
	reports repository.ReportRepository,
	orders repository.OrderRepository,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		reports: reports,
		orders:  orders,
		logger:  logger,
	}
}

// SalesReport builds the full sales report: revenue by month, top customers,
// popular products, and the discount tier distribution.
func (s *ReportService) SalesReport(ctx context.Context) (*domain.SalesReport, error) {
	months, err := s.reports.RevenueByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("revenue by month: %w", err)
	}

	customers, err := s.reports.TopCustomers(ctx, topCustomerLimit)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}

	products, err := s.reports.PopularProducts(ctx, popularProductLimit)
	if err != nil {
		return nil, fmt.Errorf("popular products: %w", err)
	}

	tiers, err := s.reports.TierDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("tier distribution: %w", err)
	}

	totals, err := s.reports.SalesTotals(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}

	return &domain.SalesReport{
		RevenueByMonth:   months,
		TopCustomers:     customers,
		PopularProducts:  products,
		TierDistribution: tiers,
		TotalOrders:      totals.Orders,
		TotalRevenue:     totals.Revenue,
	}, nil
}

// Dashboard builds the dashboard summary: lifetime and current-month totals,
// the active customer count, the status histogram, and the latest orders.
func (s *ReportService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	allTime, err := s.reports.SalesTotals(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}

	month, err := s.reports.SalesTotals(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("monthly sales totals: %w", err)
	}

	active, err := s.reports.ActiveCustomerCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("active customer count: %w", err)
	}

	byStatus, err := s.reports.OrderStatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("order status counts: %w", err)
	}

	recent, _, err := s.orders.List(ctx, repository.OrderFilter{Page: 1, PerPage: recentOrderLimit})
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}

	stats := &domain.DashboardStats{
		TotalRevenue:    allTime.Revenue,
		MonthlyRevenue:  month.Revenue,
		TotalOrders:     allTime.Orders,
		MonthlyOrders:   month.Orders,
		ActiveCustomers: active,
		OrdersByStatus:  byStatus,
		RecentOrders:    recent,
	}
	if allTime.Orders > 0 {
		stats.AverageOrderValue = allTime.Revenue / int64(allTime.Orders)
	}
	return stats, nil
}
