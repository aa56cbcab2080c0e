package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
)

func TestSalesReport_AssemblesAllSections(t *testing.T) {
	reports := new(mockReportRepository)
	orders := new(mockOrderRepository)
	svc := NewReportService(reports, orders, newTestLogger())
	ctx := context.Background()

	reports.On("RevenueByMonth", ctx).Return([]domain.MonthlyRevenue{
		{Month: "2026-07", Orders: 3, Revenue: 90000},
		{Month: "2026-08", Orders: 2, Revenue: 50000},
	}, nil)
	reports.On("TopCustomers", ctx, 10).Return([]domain.CustomerSpend{
		{CustomerID: "cust-1", BusinessName: "Shop Co", Orders: 4, Total: 120000},
	}, nil)
	reports.On("PopularProducts", ctx, 20).Return([]domain.ProductSales{
		{ProductID: "prod-1", SKU: "SC-15-CARD", Title: "Cardinal Sun Catcher 15 inch", Quantity: 9, Revenue: 137700},
	}, nil)
	reports.On("TierDistribution", ctx).Return([]domain.TierSlice{
		{DiscountPercent: 40, Orders: 3},
		{DiscountPercent: 45, Orders: 2},
	}, nil)
	reports.On("SalesTotals", ctx, time.Time{}).Return(domain.SalesTotals{Orders: 5, Revenue: 140000}, nil)

	report, err := svc.SalesReport(ctx)

	require.NoError(t, err)
	assert.Len(t, report.RevenueByMonth, 2)
	assert.Equal(t, "2026-07", report.RevenueByMonth[0].Month)
	assert.Equal(t, "Shop Co", report.TopCustomers[0].BusinessName)
	assert.Equal(t, 9, report.PopularProducts[0].Quantity)
	assert.Len(t, report.TierDistribution, 2)
	assert.Equal(t, 5, report.TotalOrders)
	assert.Equal(t, int64(140000), report.TotalRevenue)
	reports.AssertExpectations(t)
}

func TestSalesReport_QueryFailure(t *testing.T) {
	reports := new(mockReportRepository)
	orders := new(mockOrderRepository)
	svc := NewReportService(reports, orders, newTestLogger())
	ctx := context.Background()

	reports.On("RevenueByMonth", ctx).Return(nil, assert.AnError)

	report, err := svc.SalesReport(ctx)

	assert.Nil(t, report)
	assert.Error(t, err)
}

func TestDashboard_ComputesTotals(t *testing.T) {
	reports := new(mockReportRepository)
	orders := new(mockOrderRepository)
	svc := NewReportService(reports, orders, newTestLogger())
	ctx := context.Background()

	recent := []domain.Order{
		{ID: "order-2", OrderNumber: "BD-2026-002", Total: 30000},
		{ID: "order-1", OrderNumber: "BD-2026-001", Total: 27000},
	}
	reports.On("SalesTotals", ctx, mock.MatchedBy(func(since time.Time) bool {
		return since.IsZero()
	})).Return(domain.SalesTotals{Orders: 4, Revenue: 100000}, nil)
	reports.On("SalesTotals", ctx, mock.MatchedBy(func(since time.Time) bool {
		return !since.IsZero() && since.Day() == 1
	})).Return(domain.SalesTotals{Orders: 2, Revenue: 57000}, nil)
	reports.On("ActiveCustomerCount", ctx).Return(7, nil)
	reports.On("OrderStatusCounts", ctx).Return(map[string]int{
		"pending_payment": 1,
		"shipped":         2,
		"delivered":       2,
	}, nil)
	orders.On("List", ctx, repository.OrderFilter{Page: 1, PerPage: 10}).Return(recent, 5, nil)

	stats, err := svc.Dashboard(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(100000), stats.TotalRevenue)
	assert.Equal(t, int64(57000), stats.MonthlyRevenue)
	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 2, stats.MonthlyOrders)
	assert.Equal(t, 7, stats.ActiveCustomers)
	assert.Equal(t, int64(25000), stats.AverageOrderValue)
	assert.Equal(t, 2, stats.OrdersByStatus["shipped"])
	require.Len(t, stats.RecentOrders, 2)
	assert.Equal(t, "BD-2026-002", stats.RecentOrders[0].OrderNumber)
	reports.AssertExpectations(t)
}

func TestDashboard_NoOrdersYet(t *testing.T) {
	reports := new(mockReportRepository)
	orders := new(mockOrderRepository)
	svc := NewReportService(reports, orders, newTestLogger())
	ctx := context.Background()

	reports.On("SalesTotals", ctx, mock.AnythingOfType("time.Time")).Return(domain.SalesTotals{}, nil)
	reports.On("ActiveCustomerCount", ctx).Return(0, nil)
	reports.On("OrderStatusCounts", ctx).Return(map[string]int{}, nil)
	orders.On("List", ctx, repository.OrderFilter{Page: 1, PerPage: 10}).Return([]domain.Order{}, 0, nil)

	stats, err := svc.Dashboard(ctx)

	require.NoError(t, err)
	assert.Zero(t, stats.TotalRevenue)
	assert.Zero(t, stats.AverageOrderValue)
	assert.Empty(t, stats.RecentOrders)
}
