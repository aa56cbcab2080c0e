package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/database"
)

// completedOrders restricts a query to orders the buyer has paid or committed
// to pay. Pending-payment orders are abandoned carts until the webhook or an
// invoice confirms them.
const completedOrders = `status <> 'pending_payment'`

// ReportRepository implements repository.ReportRepository using PostgreSQL.
// All queries aggregate in the database rather than in application memory.
type ReportRepository struct {
	pool database.DBTX
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool database.DBTX) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// RevenueByMonth groups completed-order revenue by calendar month.
func (r *ReportRepository) RevenueByMonth(ctx context.Context) ([]domain.MonthlyRevenue, error) {
	query := `
		SELECT to_char(created_at, 'YYYY-MM') AS month, count(*), sum(total)
		FROM orders
		WHERE ` + completedOrders + `
		GROUP BY month
		ORDER BY month`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("revenue by month: %w", err)
	}
	defer rows.Close()

	months := make([]domain.MonthlyRevenue, 0)
	for rows.Next() {
		var m domain.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Orders, &m.Revenue); err != nil {
			return nil, fmt.Errorf("scan monthly revenue: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly revenue: %w", err)
	}
	return months, nil
}

// TopCustomers ranks customers by lifetime completed-order spend.
func (r *ReportRepository) TopCustomers(ctx context.Context, limit int) ([]domain.CustomerSpend, error) {
	query := `
		SELECT c.id, c.business_name, count(o.id), sum(o.total)
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.` + completedOrders + `
		GROUP BY c.id, c.business_name
		ORDER BY sum(o.total) DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	defer rows.Close()

	spenders := make([]domain.CustomerSpend, 0)
	for rows.Next() {
		var s domain.CustomerSpend
		if err := rows.Scan(&s.CustomerID, &s.BusinessName, &s.Orders, &s.Total); err != nil {
			return nil, fmt.Errorf("scan customer spend: %w", err)
		}
		spenders = append(spenders, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer spend: %w", err)
	}
	return spenders, nil
}

// PopularProducts ranks products by units sold across completed orders.
func (r *ReportRepository) PopularProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	query := `
		SELECT p.id, p.sku, p.title, sum(i.quantity), sum(i.line_total)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		JOIN products p ON p.id = i.product_id
		WHERE o.` + completedOrders + `
		GROUP BY p.id, p.sku, p.title
		ORDER BY sum(i.quantity) DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("popular products: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.ProductSales, 0)
	for rows.Next() {
		var s domain.ProductSales
		if err := rows.Scan(&s.ProductID, &s.SKU, &s.Title, &s.Quantity, &s.Revenue); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product sales: %w", err)
	}
	return sales, nil
}

// TierDistribution counts completed orders per discount level.
func (r *ReportRepository) TierDistribution(ctx context.Context) ([]domain.TierSlice, error) {
	query := `
		SELECT discount_percent, count(*)
		FROM orders
		WHERE ` + completedOrders + `
		GROUP BY discount_percent
		ORDER BY discount_percent`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("tier distribution: %w", err)
	}
	defer rows.Close()

	slices := make([]domain.TierSlice, 0)
	for rows.Next() {
		var s domain.TierSlice
		if err := rows.Scan(&s.DiscountPercent, &s.Orders); err != nil {
			return nil, fmt.Errorf("scan tier slice: %w", err)
		}
		slices = append(slices, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tier distribution: %w", err)
	}
	return slices, nil
}

// SalesTotals sums completed orders created at or after since.
func (r *ReportRepository) SalesTotals(ctx context.Context, since time.Time) (domain.SalesTotals, error) {
	query := `
		SELECT count(*), coalesce(sum(total), 0)
		FROM orders
		WHERE ` + completedOrders + ` AND created_at >= $1`

	var totals domain.SalesTotals
	if err := r.pool.QueryRow(ctx, query, since).Scan(&totals.Orders, &totals.Revenue); err != nil {
		return domain.SalesTotals{}, fmt.Errorf("sales totals: %w", err)
	}
	return totals, nil
}

// OrderStatusCounts counts all orders by status.
func (r *ReportRepository) OrderStatusCounts(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, count(*) FROM orders GROUP BY status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("order status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

// ActiveCustomerCount counts customers with active status.
func (r *ReportRepository) ActiveCustomerCount(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers WHERE status = 'active'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("active customer count: %w", err)
	}
	return n, nil
}
