package domain

// Report read models. Pending-payment orders are excluded from every figure;
// all currency amounts are integer cents.

// MonthlyRevenue is one month's completed-order revenue.
type MonthlyRevenue struct {
	Month   string `json:"month"` // YYYY-MM
	Orders  int    `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// CustomerSpend ranks a customer by lifetime completed-order spend.
type CustomerSpend struct {
	CustomerID   string `json:"customer_id"`
	BusinessName string `json:"business_name"`
	Orders       int    `json:"orders"`
	Total        int64  `json:"total"`
}

// ProductSales ranks a product by units sold across completed orders.
type ProductSales struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

// TierSlice counts completed orders placed at one discount level.
type TierSlice struct {
	DiscountPercent int `json:"discount_percent"`
	Orders          int `json:"orders"`
}

// SalesTotals aggregates completed-order revenue over a period.
type SalesTotals struct {
	Orders  int   `json:"orders"`
	Revenue int64 `json:"revenue"`
}

// SalesReport is the admin sales report.
type SalesReport struct {
	RevenueByMonth   []MonthlyRevenue `json:"revenue_by_month"`
	TopCustomers     []CustomerSpend  `json:"top_customers"`
	PopularProducts  []ProductSales   `json:"popular_products"`
	TierDistribution []TierSlice      `json:"tier_distribution"`
	TotalOrders      int              `json:"total_orders"`
	TotalRevenue     int64            `json:"total_revenue"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalRevenue      int64          `json:"total_revenue"`
	MonthlyRevenue    int64          `json:"monthly_revenue"`
	TotalOrders       int            `json:"total_orders"`
	MonthlyOrders     int            `json:"monthly_orders"`
	ActiveCustomers   int            `json:"active_customers"`
	AverageOrderValue int64          `json:"average_order_value"`
	OrdersByStatus    map[string]int `json:"orders_by_status"`
	RecentOrders      []Order        `json:"recent_orders"`
}
