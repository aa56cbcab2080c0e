// Package repository defines the persistence interfaces for the wholesale
// platform. Implementations live in the postgres subpackage.
package repository

import (
	"context"
	"time"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
)

// Sequence scopes for human-readable document numbers.
const (
	SequenceScopeOrder   = "order"
	SequenceScopeInvoice = "invoice"
)

// CustomerFilter defines filter criteria for listing customers.
type CustomerFilter struct {
	Status  *string
	Tier    *string
	Search  *string
	Page    int
	PerPage int
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	CustomerID *string
	Status     *string
	Page       int
	PerPage    int
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	CategoryID *string
	ActiveOnly bool
	Page       int
	PerPage    int
}

// InvoiceFilter defines filter criteria for listing invoices.
type InvoiceFilter struct {
	CustomerID *string
	Status     *string
	Page       int
	PerPage    int
}

// CustomerRepository defines the interface for customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, int, error)
	Update(ctx context.Context, c *domain.Customer) error
}

// CategoryRepository defines the interface for category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product persistence.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines the interface for order persistence. Orders are
// never deleted.
type OrderRepository interface {
	// Create inserts the order with its items, the optional invoice, and the
	// optional communication log entry in one transaction.
	Create(ctx context.Context, o *domain.Order, inv *domain.Invoice, comm *domain.Communication) error

	// GetByID retrieves an order by its unique identifier, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetByCartReference retrieves the order created for a client cart
	// reference, if any. Used for checkout idempotency.
	GetByCartReference(ctx context.Context, ref string) (*domain.Order, error)

	// ListBySessionReference returns all orders created for a payment session
	// reference. Webhook reconciliation treats zero or multiple matches as
	// unresolvable.
	ListBySessionReference(ctx context.Context, ref string) ([]domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateWithLog writes the order's mutable fields and, when comm is
	// non-nil, inserts the communication in the same transaction.
	UpdateWithLog(ctx context.Context, o *domain.Order, comm *domain.Communication) error

	// SetPaymentSession attaches the hosted-checkout session reference and URL
	// to an already persisted order.
	SetPaymentSession(ctx context.Context, orderID, sessionRef, checkoutURL string) error

	// ListFollowUpDue returns delivered orders whose follow-up date has passed
	// and whose reminder has not been sent yet.
	ListFollowUpDue(ctx context.Context, asOf time.Time) ([]domain.Order, error)
}

// InvoiceRepository defines the interface for invoice persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, int, error)
	Update(ctx context.Context, inv *domain.Invoice) error
}

// CommunicationRepository defines the interface for the customer audit trail.
// Entries are append-only.
type CommunicationRepository interface {
	Create(ctx context.Context, c *domain.Communication) error
	ListByCustomer(ctx context.Context, customerID string, page, perPage int) ([]domain.Communication, int, error)
}

// SequenceRepository allocates document numbers. Next returns the next value
// of the per-year counter for a scope, atomically.
type SequenceRepository interface {
	Next(ctx context.Context, scope string, year int) (int, error)
}

// CuratedProductRepository persists per-customer curated catalogs.
type CuratedProductRepository interface {
	// ListByCustomer returns the customer's curated entries in sort order,
	// with each product loaded.
	ListByCustomer(ctx context.Context, customerID string) ([]domain.CuratedProduct, error)

	// Add inserts the entries, silently skipping products already curated
	// for the customer.
	Add(ctx context.Context, entries []domain.CuratedProduct) error

	// Remove deletes one product from the customer's curated list.
	Remove(ctx context.Context, customerID, productID string) error
}

// ReportRepository runs the read-only aggregation queries behind the admin
// reports and dashboard. Every query excludes pending-payment orders.
type ReportRepository interface {
	// RevenueByMonth groups completed-order revenue by calendar month,
	// oldest first.
	RevenueByMonth(ctx context.Context) ([]domain.MonthlyRevenue, error)

	// TopCustomers ranks customers by lifetime spend, highest first.
	TopCustomers(ctx context.Context, limit int) ([]domain.CustomerSpend, error)

	// PopularProducts ranks products by units sold, highest first.
	PopularProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)

	// TierDistribution counts completed orders per discount level.
	TierDistribution(ctx context.Context) ([]domain.TierSlice, error)

	// SalesTotals sums completed orders created at or after since. A zero
	// since covers all time.
	SalesTotals(ctx context.Context, since time.Time) (domain.SalesTotals, error)

	// OrderStatusCounts counts all orders by status, including pending
	// payment.
	OrderStatusCounts(ctx context.Context) (map[string]int, error)

	// ActiveCustomerCount counts customers with active status.
	ActiveCustomerCount(ctx context.Context) (int, error)
}
