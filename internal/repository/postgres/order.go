package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/database"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

const orderColumns = `id, order_number, customer_id, status, payment_method, subtotal, discount_percent, discount_amount, total, provider_payment_id, session_reference, checkout_url, cart_reference, invoice_terms, shipping_address, tracking_number, shipped_date, delivered_date, follow_up_date, follow_up_sent, notes, created_at, updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order, its items, the optional invoice, and the optional
// communication atomically within one transaction. A duplicate cart reference
// is reported as a conflict so checkout can return the existing order.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order, inv *domain.Invoice, comm *domain.Communication) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.OrderNumber,
		o.CustomerID,
		o.Status,
		o.PaymentMethod,
		o.Subtotal,
		o.DiscountPercent,
		o.DiscountAmount,
		o.Total,
		o.ProviderPaymentID,
		nullString(o.SessionReference),
		o.CheckoutURL,
		nullString(o.CartReference),
		o.InvoiceTerms,
		o.ShippingAddress,
		o.TrackingNumber,
		o.ShippedDate,
		o.DeliveredDate,
		o.FollowUpDate,
		o.FollowUpSent,
		o.Notes,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("order already exists for cart reference %s", o.CartReference))
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if inv != nil {
		if err := insertInvoice(ctx, tx, inv); err != nil {
			return err
		}
	}

	if comm != nil {
		if err := insertCommunication(ctx, tx, comm); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return o, nil
}

// GetByCartReference retrieves the order created for a client cart reference.
func (r *OrderRepository) GetByCartReference(ctx context.Context, ref string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE cart_reference = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", ref)
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return o, nil
}

// ListBySessionReference returns all orders created for a payment session
// reference, without items.
func (r *OrderRepository) ListBySessionReference(ctx context.Context, ref string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_reference = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, ref)
	if err != nil {
		return nil, fmt.Errorf("query orders by session reference: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argIndex))
		args = append(args, *filter.CustomerID)
		argIndex++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT `+orderColumns+`, count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit, offset := pageBounds(filter.Page, filter.PerPage)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		o, err := scanOrderFromRows(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		itemsByOrder, err := r.loadItems(ctx, orderIDs)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			if items, ok := itemsByOrder[orders[i].ID]; ok {
				orders[i].Items = items
			} else {
				orders[i].Items = []domain.OrderItem{}
			}
		}
	}

	return orders, totalCount, nil
}

// UpdateWithLog writes the order's mutable fields and, when comm is non-nil,
// inserts the communication in the same transaction. Items are immutable and
// never touched.
func (r *OrderRepository) UpdateWithLog(ctx context.Context, o *domain.Order, comm *domain.Communication) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders
		SET status = $1, provider_payment_id = $2, session_reference = $3,
			checkout_url = $4, invoice_terms = $5, shipping_address = $6,
			tracking_number = $7, shipped_date = $8, delivered_date = $9,
			follow_up_date = $10, follow_up_sent = $11, notes = $12, updated_at = $13
		WHERE id = $14`

	ct, err := tx.Exec(ctx, query,
		o.Status,
		o.ProviderPaymentID,
		nullString(o.SessionReference),
		o.CheckoutURL,
		o.InvoiceTerms,
		o.ShippingAddress,
		o.TrackingNumber,
		o.ShippedDate,
		o.DeliveredDate,
		o.FollowUpDate,
		o.FollowUpSent,
		o.Notes,
		o.UpdatedAt,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", o.ID)
	}

	if comm != nil {
		if err := insertCommunication(ctx, tx, comm); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SetPaymentSession attaches the hosted-checkout session reference and URL to
// an already persisted order.
func (r *OrderRepository) SetPaymentSession(ctx context.Context, orderID, sessionRef, checkoutURL string) error {
	query := `
		UPDATE orders
		SET session_reference = $1, checkout_url = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, nullString(sessionRef), checkoutURL, time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("set payment session: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", orderID)
	}
	return nil
}

// ListFollowUpDue returns delivered orders whose follow-up date has passed and
// whose reminder has not been sent yet.
func (r *OrderRepository) ListFollowUpDue(ctx context.Context, asOf time.Time) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1 AND follow_up_date <= $2 AND follow_up_sent = FALSE
		ORDER BY follow_up_date`

	rows, err := r.pool.Query(ctx, query, domain.OrderStatusDelivered, asOf)
	if err != nil {
		return nil, fmt.Errorf("query follow-up due orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// loadItems retrieves items for the given orders, grouped by order ID.
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[string][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return itemsByOrder, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o          domain.Order
		sessionRef *string
		cartRef    *string
	)
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.Status,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.DiscountPercent,
		&o.DiscountAmount,
		&o.Total,
		&o.ProviderPaymentID,
		&sessionRef,
		&o.CheckoutURL,
		&cartRef,
		&o.InvoiceTerms,
		&o.ShippingAddress,
		&o.TrackingNumber,
		&o.ShippedDate,
		&o.DeliveredDate,
		&o.FollowUpDate,
		&o.FollowUpSent,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if sessionRef != nil {
		o.SessionReference = *sessionRef
	}
	if cartRef != nil {
		o.CartReference = *cartRef
	}
	return &o, nil
}

func scanOrderFromRows(rows pgx.Rows, totalCount *int) (*domain.Order, error) {
	var (
		o          domain.Order
		sessionRef *string
		cartRef    *string
	)
	if err := rows.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.Status,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.DiscountPercent,
		&o.DiscountAmount,
		&o.Total,
		&o.ProviderPaymentID,
		&sessionRef,
		&o.CheckoutURL,
		&cartRef,
		&o.InvoiceTerms,
		&o.ShippingAddress,
		&o.TrackingNumber,
		&o.ShippedDate,
		&o.DeliveredDate,
		&o.FollowUpDate,
		&o.FollowUpSent,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
		totalCount,
	); err != nil {
		return nil, fmt.Errorf("scan order row: %w", err)
	}
	if sessionRef != nil {
		o.SessionReference = *sessionRef
	}
	if cartRef != nil {
		o.CartReference = *cartRef
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			o          domain.Order
			sessionRef *string
			cartRef    *string
		)
		if err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.CustomerID,
			&o.Status,
			&o.PaymentMethod,
			&o.Subtotal,
			&o.DiscountPercent,
			&o.DiscountAmount,
			&o.Total,
			&o.ProviderPaymentID,
			&sessionRef,
			&o.CheckoutURL,
			&cartRef,
			&o.InvoiceTerms,
			&o.ShippingAddress,
			&o.TrackingNumber,
			&o.ShippedDate,
			&o.DeliveredDate,
			&o.FollowUpDate,
			&o.FollowUpSent,
			&o.Notes,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		if sessionRef != nil {
			o.SessionReference = *sessionRef
		}
		if cartRef != nil {
			o.CartReference = *cartRef
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// nullString maps the empty string to NULL so partial unique indexes on
// references only see real values.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
