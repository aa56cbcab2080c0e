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

const invoiceColumns = `id, order_id, customer_id, invoice_number, amount, due_date, status, provider_payment_id, sent_date, paid_date, paid_amount, notes, created_at, updated_at`

// InvoiceRepository implements repository.InvoiceRepository using PostgreSQL.
type InvoiceRepository struct {
	pool database.DBTX
}

// NewInvoiceRepository creates a new PostgreSQL-backed invoice repository.
func NewInvoiceRepository(pool database.DBTX) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

// insertInvoice is shared with the order repository so checkout can create the
// order and its invoice in one transaction.
func insertInvoice(ctx context.Context, db database.DBTX, inv *domain.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := db.Exec(ctx, query,
		inv.ID,
		inv.OrderID,
		inv.CustomerID,
		inv.InvoiceNumber,
		inv.Amount,
		inv.DueDate,
		inv.Status,
		inv.ProviderPaymentID,
		inv.SentDate,
		inv.PaidDate,
		inv.PaidAmount,
		inv.Notes,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("invoice already exists for order %s", inv.OrderID))
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Create inserts a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	return insertInvoice(ctx, r.pool, inv)
}

// GetByID retrieves an invoice by its unique identifier.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return scanInvoice(r.pool.QueryRow(ctx, query, id), id)
}

// GetByOrderID retrieves the invoice for an order.
func (r *InvoiceRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE order_id = $1`
	return scanInvoice(r.pool.QueryRow(ctx, query, orderID), orderID)
}

func scanInvoice(row pgx.Row, id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.OrderID,
		&inv.CustomerID,
		&inv.InvoiceNumber,
		&inv.Amount,
		&inv.DueDate,
		&inv.Status,
		&inv.ProviderPaymentID,
		&inv.SentDate,
		&inv.PaidDate,
		&inv.PaidAmount,
		&inv.Notes,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("invoice", id)
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	return &inv, nil
}

// List returns invoices matching the given filter with the total count.
func (r *InvoiceRepository) List(ctx context.Context, filter repository.InvoiceFilter) ([]domain.Invoice, int, error) {
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
		SELECT `+invoiceColumns+`, count(*) OVER() AS total_count
		FROM invoices
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit, offset := pageBounds(filter.Page, filter.PerPage)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var totalCount int
	invoices := make([]domain.Invoice, 0)

	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(
			&inv.ID,
			&inv.OrderID,
			&inv.CustomerID,
			&inv.InvoiceNumber,
			&inv.Amount,
			&inv.DueDate,
			&inv.Status,
			&inv.ProviderPaymentID,
			&inv.SentDate,
			&inv.PaidDate,
			&inv.PaidAmount,
			&inv.Notes,
			&inv.CreatedAt,
			&inv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate invoice rows: %w", err)
	}

	return invoices, totalCount, nil
}

// Update writes the invoice's mutable fields.
func (r *InvoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $1, provider_payment_id = $2, sent_date = $3, paid_date = $4,
			paid_amount = $5, notes = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		inv.Status,
		inv.ProviderPaymentID,
		inv.SentDate,
		inv.PaidDate,
		inv.PaidAmount,
		inv.Notes,
		time.Now().UTC(),
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("invoice", inv.ID)
	}
	return nil
}
