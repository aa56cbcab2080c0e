// Package postgres implements the repository interfaces over PostgreSQL using
// pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/database"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// PostgreSQL constraint violation codes.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

const customerColumns = `id, email, business_name, contact_name, phone, address, city, state, zip, website, notes, status, discount_tier, provider_customer_id, created_at, updated_at`

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a new customer. A duplicate email is reported as a conflict.
func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Email,
		c.BusinessName,
		c.ContactName,
		c.Phone,
		c.Address,
		c.City,
		c.State,
		c.Zip,
		c.Website,
		c.Notes,
		c.Status,
		c.DiscountTier,
		c.ProviderCustomerID,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("customer with email %s already exists", c.Email))
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer by its unique identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanCustomer(r.pool.QueryRow(ctx, query, id), "customer", id)
}

// GetByEmail retrieves a customer by email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return r.scanCustomer(r.pool.QueryRow(ctx, query, email), "customer", email)
}

func (r *CustomerRepository) scanCustomer(row pgx.Row, resource, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.Email,
		&c.BusinessName,
		&c.ContactName,
		&c.Phone,
		&c.Address,
		&c.City,
		&c.State,
		&c.Zip,
		&c.Website,
		&c.Notes,
		&c.Status,
		&c.DiscountTier,
		&c.ProviderCustomerID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(resource, id)
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return &c, nil
}

// List returns customers matching the given filter with the total count.
func (r *CustomerRepository) List(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.Tier != nil {
		conditions = append(conditions, fmt.Sprintf("discount_tier = $%d", argIndex))
		args = append(args, *filter.Tier)
		argIndex++
	}
	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(business_name ILIKE $%d OR contact_name ILIKE $%d OR email ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT `+customerColumns+`, count(*) OVER() AS total_count
		FROM customers
		%s
		ORDER BY business_name
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit, offset := pageBounds(filter.Page, filter.PerPage)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var totalCount int
	customers := make([]domain.Customer, 0)

	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(
			&c.ID,
			&c.Email,
			&c.BusinessName,
			&c.ContactName,
			&c.Phone,
			&c.Address,
			&c.City,
			&c.State,
			&c.Zip,
			&c.Website,
			&c.Notes,
			&c.Status,
			&c.DiscountTier,
			&c.ProviderCustomerID,
			&c.CreatedAt,
			&c.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, totalCount, nil
}

// Update writes the customer's mutable fields.
func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `
		UPDATE customers
		SET email = $1, business_name = $2, contact_name = $3, phone = $4,
			address = $5, city = $6, state = $7, zip = $8, website = $9,
			notes = $10, status = $11, discount_tier = $12,
			provider_customer_id = $13, updated_at = $14
		WHERE id = $15`

	ct, err := r.pool.Exec(ctx, query,
		c.Email,
		c.BusinessName,
		c.ContactName,
		c.Phone,
		c.Address,
		c.City,
		c.State,
		c.Zip,
		c.Website,
		c.Notes,
		c.Status,
		c.DiscountTier,
		c.ProviderCustomerID,
		time.Now().UTC(),
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("customer with email %s already exists", c.Email))
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", c.ID)
	}
	return nil
}

// pageBounds converts page/per-page into LIMIT/OFFSET with defaults.
func pageBounds(page, perPage int) (limit, offset int) {
	limit = perPage
	if limit <= 0 {
		limit = 20
	}
	if page > 1 {
		offset = (page - 1) * limit
	}
	return limit, offset
}
