package postgres

import (
	"context"
	"fmt"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/database"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// CuratedProductRepository implements repository.CuratedProductRepository
// using PostgreSQL.
type CuratedProductRepository struct {
	pool database.DBTX
}

// NewCuratedProductRepository creates a new PostgreSQL-backed curated product
// repository.
func NewCuratedProductRepository(pool database.DBTX) *CuratedProductRepository {
	return &CuratedProductRepository{pool: pool}
}

// ListByCustomer returns the customer's curated entries in sort order, with
// each product loaded.
func (r *CuratedProductRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.CuratedProduct, error) {
	query := `
		SELECT cp.id, cp.customer_id, cp.product_id, cp.sort_order, cp.created_at,
			p.id, p.sku, p.title, p.short_title, p.category_id, p.retail_price,
			p.size, p.description, p.is_active, p.sort_order, p.created_at, p.updated_at
		FROM curated_products cp
		JOIN products p ON p.id = cp.product_id
		WHERE cp.customer_id = $1
		ORDER BY cp.sort_order, cp.created_at`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list curated products: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.CuratedProduct, 0)
	for rows.Next() {
		var e domain.CuratedProduct
		var p domain.Product
		if err := rows.Scan(
			&e.ID, &e.CustomerID, &e.ProductID, &e.SortOrder, &e.CreatedAt,
			&p.ID, &p.SKU, &p.Title, &p.ShortTitle, &p.CategoryID, &p.RetailPrice,
			&p.Size, &p.Description, &p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan curated product: %w", err)
		}
		e.Product = &p
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate curated products: %w", err)
	}
	return entries, nil
}

// Add inserts the entries. Products already curated for the customer are
// skipped by the unique index.
func (r *CuratedProductRepository) Add(ctx context.Context, entries []domain.CuratedProduct) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO curated_products (id, customer_id, product_id, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (customer_id, product_id) DO NOTHING`

	for _, e := range entries {
		if _, err := r.pool.Exec(ctx, query, e.ID, e.CustomerID, e.ProductID, e.SortOrder, e.CreatedAt); err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.NotFound("product", e.ProductID)
			}
			return fmt.Errorf("insert curated product: %w", err)
		}
	}
	return nil
}

// Remove deletes one product from the customer's curated list.
func (r *CuratedProductRepository) Remove(ctx context.Context, customerID, productID string) error {
	query := `DELETE FROM curated_products WHERE customer_id = $1 AND product_id = $2`

	ct, err := r.pool.Exec(ctx, query, customerID, productID)
	if err != nil {
		return fmt.Errorf("remove curated product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("curated product", productID)
	}
	return nil
}
