package postgres

import (
	"context"
	"fmt"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/database"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

const communicationColumns = `id, customer_id, type, subject, content, date, logged_by, created_at`

// CommunicationRepository implements repository.CommunicationRepository using
// PostgreSQL. The table is append-only; there is no update or delete.
type CommunicationRepository struct {
	pool database.DBTX
}

// NewCommunicationRepository creates a new PostgreSQL-backed communication
// repository.
func NewCommunicationRepository(pool database.DBTX) *CommunicationRepository {
	return &CommunicationRepository{pool: pool}
}

// insertCommunication is shared with the order repository so status changes
// and their log entries commit together.
func insertCommunication(ctx context.Context, db database.DBTX, c *domain.Communication) error {
	query := `
		INSERT INTO communications (` + communicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := db.Exec(ctx, query,
		c.ID,
		c.CustomerID,
		c.Type,
		c.Subject,
		c.Content,
		c.Date,
		c.LoggedBy,
		c.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("customer", c.CustomerID)
		}
		return fmt.Errorf("insert communication: %w", err)
	}
	return nil
}

// Create appends a new entry to a customer's audit trail.
func (r *CommunicationRepository) Create(ctx context.Context, c *domain.Communication) error {
	return insertCommunication(ctx, r.pool, c)
}

// ListByCustomer returns a customer's communications, newest first, with the
// total count.
func (r *CommunicationRepository) ListByCustomer(ctx context.Context, customerID string, page, perPage int) ([]domain.Communication, int, error) {
	query := `
		SELECT ` + communicationColumns + `, count(*) OVER() AS total_count
		FROM communications
		WHERE customer_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3`

	limit, offset := pageBounds(page, perPage)

	rows, err := r.pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list communications: %w", err)
	}
	defer rows.Close()

	var totalCount int
	comms := make([]domain.Communication, 0)

	for rows.Next() {
		var c domain.Communication
		if err := rows.Scan(
			&c.ID,
			&c.CustomerID,
			&c.Type,
			&c.Subject,
			&c.Content,
			&c.Date,
			&c.LoggedBy,
			&c.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan communication row: %w", err)
		}
		comms = append(comms, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate communication rows: %w", err)
	}

	return comms, totalCount, nil
}
