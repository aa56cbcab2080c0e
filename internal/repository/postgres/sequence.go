package postgres

import (
	"context"
	"fmt"

	"github.com/erinb-maker-radio/banwell-wholesale/pkg/database"
)

// SequenceRepository implements repository.SequenceRepository using a
// number_sequences table. Each (scope, year) pair holds an independent
// counter.
type SequenceRepository struct {
	pool database.DBTX
}

// NewSequenceRepository creates a new PostgreSQL-backed sequence repository.
func NewSequenceRepository(pool database.DBTX) *SequenceRepository {
	return &SequenceRepository{pool: pool}
}

// Next atomically increments and returns the counter for a scope and year.
// The upsert makes concurrent callers serialize on the row, so two checkouts
// can never receive the same number.
func (r *SequenceRepository) Next(ctx context.Context, scope string, year int) (int, error) {
	query := `
		INSERT INTO number_sequences (scope, year, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (scope, year)
		DO UPDATE SET value = number_sequences.value + 1
		RETURNING value`

	ctx, done := database.TraceQuery(ctx, "sequence.next", query)
	var value int
	err := r.pool.QueryRow(ctx, query, scope, year).Scan(&value)
	done(err)
	if err != nil {
		return 0, fmt.Errorf("next sequence value for %s/%d: %w", scope, year, err)
	}
	return value, nil
}
