package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores events in the transfer_events table.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record inserts one event.
func (r *Repository) Record(ctx context.Context, e Event) error {
	var errText *string
	if e.Error != "" {
		errText = &e.Error
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO transfer_events (batch_id, operation, object_key, bytes, outcome, error)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.BatchID, e.Operation, e.Key, e.Bytes, e.Outcome, errText,
	)
	if err != nil {
		return fmt.Errorf("insert transfer event: %w", err)
	}
	return nil
}
