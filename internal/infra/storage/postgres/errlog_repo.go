package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vndesk/helpdesk/internal/core/domain"
)

// ErrorLogRepo implements storage.ErrorLogRepository using PostgreSQL.
type ErrorLogRepo struct {
	db *DB
}

// NewErrorLogRepo creates a new PostgreSQL error log repository.
func NewErrorLogRepo(db *DB) *ErrorLogRepo {
	return &ErrorLogRepo{db: db}
}

type errorRow struct {
	Time      time.Time `db:"logged_at"`
	Operation string    `db:"operation"`
	Message   string    `db:"message"`
}

// Append appends an error entry.
func (r *ErrorLogRepo) Append(ctx context.Context, entry *domain.ErrorEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO error_log (logged_at, operation, message) VALUES ($1, $2, $3)`,
		entry.Time, entry.Operation, entry.Message)
	if err != nil {
		return fmt.Errorf("failed to insert error entry: %w", err)
	}
	return nil
}

// Tail retrieves the most recent entries, newest first.
func (r *ErrorLogRepo) Tail(ctx context.Context, limit int) ([]*domain.ErrorEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []errorRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT logged_at, operation, message
		FROM error_log
		ORDER BY logged_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to tail error log: %w", err)
	}

	entries := make([]*domain.ErrorEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &domain.ErrorEntry{
			Time:      row.Time.UTC(),
			Operation: row.Operation,
			Message:   row.Message,
		})
	}
	return entries, nil
}
