package storage

import (
	"context"

	"github.com/vndesk/helpdesk/internal/core/domain"
)

// TicketRepository handles ticket storage operations. The backing store is an
// append-only log of rows; there is no update or delete, matching the shared
// spreadsheet the team works against.
type TicketRepository interface {
	// Append appends a ticket row.
	Append(ctx context.Context, ticket *domain.Ticket) error

	// List retrieves all tickets.
	List(ctx context.Context) ([]*domain.Ticket, error)
}

// ErrorLogRepository handles the append-only operational error log.
type ErrorLogRepository interface {
	// Append appends an error entry.
	Append(ctx context.Context, entry *domain.ErrorEntry) error

	// Tail retrieves the most recent entries, newest first.
	Tail(ctx context.Context, limit int) ([]*domain.ErrorEntry, error)
}

// Store bundles the repositories of one backend plus its lifecycle.
type Store interface {
	Tickets() TicketRepository
	ErrorLog() ErrorLogRepository

	// Health checks whether the backend is reachable.
	Health(ctx context.Context) error

	Close() error
}
