package memory

import (
	"context"
	"sync"

	"github.com/vndesk/helpdesk/internal/core/domain"
	"github.com/vndesk/helpdesk/internal/infra/storage"
)

// MemoryStorage is an in-memory backend for development and tests.
type MemoryStorage struct {
	tickets []*domain.Ticket
	errors  []*domain.ErrorEntry
	mu      sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Tickets() storage.TicketRepository    { return &TicketRepo{store: s} }
func (s *MemoryStorage) ErrorLog() storage.ErrorLogRepository { return &ErrorLogRepo{store: s} }

func (s *MemoryStorage) Health(ctx context.Context) error { return nil }

func (s *MemoryStorage) Close() error { return nil }

// -----------------------------------------------------------------------------
// Ticket Repository
// -----------------------------------------------------------------------------

type TicketRepo struct {
	store *MemoryStorage
}

func (r *TicketRepo) Append(ctx context.Context, ticket *domain.Ticket) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t := *ticket
	r.store.tickets = append(r.store.tickets, &t)
	return nil
}

func (r *TicketRepo) List(ctx context.Context) ([]*domain.Ticket, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.Ticket, 0, len(r.store.tickets))
	for _, t := range r.store.tickets {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Error Log Repository
// -----------------------------------------------------------------------------

type ErrorLogRepo struct {
	store *MemoryStorage
}

func (r *ErrorLogRepo) Append(ctx context.Context, entry *domain.ErrorEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e := *entry
	r.store.errors = append(r.store.errors, &e)
	return nil
}

func (r *ErrorLogRepo) Tail(ctx context.Context, limit int) ([]*domain.ErrorEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if limit <= 0 || limit > len(r.store.errors) {
		limit = len(r.store.errors)
	}
	out := make([]*domain.ErrorEntry, 0, limit)
	for i := len(r.store.errors) - 1; i >= len(r.store.errors)-limit; i-- {
		e := *r.store.errors[i]
		out = append(out, &e)
	}
	return out, nil
}
