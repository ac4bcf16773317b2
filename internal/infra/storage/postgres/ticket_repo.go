package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vndesk/helpdesk/internal/core/domain"
)

// TicketRepo implements storage.TicketRepository using PostgreSQL.
type TicketRepo struct {
	db *DB
}

// NewTicketRepo creates a new PostgreSQL ticket repository.
func NewTicketRepo(db *DB) *TicketRepo {
	return &TicketRepo{db: db}
}

type ticketRow struct {
	ID          string     `db:"id"`
	Company     string     `db:"company"`
	ContractNo  string     `db:"contract_no"`
	RootCause   string     `db:"root_cause"`
	Status      string     `db:"status"`
	Resolution  string     `db:"resolution"`
	OccurredAt  time.Time  `db:"occurred_at"`
	CompletedAt *time.Time `db:"completed_at"`
	Technician  string     `db:"technician"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Append appends a ticket row.
func (r *TicketRepo) Append(ctx context.Context, ticket *domain.Ticket) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO tickets (id, company, contract_no, root_cause, status, resolution,
		                     occurred_at, completed_at, technician, created_at)
		VALUES (:id, :company, :contract_no, :root_cause, :status, :resolution,
		        :occurred_at, :completed_at, :technician, :created_at)`,
		ticketRow{
			ID:          ticket.ID,
			Company:     ticket.Company,
			ContractNo:  ticket.ContractNo,
			RootCause:   ticket.RootCause,
			Status:      string(ticket.Status),
			Resolution:  ticket.Resolution,
			OccurredAt:  ticket.OccurredAt,
			CompletedAt: ticket.CompletedAt,
			Technician:  ticket.Technician,
			CreatedAt:   ticket.CreatedAt,
		})
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

// List retrieves all tickets.
func (r *TicketRepo) List(ctx context.Context) ([]*domain.Ticket, error) {
	var rows []ticketRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, company, contract_no, root_cause, status, resolution,
		       occurred_at, completed_at, technician, created_at
		FROM tickets
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	tickets := make([]*domain.Ticket, 0, len(rows))
	for _, row := range rows {
		t := &domain.Ticket{
			ID:         row.ID,
			Company:    row.Company,
			ContractNo: row.ContractNo,
			RootCause:  row.RootCause,
			Status:     domain.Status(row.Status),
			Resolution: row.Resolution,
			OccurredAt: row.OccurredAt.UTC(),
			Technician: row.Technician,
			CreatedAt:  row.CreatedAt.UTC(),
		}
		if row.CompletedAt != nil {
			c := row.CompletedAt.UTC()
			t.CompletedAt = &c
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}
