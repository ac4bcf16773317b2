package sheets

import (
	"context"
	"fmt"

	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/vndesk/helpdesk/internal/core/domain"
	"github.com/vndesk/helpdesk/internal/infra/storage"
	"github.com/vndesk/helpdesk/internal/metrics"
)

// Tickets returns the ticket repository.
func (s *Store) Tickets() storage.TicketRepository { return &TicketRepo{store: s} }

// ErrorLog returns the error log repository.
func (s *Store) ErrorLog() storage.ErrorLogRepository { return &ErrorLogRepo{store: s} }

// call runs fn under the retry policy, counting attempts and retried calls.
// The retry package itself stays observability-free, so attempts are counted
// here at the call site.
func (s *Store) call(ctx context.Context, operation string, fn func() error) error {
	attempts := 0
	err := s.policy.Do(ctx, func() error {
		attempts++
		if err := fn(); err != nil {
			metrics.RemoteCallAttempts.WithLabelValues(operation, "failure").Inc()
			return err
		}
		metrics.RemoteCallAttempts.WithLabelValues(operation, "success").Inc()
		return nil
	})
	if attempts > 1 {
		metrics.RemoteCallRetries.WithLabelValues(operation).Inc()
	}
	return err
}

// -----------------------------------------------------------------------------
// Ticket Repository
// -----------------------------------------------------------------------------

type TicketRepo struct {
	store *Store
}

// Append appends one ticket row to the worksheet.
func (r *TicketRepo) Append(ctx context.Context, ticket *domain.Ticket) error {
	s := r.store
	vr := &sheetsv4.ValueRange{Values: [][]any{encodeTicket(ticket)}}
	return s.call(ctx, "append_ticket", func() error {
		_, err := s.svc.Spreadsheets.Values.
			Append(s.cfg.SpreadsheetID, s.cfg.Worksheet, vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return err
	})
}

// List reads every row below the header and decodes it.
func (r *TicketRepo) List(ctx context.Context) ([]*domain.Ticket, error) {
	s := r.store
	var resp *sheetsv4.ValueRange
	err := s.call(ctx, "read_tickets", func() error {
		var err error
		resp, err = s.svc.Spreadsheets.Values.
			Get(s.cfg.SpreadsheetID, s.cfg.Worksheet).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Values) < 2 {
		return nil, nil
	}

	tickets := make([]*domain.Ticket, 0, len(resp.Values)-1)
	for i, row := range resp.Values[1:] {
		t, err := decodeTicket(row, i+2)
		if err != nil {
			return nil, fmt.Errorf("worksheet %s: %w", s.cfg.Worksheet, err)
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// -----------------------------------------------------------------------------
// Error Log Repository
// -----------------------------------------------------------------------------

type ErrorLogRepo struct {
	store *Store
}

// Append appends one error entry. Unlike ticket appends this runs a single
// attempt: the error log is best-effort and must not spend the retry budget
// while a user waits on an already-failed request.
func (r *ErrorLogRepo) Append(ctx context.Context, entry *domain.ErrorEntry) error {
	s := r.store
	vr := &sheetsv4.ValueRange{Values: [][]any{encodeErrorEntry(entry)}}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.cfg.SpreadsheetID, s.cfg.ErrorWorksheet, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return err
}

// Tail retrieves the most recent entries, newest first.
func (r *ErrorLogRepo) Tail(ctx context.Context, limit int) ([]*domain.ErrorEntry, error) {
	s := r.store
	var resp *sheetsv4.ValueRange
	err := s.call(ctx, "read_error_log", func() error {
		var err error
		resp, err = s.svc.Spreadsheets.Values.
			Get(s.cfg.SpreadsheetID, s.cfg.ErrorWorksheet).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Values) < 2 {
		return nil, nil
	}

	rows := resp.Values[1:]
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	entries := make([]*domain.ErrorEntry, 0, limit)
	for i := len(rows) - 1; i >= len(rows)-limit; i-- {
		entries = append(entries, decodeErrorEntry(rows[i]))
	}
	return entries, nil
}
