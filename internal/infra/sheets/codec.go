package sheets

import (
	"fmt"
	"time"

	"github.com/vndesk/helpdesk/internal/core/domain"
)

// TicketColumns is the fixed header of the ticket worksheet. Column order is
// load-bearing: existing rows in the shared sheet follow it.
var TicketColumns = []string{
	"ID", "Company", "Contract No", "Root Cause", "Status", "Resolution",
	"Occurred At (UTC ISO)", "Completed At (UTC ISO)", "Technician", "Created At (UTC ISO)",
}

// ErrorLogColumns is the fixed header of the error log worksheet.
var ErrorLogColumns = []string{"Time (UTC ISO)", "Operation", "Message"}

func encodeTicket(t *domain.Ticket) []any {
	completed := ""
	if t.CompletedAt != nil {
		completed = t.CompletedAt.UTC().Format(time.RFC3339)
	}
	return []any{
		t.ID,
		t.Company,
		t.ContractNo,
		t.RootCause,
		string(t.Status),
		t.Resolution,
		t.OccurredAt.UTC().Format(time.RFC3339),
		completed,
		t.Technician,
		t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// decodeTicket converts one sheet row back into a ticket. rowNum is the
// 1-based sheet row, used in error messages so a bad cell is findable. Rows
// shorter than the header are padded with empty cells; manual edits in the
// sheet commonly drop trailing blanks.
func decodeTicket(row []any, rowNum int) (*domain.Ticket, error) {
	cells := make([]string, len(TicketColumns))
	for i := range cells {
		if i < len(row) {
			cells[i] = fmt.Sprint(row[i])
		}
	}

	occurred, err := parseTime(cells[6])
	if err != nil {
		return nil, fmt.Errorf("row %d: bad occurred-at %q: %w", rowNum, cells[6], err)
	}
	created, err := parseTime(cells[9])
	if err != nil {
		return nil, fmt.Errorf("row %d: bad created-at %q: %w", rowNum, cells[9], err)
	}

	t := &domain.Ticket{
		ID:         cells[0],
		Company:    cells[1],
		ContractNo: cells[2],
		RootCause:  cells[3],
		Status:     domain.Status(cells[4]),
		Resolution: cells[5],
		OccurredAt: occurred,
		Technician: cells[8],
		CreatedAt:  created,
	}
	if cells[7] != "" {
		completed, err := parseTime(cells[7])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad completed-at %q: %w", rowNum, cells[7], err)
		}
		t.CompletedAt = &completed
	}
	return t, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

func encodeErrorEntry(e *domain.ErrorEntry) []any {
	return []any{
		e.Time.UTC().Format(time.RFC3339),
		e.Operation,
		e.Message,
	}
}

func decodeErrorEntry(row []any) *domain.ErrorEntry {
	cells := make([]string, len(ErrorLogColumns))
	for i := range cells {
		if i < len(row) {
			cells[i] = fmt.Sprint(row[i])
		}
	}
	ts, err := parseTime(cells[0])
	if err != nil {
		ts = time.Time{} // keep the entry, a garbled timestamp is still worth showing
	}
	return &domain.ErrorEntry{
		Time:      ts,
		Operation: cells[1],
		Message:   cells[2],
	}
}
