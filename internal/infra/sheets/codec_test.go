package sheets

import (
	"strings"
	"testing"
	"time"

	"github.com/vndesk/helpdesk/internal/core/domain"
)

func TestDecodeTicket_ShortRowPadded(t *testing.T) {
	// Trailing blank cells get dropped by the API; a row ending at the
	// occurred-at column must still decode.
	row := []any{
		"t-1", "ACME Corp", "HD-1042", "VPN down", "in_progress", "restarted tunnel",
		"2026-03-10T09:00:00Z",
	}
	tk, err := decodeTicket(row, 2)
	if err != nil {
		t.Fatalf("decodeTicket failed: %v", err)
	}
	if tk.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", tk.CompletedAt)
	}
	if tk.Technician != "" {
		t.Errorf("Technician = %q, want empty", tk.Technician)
	}
	if want := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC); !tk.OccurredAt.Equal(want) {
		t.Errorf("OccurredAt = %v, want %v", tk.OccurredAt, want)
	}
}

func TestDecodeTicket_BadTimestampNamesRow(t *testing.T) {
	row := []any{
		"t-1", "ACME Corp", "HD-1042", "VPN down", "done", "restarted tunnel",
		"10/03/2026 09:00", "", "nam.tran", "2026-03-10T09:05:00Z",
	}
	_, err := decodeTicket(row, 7)
	if err == nil {
		t.Fatal("decodeTicket should fail on a non-ISO timestamp")
	}
	if !strings.Contains(err.Error(), "row 7") {
		t.Errorf("error %q should name the sheet row", err)
	}
}

func TestEncodeTicket_RoundTrip(t *testing.T) {
	completed := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	in := &domain.Ticket{
		ID:          "b5c7a8e2-0000-4000-8000-000000000001",
		Company:     "ACME Corp",
		ContractNo:  "HD-1042",
		RootCause:   "VPN tunnel down",
		Status:      domain.StatusDone,
		Resolution:  "Restarted IPSec service",
		OccurredAt:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		CompletedAt: &completed,
		Technician:  "nam.tran",
		CreatedAt:   time.Date(2026, 3, 10, 14, 31, 0, 0, time.UTC),
	}

	encoded := encodeTicket(in)
	if len(encoded) != len(TicketColumns) {
		t.Fatalf("encoded row has %d cells, header has %d", len(encoded), len(TicketColumns))
	}

	out, err := decodeTicket(encoded, 2)
	if err != nil {
		t.Fatalf("decodeTicket failed: %v", err)
	}
	if out.ID != in.ID || out.Company != in.Company || out.Status != in.Status {
		t.Errorf("round trip mismatch: got %+v", out)
	}
	if out.CompletedAt == nil || !out.CompletedAt.Equal(completed) {
		t.Errorf("CompletedAt = %v, want %v", out.CompletedAt, completed)
	}
}
