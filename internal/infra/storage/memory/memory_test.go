package memory

import (
	"context"
	"testing"
	"time"

	"github.com/vndesk/helpdesk/internal/core/domain"
)

func TestTicketRepo_AppendAndList(t *testing.T) {
	store := NewMemoryStorage()
	repo := store.Tickets()
	ctx := context.Background()

	tk := &domain.Ticket{
		ID:         "t-1",
		Company:    "ACME Corp",
		ContractNo: "HD-1042",
		Status:     domain.StatusNew,
		OccurredAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if err := repo.Append(ctx, tk); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Mutating the original must not leak into stored state.
	tk.Company = "changed"

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List returned %d tickets, want 1", len(got))
	}
	if got[0].Company != "ACME Corp" {
		t.Errorf("Company = %q, want ACME Corp", got[0].Company)
	}
}

func TestErrorLogRepo_TailNewestFirst(t *testing.T) {
	store := NewMemoryStorage()
	repo := store.ErrorLog()
	ctx := context.Background()

	for _, op := range []string{"append_ticket", "read_tickets", "export"} {
		if err := repo.Append(ctx, &domain.ErrorEntry{
			Time:      time.Now().UTC(),
			Operation: op,
			Message:   "remote store unavailable",
		}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := repo.Tail(ctx, 2)
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Tail returned %d entries, want 2", len(got))
	}
	if got[0].Operation != "export" || got[1].Operation != "read_tickets" {
		t.Errorf("Tail order = [%s, %s], want newest first", got[0].Operation, got[1].Operation)
	}

	all, err := repo.Tail(ctx, 0)
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Tail(0) returned %d entries, want all 3", len(all))
	}
}
