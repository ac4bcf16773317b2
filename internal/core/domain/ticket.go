package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Ticket represents a single helpdesk ticket row.
type Ticket struct {
	ID          string     `json:"id"`
	Company     string     `json:"company"`
	ContractNo  string     `json:"contract_no"`
	RootCause   string     `json:"root_cause"`
	Status      Status     `json:"status"`
	Resolution  string     `json:"resolution"`
	OccurredAt  time.Time  `json:"occurred_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Technician  string     `json:"technician"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Status is the ticket workflow state.
type Status string

const (
	StatusNew             Status = "new"
	StatusInProgress      Status = "in_progress"
	StatusWaitingCustomer Status = "waiting_customer"
	StatusDone            Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusWaitingCustomer, StatusDone:
		return true
	}
	return false
}

// ValidationError lists the fields a ticket is missing or has wrong.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Normalize trims free-text fields and truncates timestamps to the minute.
// The store keeps minute precision only, matching what technicians enter.
func (t *Ticket) Normalize() {
	t.Company = strings.TrimSpace(t.Company)
	t.ContractNo = strings.TrimSpace(t.ContractNo)
	t.RootCause = strings.TrimSpace(t.RootCause)
	t.Resolution = strings.TrimSpace(t.Resolution)
	t.Technician = strings.TrimSpace(t.Technician)
	if !t.OccurredAt.IsZero() {
		t.OccurredAt = t.OccurredAt.UTC().Truncate(time.Minute)
	}
	if t.CompletedAt != nil {
		c := t.CompletedAt.UTC().Truncate(time.Minute)
		t.CompletedAt = &c
	}
	if !t.CreatedAt.IsZero() {
		t.CreatedAt = t.CreatedAt.UTC().Truncate(time.Minute)
	}
}

// Validate checks required fields. A completion time is required when the
// ticket is marked done, and must not precede the occurrence time.
func (t *Ticket) Validate() error {
	var missing []string
	if t.Company == "" {
		missing = append(missing, "company")
	}
	if t.ContractNo == "" {
		missing = append(missing, "contract_no")
	}
	if t.RootCause == "" {
		missing = append(missing, "root_cause")
	}
	if !t.Status.Valid() {
		missing = append(missing, "status")
	}
	if t.Resolution == "" {
		missing = append(missing, "resolution")
	}
	if t.OccurredAt.IsZero() {
		missing = append(missing, "occurred_at")
	}
	if t.Status == StatusDone && t.CompletedAt == nil {
		missing = append(missing, "completed_at")
	}
	if t.CompletedAt != nil && !t.OccurredAt.IsZero() && t.CompletedAt.Before(t.OccurredAt) {
		missing = append(missing, "completed_at")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// SLAHours returns the elapsed hours between occurrence and completion,
// rounded to two decimals. Nil for tickets without a completion time.
func (t *Ticket) SLAHours() *float64 {
	if t.CompletedAt == nil || t.OccurredAt.IsZero() {
		return nil
	}
	h := t.CompletedAt.Sub(t.OccurredAt).Hours()
	h = math.Round(h*100) / 100
	return &h
}
