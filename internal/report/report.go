// Package report builds the filtered ticket report: the second screen of the
// helpdesk tool. All filtering happens in memory over the full row set; the
// store is a spreadsheet, not a query engine.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/vndesk/helpdesk/internal/core/domain"
)

// Filter selects tickets for the report. From/To bound the occurrence time
// as [From, To); zero bounds are open. Company and Technician are
// case-insensitive substring matches.
type Filter struct {
	From       time.Time
	To         time.Time
	Company    string
	Technician string
}

// Row is one report line: the ticket plus its derived SLA hours.
type Row struct {
	*domain.Ticket
	SLAHours *float64 `json:"sla_hours,omitempty"`
}

// Summary aggregates the report.
type Summary struct {
	Total   int `json:"total"`
	WithSLA int `json:"with_sla"`
}

// Report is the filtered, sorted ticket set.
type Report struct {
	Rows    []Row   `json:"tickets"`
	Summary Summary `json:"summary"`
}

// Build filters and sorts tickets (occurrence time descending) and computes
// per-row SLA hours.
func Build(tickets []*domain.Ticket, f Filter) *Report {
	rep := &Report{Rows: []Row{}}
	for _, t := range tickets {
		if !f.matches(t) {
			continue
		}
		sla := t.SLAHours()
		rep.Rows = append(rep.Rows, Row{Ticket: t, SLAHours: sla})
		rep.Summary.Total++
		if sla != nil {
			rep.Summary.WithSLA++
		}
	}
	sort.SliceStable(rep.Rows, func(i, j int) bool {
		return rep.Rows[i].OccurredAt.After(rep.Rows[j].OccurredAt)
	})
	return rep
}

func (f Filter) matches(t *domain.Ticket) bool {
	if !f.From.IsZero() || !f.To.IsZero() {
		// Rows without an occurrence time can't be placed in the range.
		if t.OccurredAt.IsZero() {
			return false
		}
	}
	if !f.From.IsZero() && t.OccurredAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.OccurredAt.Before(f.To) {
		return false
	}
	if f.Company != "" && !containsFold(t.Company, f.Company) {
		return false
	}
	if f.Technician != "" && !containsFold(t.Technician, f.Technician) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}
