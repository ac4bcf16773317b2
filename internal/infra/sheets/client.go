// Package sheets backs the ticket store with a shared Google Sheets
// spreadsheet, the store the helpdesk team already works in. Every API call
// goes through the retry policy: the Sheets API rate-limits aggressively and
// a single 429 should not bounce a technician's submission.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/vndesk/helpdesk/internal/retry"
)

// Config holds Google Sheets backend configuration.
type Config struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	Worksheet       string `yaml:"worksheet"`
	ErrorWorksheet  string `yaml:"error_worksheet"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Store is the Sheets-backed ticket store.
type Store struct {
	svc    *sheetsv4.Service
	cfg    Config
	policy retry.Policy
}

// NewStore connects to the spreadsheet with service-account credentials and
// makes sure both worksheets exist with the expected header row.
func NewStore(ctx context.Context, cfg Config, policy retry.Policy) (*Store, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if cfg.Worksheet == "" {
		cfg.Worksheet = "Tickets"
	}
	if cfg.ErrorWorksheet == "" {
		cfg.ErrorWorksheet = "ErrorLog"
	}

	opts := []option.ClientOption{option.WithScopes(sheetsv4.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	s := &Store{svc: svc, cfg: cfg, policy: policy}
	if err := s.ensureWorksheet(ctx, cfg.Worksheet, TicketColumns); err != nil {
		return nil, err
	}
	if err := s.ensureWorksheet(ctx, cfg.ErrorWorksheet, ErrorLogColumns); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureWorksheet creates the worksheet if absent and rewrites the header row
// when it drifted (someone renaming columns by hand breaks the row codec).
func (s *Store) ensureWorksheet(ctx context.Context, title string, header []string) error {
	meta, err := retry.DoValue(ctx, s.policy, func() (*sheetsv4.Spreadsheet, error) {
		return s.svc.Spreadsheets.Get(s.cfg.SpreadsheetID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}

	exists := false
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			exists = true
			break
		}
	}
	if !exists {
		req := &sheetsv4.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsv4.Request{{
				AddSheet: &sheetsv4.AddSheetRequest{
					Properties: &sheetsv4.SheetProperties{Title: title},
				},
			}},
		}
		err := s.policy.Do(ctx, func() error {
			_, err := s.svc.Spreadsheets.BatchUpdate(s.cfg.SpreadsheetID, req).Context(ctx).Do()
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to add worksheet %s: %w", title, err)
		}
	}

	resp, err := retry.DoValue(ctx, s.policy, func() (*sheetsv4.ValueRange, error) {
		return s.svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, title+"!1:1").Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", title, err)
	}

	if headerMatches(resp, header) {
		return nil
	}

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	err = s.policy.Do(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.
			Update(s.cfg.SpreadsheetID, title+"!A1", &sheetsv4.ValueRange{Values: [][]any{row}}).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write header of %s: %w", title, err)
	}
	return nil
}

func headerMatches(resp *sheetsv4.ValueRange, header []string) bool {
	if resp == nil || len(resp.Values) == 0 || len(resp.Values[0]) != len(header) {
		return false
	}
	for i, h := range header {
		if fmt.Sprint(resp.Values[0][i]) != h {
			return false
		}
	}
	return true
}

// Health checks that the spreadsheet is reachable. Health probes run often,
// so this is a single attempt without the retry budget.
func (s *Store) Health(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.Get(s.cfg.SpreadsheetID).
		Fields("spreadsheetId").
		Context(ctx).Do()
	return err
}

// Close is a no-op; the sheets service holds no owned connections.
func (s *Store) Close() error { return nil }
