package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// exportColumns is the header of both export formats, mirroring the report
// grid.
var exportColumns = []string{
	"Company", "Contract No", "Root Cause", "Status", "Resolution",
	"Occurred", "Completed", "Technician", "SLA Hours",
}

const displayTimeFormat = "2006-01-02 15:04"

func exportRow(r Row, loc *time.Location) []string {
	completed := ""
	if r.CompletedAt != nil {
		completed = r.CompletedAt.In(loc).Format(displayTimeFormat)
	}
	occurred := ""
	if !r.OccurredAt.IsZero() {
		occurred = r.OccurredAt.In(loc).Format(displayTimeFormat)
	}
	sla := ""
	if r.SLAHours != nil {
		sla = strconv.FormatFloat(*r.SLAHours, 'f', 2, 64)
	}
	return []string{
		r.Company, r.ContractNo, r.RootCause, string(r.Status), r.Resolution,
		occurred, completed, r.Technician, sla,
	}
}

// WriteCSV writes the report as CSV with a UTF-8 BOM so Excel opens the
// Vietnamese text correctly. Timestamps are rendered in loc.
func WriteCSV(w io.Writer, rep *Report, loc *time.Location) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rep.Rows {
		if err := cw.Write(exportRow(r, loc)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteExcel writes the report as a single-sheet .xlsx workbook.
func WriteExcel(w io.Writer, rep *Report, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	writeRow := func(rowNum int, cells []string) error {
		for col, v := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, exportColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range rep.Rows {
		if err := writeRow(i+2, exportRow(r, loc)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
