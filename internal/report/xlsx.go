package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"condish/internal/inspection"
)

// Sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetFindings   = "Findings"
	SheetIgnored    = "Ignored"
	SheetDeductions = "Deductions"
)

// Workbook builds the settlement workbook for v. The caller closes the file.
func Workbook(v inspection.View, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetFindings, SheetIgnored, SheetDeductions} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E0E0"}},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	w := &sheetWriter{f: f, header: header}
	w.summary(v, generatedAt)
	w.findings(v.Findings)
	w.ignored(v.Ignored)
	w.deductions(v.Settlement, v.Deposit)
	if w.err != nil {
		_ = f.Close()
		return nil, w.err
	}
	return f, nil
}

// WriteWorkbook streams the workbook for v to out.
func WriteWorkbook(out io.Writer, v inspection.View, generatedAt time.Time) error {
	f, err := Workbook(v, generatedAt)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error so the sheet builders stay linear.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
}

func (w *sheetWriter) headerRow(sheet string, columns ...any) {
	w.row(sheet, 1, columns...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		w.err = err
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := w.f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		w.err = err
	}
}

func (w *sheetWriter) summary(v inspection.View, generatedAt time.Time) {
	w.headerRow(SheetSummary, "Field", "Value")
	rows := [][2]any{
		{"Session", v.SessionID},
		{"Mode", string(v.Mode)},
		{"Generated", generatedAt.UTC().Format(time.RFC3339)},
		{"Rooms", len(v.Rooms)},
		{"Rooms inspected", len(v.Inspected)},
		{"Progress %", v.Progress},
		{"Active findings", len(v.Findings)},
		{"Ignored findings", len(v.Ignored)},
	}
	currency := ""
	if v.Deposit != nil {
		currency = v.Deposit.Currency
		rows = append(rows,
			[2]any{"Deposit", v.Deposit.Amount},
			[2]any{"Deposit currency", v.Deposit.Currency},
			[2]any{"Deposit source", string(v.Deposit.Source)},
		)
	}
	if v.Quote != nil {
		rows = append(rows, [2]any{"Repair estimate", v.Quote.GrandTotal})
	}
	rows = append(rows, [2]any{"Settlement", KindLabel(v.Settlement)})
	if s := v.Settlement; s != nil && s.HasNumbers() {
		if s.Currency != "" {
			currency = s.Currency
		}
		rows = append(rows,
			[2]any{"Total deductions", s.TotalDeductions},
			[2]any{"Deposit return", s.DepositReturn},
			[2]any{"Settlement currency", currency},
			[2]any{"Settlement summary", s.Summary},
		)
		if s.LandlordNotes != "" {
			rows = append(rows, [2]any{"Landlord notes", s.LandlordNotes})
		}
	}
	for i, r := range rows {
		w.row(SheetSummary, i+2, r[0], r[1])
	}
}

func (w *sheetWriter) findings(findings []inspection.Finding) {
	w.headerRow(SheetFindings, "Room", "Type", "Location", "Severity", "Description", "Captured")
	for i, f := range findings {
		w.row(SheetFindings, i+2, f.RoomName, f.Type, f.Location, string(f.Severity), f.Description, formatTime(f.CapturedAt))
	}
}

func (w *sheetWriter) ignored(entries []inspection.IgnoredFinding) {
	w.headerRow(SheetIgnored, "Room", "Type", "Location", "Severity", "Reason", "Ignored")
	for i, e := range entries {
		w.row(SheetIgnored, i+2, e.RoomName, e.Type, e.Location, string(e.Severity), e.Reason, formatTime(e.IgnoredAt))
	}
}

func (w *sheetWriter) deductions(s *inspection.Settlement, deposit *inspection.Deposit) {
	w.headerRow(SheetDeductions, "Item", "Severity", "Amount", "Justification", "Beyond normal wear")
	if s == nil || !s.HasNumbers() {
		w.row(SheetDeductions, 2, "Settlement "+KindLabel(s))
		return
	}
	for i, d := range s.LineItems {
		w.row(SheetDeductions, i+2, d.Item, string(d.Severity), d.Amount, d.Justification, d.BeyondNormalWear)
	}
	next := len(s.LineItems) + 3
	w.row(SheetDeductions, next, "Total deductions", "", s.TotalDeductions)
	original := s.OriginalDeposit
	if original == 0 && deposit != nil {
		original = deposit.Amount
	}
	w.row(SheetDeductions, next+1, "Original deposit", "", original)
	w.row(SheetDeductions, next+2, "Deposit return", "", s.DepositReturn)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
