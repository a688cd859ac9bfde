// Package export writes the derived aggregates to an XLSX workbook.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/rdtrends/rdtrends/internal/model"
	"github.com/rdtrends/rdtrends/internal/report"
)

// DefaultFile is the workbook name written next to the charts.
const DefaultFile = "rd_expenditure_summary.xlsx"

// Sheet names, in workbook order.
const (
	SheetAverages = "Sector Averages"
	SheetTotals   = "Sector Totals"
	SheetTop      = "Top Sub-sectors"
	SheetGrowth   = "Growth"
)

// WriteWorkbook writes one sheet per aggregate of s to path.
func WriteWorkbook(path string, s *report.Summary) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetAverages); err != nil {
		return fmt.Errorf("renaming first sheet: %w", err)
	}
	for _, name := range []string{SheetTotals, SheetTop, SheetGrowth} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	w := &sheetWriter{f: f, header: bold}

	w.table(SheetAverages, []any{"Sector", "Average (Rs Crore)"}, averageRows(s))
	w.table(SheetTotals, []any{"Sector", "Total (Rs Crore)", "Share (%)"}, totalRows(s))
	w.table(SheetTop, topHeader(), topRows(s))
	w.table(SheetGrowth, []any{"Period", "From", "To", "Growth (%)"}, growthRows(s))
	w.rows(SheetGrowth, len(s.Growth)+3, [][]any{
		{"Aggregate source", string(s.Aggregate.Source)},
		{"Aggregate row", s.Aggregate.Label},
	})
	if w.err != nil {
		return w.err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error of a sequence of writes.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) table(sheet string, header []any, body [][]any) {
	if w.err != nil {
		return
	}
	w.rows(sheet, 1, [][]any{header})
	if w.err != nil {
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		w.err = fmt.Errorf("styling %q header: %w", sheet, err)
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := w.f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		w.err = fmt.Errorf("sizing %q columns: %w", sheet, err)
		return
	}
	w.rows(sheet, 2, body)
}

func (w *sheetWriter) rows(sheet string, start int, body [][]any) {
	for i, row := range body {
		if w.err != nil {
			return
		}
		cell, _ := excelize.CoordinatesToCellName(1, start+i)
		if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
			w.err = fmt.Errorf("writing %q row %d: %w", sheet, start+i, err)
		}
	}
}

func averageRows(s *report.Summary) [][]any {
	out := make([][]any, 0, len(s.Averages))
	for _, a := range s.Averages {
		out = append(out, []any{a.Sector, number(a.Value, 2)})
	}
	return out
}

func totalRows(s *report.Summary) [][]any {
	out := make([][]any, 0, len(s.Totals))
	for i, t := range s.Totals {
		out = append(out, []any{t.Sector, number(t.Value, 2), number(s.Shares[i], 2)})
	}
	return out
}

func topHeader() []any {
	h := []any{"Rank", "Sector", "Sub-sector"}
	for _, y := range model.Years {
		h = append(h, y)
	}
	return h
}

func topRows(s *report.Summary) [][]any {
	out := make([][]any, 0, len(s.Top))
	for i, r := range s.Top {
		row := []any{i + 1, r.Sector, r.SubSector}
		for _, v := range r.Values {
			if v.Valid {
				row = append(row, number(v.Decimal, 2))
			} else {
				row = append(row, nil)
			}
		}
		out = append(out, row)
	}
	return out
}

func growthRows(s *report.Summary) [][]any {
	out := make([][]any, 0, len(s.Growth))
	for _, g := range s.Growth {
		out = append(out, []any{g.Period(), g.From, g.To, number(g.Rate, 2)})
	}
	return out
}

func number(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}
