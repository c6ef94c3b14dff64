// =============================================================================
// Expensight - Report Exporter
// =============================================================================
//
// Assembles the cleaned table, the aggregate set, and the chart images into
// one XLSX workbook with a fixed sheet set, in this exact order:
//
//   Summary, Category Totals, Category Averages, Payment Modes,
//   Monthly Totals, Top 5 Items, Above 5000, Sorted Expenses, Charts
//
// The workbook is written to a temp file in the destination directory and
// renamed into place on success, so a pre-existing report is never left
// half-written. All failures surface as *ExportError.
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/expensight/expensight/internal/analyze"
	"github.com/expensight/expensight/internal/chart"
	"github.com/expensight/expensight/internal/model"
	"github.com/expensight/expensight/pkg/fileutil"
	"github.com/xuri/excelize/v2"
)

// SheetOrder lists the workbook sheets in their fixed order.
var SheetOrder = []string{
	"Summary",
	"Category Totals",
	"Category Averages",
	"Payment Modes",
	"Monthly Totals",
	"Top 5 Items",
	"Above 5000",
	"Sorted Expenses",
	"Charts",
}

// chartRowStride is the vertical spacing between embedded chart images on
// the Charts sheet, in rows.
const chartRowStride = 27

// ExportError is a fatal export failure: the output path is not writable or
// the workbook could not be serialized. The pre-existing report, if any, is
// left untouched.
type ExportError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("export %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("export %s: %s", e.Path, e.Reason)
}

func (e *ExportError) Unwrap() error { return e.Err }

// =============================================================================
// EXPORT
// =============================================================================

// Export writes the nine-sheet report workbook to path atomically.
func Export(path string, table []model.ExpenseRecord, aggs analyze.AggregateSet, charts chart.Set) error {
	f, err := build(table, aggs, charts)
	if err != nil {
		return &ExportError{Path: path, Reason: "building workbook", Err: err}
	}
	defer f.Close()

	err = fileutil.ReplaceFile(path, func(tmp string) error {
		return f.SaveAs(tmp)
	})
	if err != nil {
		return &ExportError{Path: path, Reason: "writing workbook", Err: err}
	}
	return nil
}

// build assembles the in-memory workbook with every sheet populated.
func build(table []model.ExpenseRecord, aggs analyze.AggregateSet, charts chart.Set) (*excelize.File, error) {
	f := excelize.NewFile()

	// The default sheet becomes Summary; the rest are created in order.
	if err := f.SetSheetName("Sheet1", SheetOrder[0]); err != nil {
		return nil, err
	}
	for _, name := range SheetOrder[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2C3E50"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := writeSummary(f, headerStyle, aggs); err != nil {
		return nil, err
	}
	if err := writePairs(f, headerStyle, "Category Totals", "Category", "Total Amount", aggs.CategoryTotals); err != nil {
		return nil, err
	}
	if err := writePairs(f, headerStyle, "Category Averages", "Category", "Avg Amount", aggs.CategoryAverages); err != nil {
		return nil, err
	}
	if err := writeModeCounts(f, headerStyle, aggs.PaymentModeCounts); err != nil {
		return nil, err
	}
	if err := writeMonthly(f, headerStyle, aggs.MonthlyTotals); err != nil {
		return nil, err
	}
	if err := writeRecords(f, headerStyle, "Top 5 Items", aggs.Top5Items); err != nil {
		return nil, err
	}
	if err := writeRecords(f, headerStyle, "Above 5000", aggs.Above5000); err != nil {
		return nil, err
	}
	if err := writeRecords(f, headerStyle, "Sorted Expenses", aggs.SortedExpenses); err != nil {
		return nil, err
	}
	if err := writeCharts(f, charts); err != nil {
		return nil, err
	}

	return f, nil
}

// =============================================================================
// SHEET WRITERS
// =============================================================================

// writeHeader writes one styled header row.
func writeHeader(f *excelize.File, style int, sheet string, cols []string) error {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeSummary(f *excelize.File, style int, aggs analyze.AggregateSet) error {
	if err := writeHeader(f, style, "Summary", []string{"Average Expense", "Max Expense", "Min Expense"}); err != nil {
		return err
	}
	// An empty table exports header-only sheets across the board.
	if aggs.Count == 0 {
		return nil
	}
	return setRow(f, "Summary", 2, []interface{}{
		aggs.Average.InexactFloat64(),
		aggs.Max.InexactFloat64(),
		aggs.Min.InexactFloat64(),
	})
}

func writePairs(f *excelize.File, style int, sheet, keyCol, valueCol string, pairs []analyze.CategoryAmount) error {
	if err := writeHeader(f, style, sheet, []string{keyCol, valueCol}); err != nil {
		return err
	}
	for i, p := range pairs {
		if err := setRow(f, sheet, i+2, []interface{}{p.Category, p.Amount.InexactFloat64()}); err != nil {
			return err
		}
	}
	return nil
}

func writeModeCounts(f *excelize.File, style int, counts []analyze.ModeCount) error {
	if err := writeHeader(f, style, "Payment Modes", []string{"Payment Mode", "Count"}); err != nil {
		return err
	}
	for i, mc := range counts {
		if err := setRow(f, "Payment Modes", i+2, []interface{}{mc.Mode, mc.Count}); err != nil {
			return err
		}
	}
	return nil
}

func writeMonthly(f *excelize.File, style int, totals []analyze.MonthTotal) error {
	if err := writeHeader(f, style, "Monthly Totals", []string{"Month", "Total Amount"}); err != nil {
		return err
	}
	for i, mt := range totals {
		if err := setRow(f, "Monthly Totals", i+2, []interface{}{mt.Key(), mt.Total.InexactFloat64()}); err != nil {
			return err
		}
	}
	return nil
}

func writeRecords(f *excelize.File, style int, sheet string, records []model.ExpenseRecord) error {
	if err := writeHeader(f, style, sheet, model.Headers); err != nil {
		return err
	}
	for i, rec := range records {
		row := []interface{}{
			rec.Date.Format(model.DateLayout),
			rec.Category,
			rec.Item,
			rec.PaymentMode,
			rec.Amount.InexactFloat64(),
			rec.Notes,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// writeCharts embeds the four chart images, one per slot, with a title cell
// above each. Placeholder images are labelled "No data".
func writeCharts(f *excelize.File, charts chart.Set) error {
	for i, img := range charts.All() {
		base := i*chartRowStride + 1

		titleCell, err := excelize.CoordinatesToCellName(1, base)
		if err != nil {
			return err
		}
		title := img.Title
		if img.Placeholder {
			title += " (No data)"
		}
		if err := f.SetCellValue("Charts", titleCell, title); err != nil {
			return err
		}

		if len(img.PNG) == 0 {
			continue
		}
		anchorCell, err := excelize.CoordinatesToCellName(1, base+1)
		if err != nil {
			return err
		}
		err = f.AddPictureFromBytes("Charts", anchorCell, &excelize.Picture{
			Extension: ".png",
			File:      img.PNG,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
