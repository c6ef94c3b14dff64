package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/expensight/expensight/internal/analyze"
	"github.com/expensight/expensight/internal/chart"
	"github.com/expensight/expensight/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() []model.ExpenseRecord {
	return []model.ExpenseRecord{
		{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Category: "Groceries", Item: "Milk", PaymentMode: "Cash", Amount: decimal.NewFromInt(100), Notes: "weekly"},
		{Date: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), Category: "Transport", Item: "Bus", PaymentMode: "UPI", Amount: decimal.NewFromInt(50)},
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Category: "Groceries", Item: "Bread", PaymentMode: "Card", Amount: decimal.NewFromInt(60)},
	}
}

func export(t *testing.T, table []model.ExpenseRecord) string {
	t.Helper()
	aggs := analyze.Aggregate(table)
	charts, err := chart.Render(aggs)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, Export(path, table, aggs, charts))
	return path
}

func TestExportSheetOrder(t *testing.T) {
	path := export(t, sampleTable())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetOrder, f.GetSheetList())
}

func TestExportSheetContents(t *testing.T) {
	path := export(t, sampleTable())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"Average Expense", "Max Expense", "Min Expense"}, summary[0])
	assert.Equal(t, "70", summary[1][0])
	assert.Equal(t, "100", summary[1][1])
	assert.Equal(t, "50", summary[1][2])

	totals, err := f.GetRows("Category Totals")
	require.NoError(t, err)
	require.Len(t, totals, 3)
	assert.Equal(t, []string{"Category", "Total Amount"}, totals[0])
	assert.Equal(t, []string{"Groceries", "160"}, totals[1])
	assert.Equal(t, []string{"Transport", "50"}, totals[2])

	monthly, err := f.GetRows("Monthly Totals")
	require.NoError(t, err)
	require.Len(t, monthly, 3)
	assert.Equal(t, []string{"2024-01", "150"}, monthly[1])
	assert.Equal(t, []string{"2024-02", "60"}, monthly[2])

	sorted, err := f.GetRows("Sorted Expenses")
	require.NoError(t, err)
	require.Len(t, sorted, 4)
	assert.Equal(t, model.Headers, sorted[0])
	assert.Equal(t, "Milk", sorted[1][2], "highest amount first")

	modes, err := f.GetRows("Payment Modes")
	require.NoError(t, err)
	require.Len(t, modes, 4)
	assert.Equal(t, []string{"Payment Mode", "Count"}, modes[0])
}

func TestExportChartsEmbedded(t *testing.T) {
	path := export(t, sampleTable())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Charts", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Expenses by Category", title)

	pics, err := f.GetPictures("Charts", "A2")
	require.NoError(t, err)
	assert.NotEmpty(t, pics, "first chart image anchored at A2")
}

func TestExportEmptyTable(t *testing.T) {
	path := export(t, nil)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetOrder, f.GetSheetList())

	// Every data sheet is header-only.
	for _, sheet := range SheetOrder[:len(SheetOrder)-1] {
		rows, err := f.GetRows(sheet)
		require.NoError(t, err)
		assert.Len(t, rows, 1, sheet)
	}

	// Chart slots carry the no-data marker.
	title, err := f.GetCellValue("Charts", "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "No data")
}

func TestExportOverwritesAtomically(t *testing.T) {
	table := sampleTable()
	aggs := analyze.Aggregate(table)
	charts, err := chart.Render(aggs)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")

	require.NoError(t, Export(path, table, aggs, charts))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, Export(path, table, aggs, charts))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, second)
	assert.NotEmpty(t, first)

	// No temp droppings left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "report.xlsx", entries[0].Name())
}

func TestExportFailureLeavesExistingReport(t *testing.T) {
	table := sampleTable()
	aggs := analyze.Aggregate(table)
	charts, err := chart.Render(aggs)
	require.NoError(t, err)

	// The destination's parent is a file, so the export cannot write there.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err = Export(filepath.Join(blocker, "report.xlsx"), table, aggs, charts)
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)

	data, readErr := os.ReadFile(blocker)
	require.NoError(t, readErr)
	assert.Equal(t, "x", string(data), "pre-existing content untouched")
}
