package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/expensight/expensight/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "Date,Category,Item,Payment Mode,Amount,Notes\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, header+
		"2024-01-05,Groceries,Milk,Cash,100,weekly\n"+
		"2024-01-06,Transport,Bus,UPI,50,\n")

	table, summary, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Zero(t, summary.Total())

	assert.Equal(t, "Milk", table[0].Item)
	assert.Equal(t, "UPI", table[1].PaymentMode)
}

func TestLoadDropsInvalidRows(t *testing.T) {
	path := writeCSV(t, header+
		"2024-01-05,Groceries,Milk,Cash,-5,\n"+
		"2024-01-06,Transport,Bus,UPI,abc,\n"+
		"2024-01-07,Transport,Taxi,Cheque,120,\n"+
		"not-a-date,Transport,Train,Card,80,\n"+
		"2024-01-08,Groceries,Bread,Card,60,\n")

	table, summary, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "Bread", table[0].Item)

	assert.Equal(t, 4, summary.Total())
	assert.Equal(t, 1, summary.Count(model.ReasonAmountNegative))
	assert.Equal(t, 1, summary.Count(model.ReasonAmountNotNumeric))
	assert.Equal(t, 1, summary.Count(model.ReasonBadPaymentMode))
	assert.Equal(t, 1, summary.Count(model.ReasonBadDate))

	// Dropped rows carry their 1-based source row numbers, header included.
	require.Len(t, summary.Rows, 4)
	assert.Equal(t, 2, summary.Rows[0].Row)
	assert.Equal(t, 5, summary.Rows[3].Row)
}

func TestLoadDeduplicates(t *testing.T) {
	path := writeCSV(t, header+
		"2024-01-05,Groceries,Milk,Cash,100,\n"+
		"2024-01-06,Transport,Bus,UPI,50,\n"+
		"2024-01-05,Groceries,Milk,Cash,100,\n")

	table, summary, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, table, 2, "duplicate collapses to the first occurrence")
	assert.Equal(t, 1, summary.Count(model.ReasonDuplicate))
	assert.Equal(t, "Milk", table[0].Item, "first occurrence kept in place")
}

func TestLoadHeaderMismatch(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong name", "Date,Category,Item,Mode,Amount,Notes\n"},
		{"wrong case", "date,category,item,payment mode,amount,notes\n"},
		{"wrong count", "Date,Category,Item,Payment Mode,Amount\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeCSV(t, tt.content))
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, _, err := Load(path)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	rows := [][]interface{}{
		{"Date", "Category", "Item", "Payment Mode", "Amount", "Notes"},
		{"2024-01-05", "Groceries", "Milk", "Cash", 100, ""},
		{"2024-02-01", "Groceries", "Bread", "Card", 60, "store"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, summary, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Zero(t, summary.Total())
	assert.Equal(t, "100", table[0].Amount.String())
	assert.Equal(t, "store", table[1].Notes)
}

func TestCleanEmptyInput(t *testing.T) {
	_, _, err := Clean("mem", nil)
	require.Error(t, err)

	table, summary, err := Clean("mem", [][]string{
		{"Date", "Category", "Item", "Payment Mode", "Amount", "Notes"},
	})
	require.NoError(t, err)
	assert.Empty(t, table)
	assert.Zero(t, summary.Total())
}

func TestLoadErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &LoadError{Path: "x.csv", Reason: "cannot open file", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "x.csv")
}
