// =============================================================================
// Expensight - Loader / Cleaner
// =============================================================================
//
// This module reads the raw expense table from disk (XLSX or CSV), applies
// the record model validation to every row, removes exact duplicates, and
// returns the cleaned table together with a discard summary.
//
// FAILURE MODEL:
//   - Structural problems (missing file, unreadable format, wrong header)
//     are fatal and surface as *LoadError. No partial table is returned.
//   - Row-level problems are recovered: the row is dropped, counted in the
//     DiscardSummary, and the run continues.
//
// =============================================================================

package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/expensight/expensight/internal/model"
	"github.com/xuri/excelize/v2"
)

// LoadError is a fatal input failure: the file is missing, unreadable, or
// structurally wrong. It aborts the run.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DiscardSummary records every row dropped during cleaning.
type DiscardSummary struct {
	// ByReason counts dropped rows per discard reason.
	ByReason map[model.Reason]int

	// Rows lists each dropped row with its reason, in file order.
	Rows []*model.RowError
}

// Total returns the number of dropped rows.
func (d *DiscardSummary) Total() int { return len(d.Rows) }

// Count returns the number of rows dropped for one reason.
func (d *DiscardSummary) Count(r model.Reason) int { return d.ByReason[r] }

func (d *DiscardSummary) add(e *model.RowError) {
	d.ByReason[e.Reason]++
	d.Rows = append(d.Rows, e)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the expense table at path and returns the cleaned records in
// original row order, plus the discard summary. The format is chosen by
// file extension: .xlsx/.xlsm via excelize, .csv via encoding/csv.
func Load(path string) ([]model.ExpenseRecord, *DiscardSummary, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, nil, &LoadError{Path: path, Reason: "unsupported file extension"}
	}
	if err != nil {
		return nil, nil, err
	}

	return Clean(path, rows)
}

// Clean validates raw rows (header first) and deduplicates the survivors.
// Exposed separately from Load so the table can also arrive from memory.
func Clean(path string, rows [][]string) ([]model.ExpenseRecord, *DiscardSummary, error) {
	if len(rows) == 0 {
		return nil, nil, &LoadError{Path: path, Reason: "file has no header row"}
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, nil, &LoadError{Path: path, Reason: err.Error()}
	}

	summary := &DiscardSummary{ByReason: make(map[model.Reason]int)}
	records := make([]model.ExpenseRecord, 0, len(rows)-1)
	seen := make(map[string]struct{})

	for i, raw := range rows[1:] {
		rowNum := i + 2 // 1-based, header is row 1

		rec, rowErr := model.FromRow(rowNum, raw)
		if rowErr != nil {
			summary.add(rowErr)
			continue
		}

		// Exact duplicates collapse to the first occurrence.
		key := rec.Key()
		if _, dup := seen[key]; dup {
			summary.add(&model.RowError{Row: rowNum, Reason: model.ReasonDuplicate, Value: rec.Item})
			continue
		}
		seen[key] = struct{}{}
		records = append(records, rec)
	}

	return records, summary, nil
}

// checkHeader enforces the fixed six-column header, case-sensitive.
func checkHeader(header []string) error {
	if len(header) != len(model.Headers) {
		return fmt.Errorf("expected %d columns, found %d", len(model.Headers), len(header))
	}
	for i, want := range model.Headers {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("column %d: expected header %q, found %q", i+1, want, header[i])
		}
	}
	return nil
}

// =============================================================================
// FORMAT READERS
// =============================================================================

// readXLSX returns all rows of the first sheet as strings.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "cannot open workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &LoadError{Path: path, Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "cannot read rows", Err: err}
	}
	return rows, nil
}

// readCSV returns all rows of a comma-separated file.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "cannot open file", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // column count is validated against the header

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Path: path, Reason: "malformed csv", Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
