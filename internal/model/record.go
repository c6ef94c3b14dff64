// =============================================================================
// Expensight - Expense Record Model
// =============================================================================
//
// This module defines the six-field expense record and the validation rules
// that guard the boundary between raw tabular input and the cleaned table.
// Records are constructed only through FromRow; once built they are treated
// as immutable values.
//
// VALIDATION ORDER (applied by FromRow):
//   1. Amount must parse to a number >= 0
//   2. Payment mode must match the recognized set (case-insensitive)
//   3. Date must parse to a valid calendar date
//   4. Missing Item/Notes become empty strings (never a rejection)
//
// POLICY: an unrecognized payment mode rejects the row. "Other" is itself a
// recognized mode, so callers that want a catch-all must say so in the data.
//
// =============================================================================

package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DateLayout is the single accepted textual date format.
const DateLayout = "2006-01-02"

// Column headers of the input table, in fixed order.
var Headers = []string{"Date", "Category", "Item", "Payment Mode", "Amount", "Notes"}

// paymentModes maps the lowercase form of each recognized payment mode to
// its canonical casing.
var paymentModes = map[string]string{
	"cash":       "Cash",
	"card":       "Card",
	"upi":        "UPI",
	"netbanking": "NetBanking",
	"other":      "Other",
}

// ExpenseRecord is one cleaned row of the expense table.
type ExpenseRecord struct {
	Date        time.Time
	Category    string
	Item        string
	PaymentMode string
	Amount      decimal.Decimal
	Notes       string
}

// Key returns a string identity over all six fields, used for exact-duplicate
// detection. Amount is normalized so "100" and "100.00" collide.
func (r ExpenseRecord) Key() string {
	return strings.Join([]string{
		r.Date.Format(DateLayout),
		r.Category,
		r.Item,
		r.PaymentMode,
		r.Amount.String(),
		r.Notes,
	}, "\x1f")
}

// Equal reports whether two records match on all six fields.
func (r ExpenseRecord) Equal(o ExpenseRecord) bool {
	return r.Date.Equal(o.Date) &&
		r.Category == o.Category &&
		r.Item == o.Item &&
		r.PaymentMode == o.PaymentMode &&
		r.Amount.Equal(o.Amount) &&
		r.Notes == o.Notes
}

// =============================================================================
// ROW VALIDATION ERRORS
// =============================================================================

// Reason classifies why a raw row was discarded.
type Reason string

const (
	ReasonAmountNotNumeric Reason = "amount not numeric"
	ReasonAmountNegative   Reason = "amount negative"
	ReasonBadPaymentMode   Reason = "payment mode unrecognized"
	ReasonBadDate          Reason = "date unparseable"
	ReasonDuplicate        Reason = "duplicate row"
)

// RowError is a recovered, row-level validation failure. The loader counts
// these and continues; they never abort a run.
type RowError struct {
	// Row is the 1-based row number in the source file, header included.
	Row    int
	Reason Reason
	Value  string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s (value: %q)", e.Row, e.Reason, e.Value)
}

// =============================================================================
// RECORD FACTORY
// =============================================================================

// FromRow builds a validated ExpenseRecord from one raw six-field row.
// fields must hold the cells in header order; row is the source row number
// used for error context. The function is pure: no side effects, and a
// failure always carries a Reason from the taxonomy above.
func FromRow(row int, fields []string) (ExpenseRecord, *RowError) {
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	rawDate := get(0)
	category := get(1)
	item := get(2)
	rawMode := get(3)
	rawAmount := get(4)
	notes := get(5)

	// Rule 1: amount parses and is non-negative.
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return ExpenseRecord{}, &RowError{Row: row, Reason: ReasonAmountNotNumeric, Value: rawAmount}
	}
	if amount.IsNegative() {
		return ExpenseRecord{}, &RowError{Row: row, Reason: ReasonAmountNegative, Value: rawAmount}
	}

	// Rule 2: payment mode belongs to the recognized set.
	mode, ok := CanonicalPaymentMode(rawMode)
	if !ok {
		return ExpenseRecord{}, &RowError{Row: row, Reason: ReasonBadPaymentMode, Value: rawMode}
	}

	// Rule 3: date parses. Spreadsheet cells sometimes surface as Excel
	// serial numbers rather than text, so those are converted first.
	date, ok := parseDate(rawDate)
	if !ok {
		return ExpenseRecord{}, &RowError{Row: row, Reason: ReasonBadDate, Value: rawDate}
	}

	// Rule 4: missing item/notes stay as empty strings.
	return ExpenseRecord{
		Date:        date,
		Category:    category,
		Item:        item,
		PaymentMode: mode,
		Amount:      amount,
		Notes:       notes,
	}, nil
}

// CanonicalPaymentMode resolves a raw payment-mode value to its canonical
// casing. The second result is false when the value is not recognized.
func CanonicalPaymentMode(raw string) (string, bool) {
	mode, ok := paymentModes[strings.ToLower(strings.TrimSpace(raw))]
	return mode, ok
}

// PaymentModes returns the canonical payment modes in display order.
func PaymentModes() []string {
	return []string{"Cash", "Card", "UPI", "NetBanking", "Other"}
}

// parseDate accepts the canonical textual layout or an Excel serial number.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, true
	}
	// Excel stores dates as day counts since 1899-12-30; excelize hands the
	// raw number through when the cell has no display format.
	if serial, err := decimal.NewFromString(raw); err == nil {
		t, convErr := excelize.ExcelDateToTime(serial.InexactFloat64(), false)
		if convErr == nil && t.Year() > 1900 {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
