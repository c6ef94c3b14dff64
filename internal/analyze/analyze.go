// =============================================================================
// Expensight - Aggregator
// =============================================================================
//
// Pure derivation of the aggregate set from a cleaned table. Every value is
// a function of the input records only, every ordering is deterministic, and
// an empty table produces empty (not missing, not erroring) aggregates.
//
// ORDERING RULES:
//   - CategoryTotals / CategoryAverages: amount descending, ties by name
//   - PaymentModeCounts: count descending, ties by mode name
//   - MonthlyTotals: chronological
//   - SortedExpenses: amount descending, stable (ties keep row order)
//   - Top5Items: first min(5, n) of SortedExpenses
//   - Above5000: original row order
//
// =============================================================================

package analyze

import (
	"sort"
	"time"

	"github.com/expensight/expensight/internal/model"
	"github.com/shopspring/decimal"
)

// aboveThreshold is the cutoff for the Above5000 subsequence.
var aboveThreshold = decimal.NewFromInt(5000)

// CategoryAmount is one category grouping entry.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// ModeCount is one payment-mode count entry.
type ModeCount struct {
	Mode  string
	Count int
}

// MonthTotal is one calendar-month total. Month is truncated to the first
// day of the month in UTC.
type MonthTotal struct {
	Month time.Time
	Total decimal.Decimal
}

// Key returns the year-month label, e.g. "2024-01".
func (m MonthTotal) Key() string { return m.Month.Format("2006-01") }

// AggregateSet bundles every derived statistic of one pipeline run.
type AggregateSet struct {
	Count   int
	Total   decimal.Decimal
	Average decimal.Decimal
	Max     decimal.Decimal
	Min     decimal.Decimal

	CategoryTotals    []CategoryAmount
	CategoryAverages  []CategoryAmount
	PaymentModeCounts []ModeCount
	MonthlyTotals     []MonthTotal

	Top5Items      []model.ExpenseRecord
	Above5000      []model.ExpenseRecord
	SortedExpenses []model.ExpenseRecord
}

// Aggregate computes the full aggregate set for a cleaned table.
func Aggregate(table []model.ExpenseRecord) AggregateSet {
	aggs := AggregateSet{
		Count:   len(table),
		Total:   decimal.Zero,
		Average: decimal.Zero,
		Max:     decimal.Zero,
		Min:     decimal.Zero,
	}

	if len(table) > 0 {
		aggs.Max = table[0].Amount
		aggs.Min = table[0].Amount
		for _, rec := range table {
			aggs.Total = aggs.Total.Add(rec.Amount)
			if rec.Amount.GreaterThan(aggs.Max) {
				aggs.Max = rec.Amount
			}
			if rec.Amount.LessThan(aggs.Min) {
				aggs.Min = rec.Amount
			}
		}
		aggs.Average = aggs.Total.Div(decimal.NewFromInt(int64(len(table)))).Round(2)
	}

	aggs.CategoryTotals, aggs.CategoryAverages = categoryGroups(table)
	aggs.PaymentModeCounts = modeCounts(table)
	aggs.MonthlyTotals = monthlyTotals(table)
	aggs.SortedExpenses = sortByAmountDesc(table)

	top := len(aggs.SortedExpenses)
	if top > 5 {
		top = 5
	}
	aggs.Top5Items = aggs.SortedExpenses[:top]

	for _, rec := range table {
		if rec.Amount.GreaterThan(aboveThreshold) {
			aggs.Above5000 = append(aggs.Above5000, rec)
		}
	}

	return aggs
}

// =============================================================================
// GROUPINGS
// =============================================================================

func categoryGroups(table []model.ExpenseRecord) (totals, averages []CategoryAmount) {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, rec := range table {
		sums[rec.Category] = sums[rec.Category].Add(rec.Amount)
		counts[rec.Category]++
	}

	for cat, sum := range sums {
		totals = append(totals, CategoryAmount{Category: cat, Amount: sum})
		averages = append(averages, CategoryAmount{
			Category: cat,
			Amount:   sum.Div(decimal.NewFromInt(counts[cat])).Round(2),
		})
	}

	byAmountDesc := func(s []CategoryAmount) {
		sort.Slice(s, func(i, j int) bool {
			if !s[i].Amount.Equal(s[j].Amount) {
				return s[i].Amount.GreaterThan(s[j].Amount)
			}
			return s[i].Category < s[j].Category
		})
	}
	byAmountDesc(totals)
	byAmountDesc(averages)
	return totals, averages
}

func modeCounts(table []model.ExpenseRecord) []ModeCount {
	counts := make(map[string]int)
	for _, rec := range table {
		counts[rec.PaymentMode]++
	}

	var out []ModeCount
	for mode, n := range counts {
		out = append(out, ModeCount{Mode: mode, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Mode < out[j].Mode
	})
	return out
}

func monthlyTotals(table []model.ExpenseRecord) []MonthTotal {
	sums := make(map[time.Time]decimal.Decimal)
	for _, rec := range table {
		month := time.Date(rec.Date.Year(), rec.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		sums[month] = sums[month].Add(rec.Amount)
	}

	var out []MonthTotal
	for month, total := range sums {
		out = append(out, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

func sortByAmountDesc(table []model.ExpenseRecord) []model.ExpenseRecord {
	sorted := make([]model.ExpenseRecord, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	return sorted
}
