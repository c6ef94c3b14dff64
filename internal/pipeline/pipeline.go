// =============================================================================
// Expensight - Pipeline Session
// =============================================================================
//
// One Session owns the results of the most recent pipeline run: the cleaned
// table, the aggregate set, the chart set, the discard summary, and the
// report location. Run executes the whole pipeline as one indivisible unit;
// the session state is replaced only after every stage has succeeded, so
// observers never see a partially-updated run (invalidate-on-new-load).
//
// STAGES:
//   load -> aggregate -> render charts -> export report -> write chart files
//
// =============================================================================

package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/expensight/expensight/internal/analyze"
	"github.com/expensight/expensight/internal/chart"
	"github.com/expensight/expensight/internal/config"
	"github.com/expensight/expensight/internal/loader"
	"github.com/expensight/expensight/internal/model"
	"github.com/expensight/expensight/internal/report"
)

// Result is the complete outcome of one successful pipeline run.
type Result struct {
	Table      []model.ExpenseRecord
	Aggregates analyze.AggregateSet
	Charts     chart.Set
	Discards   *loader.DiscardSummary
	ReportPath string
	RanAt      time.Time
}

// Session holds the configuration and the last completed run. Safe for
// concurrent use by the HTTP front-end.
type Session struct {
	cfg    *config.Config
	logger *log.Logger

	mu   sync.RWMutex
	last *Result
}

// NewSession creates a session with no completed run yet.
func NewSession(cfg *config.Config, logger *log.Logger) *Session {
	return &Session{cfg: cfg, logger: logger}
}

// Current returns the last completed run, or false if none has happened.
func (s *Session) Current() (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.last != nil
}

// Run executes the full pipeline and, on success, replaces the session
// state with the new result. On any failure the previous result (and any
// previously written report file) is left untouched.
func (s *Session) Run() (*Result, error) {
	started := time.Now()
	s.logger.Info("pipeline run starting", "input", s.cfg.InputFile)

	table, discards, err := loader.Load(s.cfg.InputFile)
	if err != nil {
		return nil, err
	}
	s.logger.Info("table cleaned",
		"records", len(table),
		"dropped", discards.Total())

	aggs := analyze.Aggregate(table)

	charts, err := chart.Render(aggs)
	if err != nil {
		return nil, fmt.Errorf("producing charts: %w", err)
	}

	// Export before touching the chart files: a failed export must leave
	// every output artifact from the previous run as it was.
	if err := report.Export(s.cfg.OutputFile, table, aggs, charts); err != nil {
		return nil, err
	}
	if err := chart.WriteFiles(charts, s.cfg.ChartsDir); err != nil {
		return nil, err
	}

	result := &Result{
		Table:      table,
		Aggregates: aggs,
		Charts:     charts,
		Discards:   discards,
		ReportPath: s.cfg.OutputFile,
		RanAt:      started,
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	s.logger.Info("pipeline run complete",
		"report", result.ReportPath,
		"elapsed", time.Since(started).String())
	return result, nil
}

// Ensure returns the current result, running the pipeline first when no run
// has completed yet.
func (s *Session) Ensure() (*Result, error) {
	if res, ok := s.Current(); ok {
		return res, nil
	}
	return s.Run()
}

// =============================================================================
// CONSOLE SUMMARY
// =============================================================================

// WriteSummary prints the human-readable analysis summary after a CLI run.
func WriteSummary(w io.Writer, res *Result) {
	aggs := res.Aggregates

	fmt.Fprintln(w, "\nExpense Analysis Report")
	fmt.Fprintln(w, "=======================")
	fmt.Fprintf(w, "Records:         %d\n", aggs.Count)
	fmt.Fprintf(w, "Dropped rows:    %d\n", res.Discards.Total())
	fmt.Fprintf(w, "Average expense: %s\n", aggs.Average.StringFixed(2))
	fmt.Fprintf(w, "Max expense:     %s\n", aggs.Max.StringFixed(2))
	fmt.Fprintf(w, "Min expense:     %s\n", aggs.Min.StringFixed(2))

	if len(aggs.CategoryTotals) > 0 {
		fmt.Fprintln(w, "\nTotal by category:")
		for _, ct := range aggs.CategoryTotals {
			fmt.Fprintf(w, "  %-20s %s\n", ct.Category, ct.Amount.StringFixed(2))
		}
	}

	if len(aggs.PaymentModeCounts) > 0 {
		fmt.Fprintln(w, "\nPayment mode distribution:")
		for _, mc := range aggs.PaymentModeCounts {
			fmt.Fprintf(w, "  %-20s %d\n", mc.Mode, mc.Count)
		}
	}

	if len(aggs.Top5Items) > 0 {
		fmt.Fprintln(w, "\nTop 5 expensive items:")
		for _, rec := range aggs.Top5Items {
			fmt.Fprintf(w, "  %s  %-15s %-20s %s\n",
				rec.Date.Format(model.DateLayout), rec.Category, rec.Item, rec.Amount.StringFixed(2))
		}
	}

	fmt.Fprintf(w, "\nReport written to: %s\n", res.ReportPath)
}
