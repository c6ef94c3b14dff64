// =============================================================================
// Expensight - HTTP Front-End
// =============================================================================
//
// The interactive collaborator around the pipeline. It exposes exactly the
// three operations of the front-end contract:
//
//   GET  /api/records        - current cleaned table for display
//   POST /api/report         - trigger a full pipeline run, return the
//                              report location for download
//   GET  /api/charts         - chart inventory for inline display
//   GET  /api/charts/:name   - one chart PNG
//   GET  /api/report/file    - download the generated workbook
//
// The server holds no state of its own: everything lives in the pipeline
// Session, and each run is one indivisible unit of work.
//
// =============================================================================

package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/expensight/expensight/internal/model"
	"github.com/expensight/expensight/internal/pipeline"
	"github.com/gin-gonic/gin"
)

// Server wires the pipeline session into a gin engine.
type Server struct {
	session *pipeline.Session
	logger  *log.Logger
	engine  *gin.Engine
}

// recordJSON is the wire shape of one cleaned expense record.
type recordJSON struct {
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Item        string  `json:"item"`
	PaymentMode string  `json:"payment_mode"`
	Amount      float64 `json:"amount"`
	Notes       string  `json:"notes"`
}

// New creates the server and registers all routes.
func New(session *pipeline.Session, logger *log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		session: session,
		logger:  logger,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLog())
	s.routes()
	return s
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	s.logger.Info("http front-end listening", "addr", addr)
	return s.engine.Run(addr)
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("/records", s.handleRecords)
	api.POST("/report", s.handleReport)
	api.GET("/report/file", s.handleReportFile)
	api.GET("/charts", s.handleCharts)
	api.GET("/charts/:name", s.handleChartImage)
}

// =============================================================================
// HANDLERS
// =============================================================================

// handleRecords returns the current cleaned table, running the pipeline
// first if no run has completed yet.
func (s *Server) handleRecords(c *gin.Context) {
	res, err := s.session.Ensure()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "pipeline run failed", err)
		return
	}

	records := make([]recordJSON, len(res.Table))
	for i, rec := range res.Table {
		records[i] = toJSON(rec)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"count":   len(records),
		"records": records,
	})
}

// handleReport triggers a full pipeline run and returns the report location
// together with the discard summary and headline statistics.
func (s *Server) handleReport(c *gin.Context) {
	res, err := s.session.Run()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "pipeline run failed", err)
		return
	}

	discards := make(map[string]int, len(res.Discards.ByReason))
	for reason, n := range res.Discards.ByReason {
		discards[string(reason)] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"report":       res.ReportPath,
		"download_url": "/api/report/file",
		"records":      res.Aggregates.Count,
		"dropped":      res.Discards.Total(),
		"discards":     discards,
		"average":      res.Aggregates.Average.InexactFloat64(),
		"max":          res.Aggregates.Max.InexactFloat64(),
		"min":          res.Aggregates.Min.InexactFloat64(),
	})
}

// handleReportFile serves the last generated workbook as a download.
func (s *Server) handleReportFile(c *gin.Context) {
	res, ok := s.session.Current()
	if !ok {
		s.fail(c, http.StatusNotFound, "no report generated yet", nil)
		return
	}
	c.FileAttachment(res.ReportPath, "cleaned_expenses.xlsx")
}

// handleCharts lists the chart set of the last run.
func (s *Server) handleCharts(c *gin.Context) {
	res, err := s.session.Ensure()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "pipeline run failed", err)
		return
	}

	type chartJSON struct {
		Name        string `json:"name"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		Placeholder bool   `json:"placeholder"`
	}
	var charts []chartJSON
	for _, img := range res.Charts.All() {
		charts = append(charts, chartJSON{
			Name:        img.Name,
			Title:       img.Title,
			URL:         "/api/charts/" + img.Name,
			Placeholder: img.Placeholder,
		})
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "charts": charts})
}

// handleChartImage serves one chart PNG inline.
func (s *Server) handleChartImage(c *gin.Context) {
	res, ok := s.session.Current()
	if !ok {
		s.fail(c, http.StatusNotFound, "no charts generated yet", nil)
		return
	}

	img, ok := res.Charts.ByName(c.Param("name"))
	if !ok {
		s.fail(c, http.StatusNotFound, "unknown chart", nil)
		return
	}
	c.Data(http.StatusOK, "image/png", img.PNG)
}

// =============================================================================
// HELPERS
// =============================================================================

func toJSON(rec model.ExpenseRecord) recordJSON {
	return recordJSON{
		Date:        rec.Date.Format(model.DateLayout),
		Category:    rec.Category,
		Item:        rec.Item,
		PaymentMode: rec.PaymentMode,
		Amount:      rec.Amount.InexactFloat64(),
		Notes:       rec.Notes,
	}
}

// fail logs the error and returns a minimal JSON error body.
func (s *Server) fail(c *gin.Context, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "path", c.Request.URL.Path)
		message = fmt.Sprintf("%s: %v", message, err)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "path", c.Request.URL.Path)
	}
	c.JSON(status, gin.H{"status": "error", "error": message})
}

// requestLog logs every request at debug level.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.logger.Debug("http request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	}
}
