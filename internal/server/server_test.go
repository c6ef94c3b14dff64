package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/expensight/expensight/internal/config"
	"github.com/expensight/expensight/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,Category,Item,Payment Mode,Amount,Notes
2024-01-05,Groceries,Milk,Cash,100,
2024-01-06,Transport,Bus,UPI,50,
2024-02-01,Groceries,Bread,Card,60,
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	input := filepath.Join(dir, "expenses.csv")
	require.NoError(t, os.WriteFile(input, []byte(sampleCSV), 0644))

	cfg := &config.Config{
		InputFile:  input,
		OutputFile: filepath.Join(dir, "report.xlsx"),
		ChartsDir:  filepath.Join(dir, "charts"),
	}
	logger := log.New(io.Discard)
	return New(pipeline.NewSession(cfg, logger), logger)
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestRecordsEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/records")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status  string `json:"status"`
		Count   int    `json:"count"`
		Records []struct {
			Item        string  `json:"item"`
			PaymentMode string  `json:"payment_mode"`
			Amount      float64 `json:"amount"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 3, body.Count)
	require.Len(t, body.Records, 3)
	assert.Equal(t, "Milk", body.Records[0].Item)
	assert.Equal(t, "Cash", body.Records[0].PaymentMode)
	assert.Equal(t, 100.0, body.Records[0].Amount)
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/report")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status      string  `json:"status"`
		DownloadURL string  `json:"download_url"`
		Records     int     `json:"records"`
		Dropped     int     `json:"dropped"`
		Average     float64 `json:"average"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "/api/report/file", body.DownloadURL)
	assert.Equal(t, 3, body.Records)
	assert.Zero(t, body.Dropped)
	assert.Equal(t, 70.0, body.Average)

	// The advertised download works and serves an attachment.
	w = do(t, s, http.MethodGet, "/api/report/file")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cleaned_expenses.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestReportFileBeforeAnyRun(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/report/file")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChartsEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/charts")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Charts []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Charts, 4)

	w = do(t, s, http.MethodGet, body.Charts[0].URL)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = do(t, s, http.MethodGet, "/api/charts/nope.png")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPipelineFailureSurfacesAsError(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		InputFile:  filepath.Join(dir, "missing.csv"),
		OutputFile: filepath.Join(dir, "report.xlsx"),
		ChartsDir:  filepath.Join(dir, "charts"),
	}
	logger := log.New(io.Discard)
	s := New(pipeline.NewSession(cfg, logger), logger)

	w := do(t, s, http.MethodPost, "/api/report")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
}
