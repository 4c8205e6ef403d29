package searchsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbench/pkg/config"
	"gridbench/services/search-svc/internal/report"
)

const scenariosYAML = `scenarios:
  - name: open
    rows: 10
    cols: 10
    start: [0, 0]
    goal: [9, 9]
    seed: 1
    density: 0
    beam_widths: [0, 4]
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")

	cfg, err := config.NewLoader(config.WithConfigPaths(filepath.Join(t.TempDir(), "missing.yaml"))).Load()
	require.NoError(t, err)

	cfg.Report.OutputDir = t.TempDir()
	cfg.Report.Console = true
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func TestNewApp_Defaults(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	require.NotNil(t, app.Service)
	require.NotNil(t, app.Metrics)
	require.NotNil(t, app.Telemetry)

	astar, beam := app.Service.Limits()
	assert.Equal(t, 5_000_000, astar)
	assert.Equal(t, 5_000_000, beam)

	list, err := app.Scenarios()
	require.NoError(t, err)
	assert.Len(t, list, 12)
}

func TestNewApp_UnknownRepositoryDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "mongo"

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open repository")
}

func TestApp_HandlerServesSearchAndHistory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.RateLimit.Requests = 100
	app := newTestApp(t, cfg)

	h, err := app.Handler()
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	body := `{"rows":10,"cols":10,"start":[0,0],"goal":[9,9],"seed":1,"density":0}`
	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/search", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", "http://localhost:3000")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		assert.Equal(t, "100", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.EqualValues(t, 18, out["cost"])
	}

	resp, err := http.Get(srv.URL + "/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	var runs struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	assert.EqualValues(t, 2, runs.Total)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	raw, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `gridbench_search_http_requests_total{method="POST",route="/v1/search",status="200"} 2`)
}

func TestApp_RateLimitDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = false
	cfg.HTTP.CORS.Enabled = false
	app := newTestApp(t, cfg)

	h, err := app.Handler()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/algorithms", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApp_Swagger(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)
	h, err := app.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc.Paths, "/v1/compare")
	assert.Contains(t, doc.Paths, "/v1/runs/{id}")

	cfg.HTTP.Swagger = false
	h, err = app.Handler()
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/openapi.json", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_RunnerWritesReports(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenariosYAML), 0o644))
	cfg.Search.ScenarioFile = path
	cfg.Report.Formats = []string{"csv", "text", "json"}
	app := newTestApp(t, cfg)

	list, err := app.Scenarios()
	require.NoError(t, err)
	require.Len(t, list, 1)

	var console bytes.Buffer
	r, err := app.Runner(&console)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), list)
	require.NoError(t, err)
	assert.Zero(t, summary.Failed)
	assert.Len(t, summary.Files, 3)

	text, err := os.ReadFile(summary.Files[report.FormatText])
	require.NoError(t, err)
	assert.Equal(t, string(text), console.String())

	csv, err := os.ReadFile(summary.Files[report.FormatCSV])
	require.NoError(t, err)
	assert.Contains(t, string(csv), "A*,N/A,Yes,18,")
}

func TestApp_RunnerWithoutConsole(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Console = false
	app := newTestApp(t, cfg)

	var console bytes.Buffer
	_, err := app.Runner(&console)
	require.NoError(t, err)
	assert.Zero(t, console.Len())
}

func TestApp_RunnerRejectsUnknownFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Formats = []string{"docx"}
	app := newTestApp(t, cfg)

	_, err := app.Runner(io.Discard)
	require.Error(t, err)
}
