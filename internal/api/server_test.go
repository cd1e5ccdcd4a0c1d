// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/newthinker/sigchart/internal/metrics"
	"github.com/newthinker/sigchart/internal/pipeline"
	"github.com/newthinker/sigchart/internal/session"
	"github.com/newthinker/sigchart/internal/storage/source"
)

const (
	sampleOHLCV  = "Date,Open,High,Low,Close\n2024-01-01,100,105,99,102\n2024-01-02,102,108,101,107\n"
	sampleTrades = "date,side,entry,exit,sl,tp\n2024-01-01,sell,100,90,105,85\n"
)

func testConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           0,
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
		MaxUploadBytes: 1 << 20,
		OverlayEnabled: true,
		OHLCVFile:      "sample_ohlcv.csv",
		TradesFile:     "sample_trades.csv",
	}
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	src, err := source.NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	ctx := context.Background()
	src.Put(ctx, "sample_ohlcv.csv", strings.NewReader(sampleOHLCV))
	src.Put(ctx, "sample_trades.csv", strings.NewReader(sampleTrades))

	reg := metrics.NewRegistry()
	deps := Dependencies{
		Processor: pipeline.New(zap.NewNop(), reg),
		Store:     session.NewStore(),
		Source:    src,
		Metrics:   reg,
	}

	srv, err := NewServer(cfg, deps, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestServer_Index(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Levels") {
		t.Error("expected dashboard page")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected logging middleware to set X-Request-ID")
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", w.Code)
	}
}

func TestServer_DefaultChartThenLevels(t *testing.T) {
	srv := newTestServer(t, testConfig())
	h := srv.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/chart/default", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var env struct {
		Data struct {
			Counts struct {
				Candles int `json:"candles"`
				Signals int `json:"signals"`
			} `json:"counts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Counts.Candles != 2 || env.Data.Counts.Signals != 3 {
		t.Errorf("unexpected counts %+v", env.Data.Counts)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/chart", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected current chart, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/levels?time=1704067200", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for levels, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"E 100.00"`) {
		t.Errorf("expected entry line in %s", w.Body.String())
	}
}

func TestServer_UploadMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("DELETE", "/api/v1/chart", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestServer_UploadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 200
	srv := newTestServer(t, cfg)

	body := "--x\r\nContent-Disposition: form-data; name=\"ohlcv\"; filename=\"a.csv\"\r\n\r\n" +
		strings.Repeat("2024-01-01,1,2,0,1\n", 100) + "\r\n--x--\r\n"
	req := httptest.NewRequest("POST", "/api/v1/chart", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_DataRoutes(t *testing.T) {
	srv := newTestServer(t, testConfig())
	h := srv.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/data/sample_ohlcv.csv", nil))
	if w.Code != http.StatusOK || w.Body.String() != sampleOHLCV {
		t.Errorf("unexpected data response %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/data", nil))
	if !strings.Contains(w.Body.String(), "sample_trades.csv") {
		t.Errorf("expected file list, got %s", w.Body.String())
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, testConfig())
	h := srv.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/chart/default", nil))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	for _, want := range []string{"http_requests_total", "sigchart_pipeline_runs_total", "sigchart_rows_total"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("expected %s in metrics output", want)
		}
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	srv := newTestServer(t, cfg)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestServer_Static(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0644)

	cfg := testConfig()
	cfg.StaticDir = dir
	srv := newTestServer(t, cfg)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/static/app.css", nil))
	if w.Code != http.StatusOK || w.Body.String() != "body{}" {
		t.Errorf("unexpected static response %d %q", w.Code, w.Body.String())
	}
}

func TestServer_HoverThroughMiddleware(t *testing.T) {
	srv := newTestServer(t, testConfig())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/chart/default")
	if err != nil {
		t.Fatalf("GET default: %v", err)
	}
	resp.Body.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/hover"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"time": 1704067200}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply struct {
		Commands []json.RawMessage `json:"commands"`
		State    string            `json:"state"`
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.State != "showing" || len(reply.Commands) != 3 {
		t.Errorf("unexpected reply %+v", reply)
	}
}
