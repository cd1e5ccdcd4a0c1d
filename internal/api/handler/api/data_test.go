// internal/api/handler/api/data_test.go
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/sigchart/internal/storage/source"
)

func newDataMux(t *testing.T) *http.ServeMux {
	t.Helper()
	src, err := source.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, src.Put(context.Background(), "sample_ohlcv.csv", strings.NewReader(testOHLCV)))

	h := NewDataHandler(src, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /data/{name}", h.File)
	mux.HandleFunc("GET /api/v1/data", h.List)
	return mux
}

func TestDataHandler_File(t *testing.T) {
	mux := newDataMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/data/sample_ohlcv.csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, testOHLCV, w.Body.String())
}

func TestDataHandler_FileMissing(t *testing.T) {
	mux := newDataMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/data/nope.csv", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NO_DATA")
}

func TestDataHandler_List(t *testing.T) {
	mux := newDataMux(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/data", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"files":["sample_ohlcv.csv"]`)
}
