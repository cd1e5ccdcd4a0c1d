// internal/api/middleware/ratelimit_test.go
package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowsBurst(t *testing.T) {
	handler := RateLimit(0.001, 2)(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/chart", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/chart", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if !strings.Contains(w.Body.String(), "RATE_LIMITED") {
		t.Errorf("expected RATE_LIMITED body, got %s", w.Body.String())
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	handler := RateLimit(0, 0)(okHandler())

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/chart", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 with limiter disabled, got %d", i, w.Code)
		}
	}
}

func TestMaxBytes(t *testing.T) {
	var readErr error
	handler := MaxBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader("too long")))
	if readErr == nil {
		t.Error("expected error reading oversized body")
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/", strings.NewReader("ok")))
	if readErr != nil {
		t.Errorf("unexpected error for small body: %v", readErr)
	}
}

func TestRetryAfter(t *testing.T) {
	if got := retryAfter(1500 * time.Millisecond); got != "2" {
		t.Errorf("expected 2, got %s", got)
	}
}
