package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMetricsAuthMiddleware_Disabled(t *testing.T) {
	mw := NewMetricsAuthMiddleware("", "")

	rec := httptest.NewRecorder()
	mw.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 when auth is disabled, got %d", rec.Code)
	}
}

func TestMetricsAuthMiddleware_MissingCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("prom", "secret")

	rec := httptest.NewRecorder()
	mw.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}
}

func TestMetricsAuthMiddleware_WrongCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("prom", "secret")

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("prom", "wrong")
	rec := httptest.NewRecorder()
	mw.Handler(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMetricsAuthMiddleware_ValidCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("prom", "secret")

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	rec := httptest.NewRecorder()
	mw.Handler(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
