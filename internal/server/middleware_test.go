// internal/server/middleware_test.go
package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func middlewareRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())
	router.GET("/api/v1/health", HealthCheck)
	return router
}

func TestCORSHeaders(t *testing.T) {
	router := middlewareRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected wildcard CORS origin, got %q", origin)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := middlewareRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	router := middlewareRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	router := middlewareRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if id := w.Header().Get("X-Request-ID"); id != "req-123" {
		t.Errorf("expected the caller's request ID back, got %q", id)
	}
}
