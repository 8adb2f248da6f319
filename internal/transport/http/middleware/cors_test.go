package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/task-platform-auth/internal/infra/config"
)

func performCORSRequest(cfg config.CORSSettings, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORS(cfg))
	router.GET("/resource", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/resource", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	router.ServeHTTP(recorder, req)

	return recorder
}

func TestCORSPreflightUsesConfiguredPolicy(t *testing.T) {
	cfg := config.CORSSettings{
		AllowedOrigins: []string{"https://app.example.com"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         time.Hour,
	}

	recorder := performCORSRequest(cfg, http.MethodOptions, "https://app.example.com")

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("unexpected allow-origin: %q", got)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,DELETE" {
		t.Fatalf("unexpected allow-methods: %q", got)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type,Authorization" {
		t.Fatalf("unexpected allow-headers: %q", got)
	}
	if got := recorder.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Fatalf("unexpected max-age: %q", got)
	}
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	cfg := config.CORSSettings{
		AllowedOrigins: []string{"https://app.example.com"},
		AllowedMethods: []string{"GET"},
	}

	recorder := performCORSRequest(cfg, http.MethodGet, "https://evil.example.com")

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin must not be allowed, got %q", got)
	}
	if got := recorder.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
}

func TestCORSWildcardDisablesCredentials(t *testing.T) {
	cfg := config.CORSSettings{AllowedOrigins: []string{"*"}}

	recorder := performCORSRequest(cfg, http.MethodGet, "https://app.example.com")

	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("credentials must not accompany a wildcard origin, got %q", got)
	}
}
