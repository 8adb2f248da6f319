package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	redisrepo "github.com/arklim/task-platform-auth/internal/repository/redis"
)

func newRateLimiterFixture(t *testing.T) *RateLimiter {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisrepo.NewRateLimitRepository(client, redisrepo.SlidingWindowConfig{KeyPrefix: "test:rl"})

	return NewRateLimiter(store, zaptest.NewLogger(t))
}

func rateLimitRequest(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	router := gin.New()
	router.POST("/login", handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.1.2.3:54321"
	router.ServeHTTP(recorder, req)

	return recorder
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	limiter := newRateLimiterFixture(t)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithClock(func() time.Time { return now })

	handler := limiter.RateLimit(RateLimitRule{
		Name:   "login",
		Limit:  3,
		Window: time.Minute,
	})

	for i := 0; i < 3; i++ {
		recorder := rateLimitRequest(t, handler)
		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, recorder.Code)
		}
	}

	recorder := rateLimitRequest(t, handler)
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", recorder.Code)
	}
	if recorder.Header().Get("Retry-After") == "" {
		t.Fatal("Retry-After header missing")
	}
	if got := recorder.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("unexpected remaining header: %s", got)
	}
}

func TestRateLimitWindowSlides(t *testing.T) {
	limiter := newRateLimiterFixture(t)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithClock(func() time.Time { return now })

	handler := limiter.RateLimit(RateLimitRule{
		Name:   "login",
		Limit:  1,
		Window: time.Minute,
	})

	if recorder := rateLimitRequest(t, handler); recorder.Code != http.StatusOK {
		t.Fatalf("first request rejected: %d", recorder.Code)
	}
	if recorder := rateLimitRequest(t, handler); recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("second request inside window passed: %d", recorder.Code)
	}

	now = now.Add(61 * time.Second)
	if recorder := rateLimitRequest(t, handler); recorder.Code != http.StatusOK {
		t.Fatalf("request after window rejected: %d", recorder.Code)
	}
}

func TestRateLimitDegradesOpenWithoutStore(t *testing.T) {
	limiter := NewRateLimiter(nil, zaptest.NewLogger(t))

	handler := limiter.RateLimit(RateLimitRule{
		Name:   "login",
		Limit:  1,
		Window: time.Minute,
	})

	for i := 0; i < 5; i++ {
		if recorder := rateLimitRequest(t, handler); recorder.Code != http.StatusOK {
			t.Fatalf("request %d rejected without a store: %d", i+1, recorder.Code)
		}
	}
}
