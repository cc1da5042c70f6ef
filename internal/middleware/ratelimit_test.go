package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterEnforcesLimit(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute, "test-limit")

	for i := 1; i <= 3; i++ {
		allowed, count := limiter.isAllowed("203.0.113.7")
		if !allowed {
			t.Fatalf("request %d denied, want allowed", i)
		}
		if count != i {
			t.Errorf("request %d count = %d", i, count)
		}
	}

	allowed, _ := limiter.isAllowed("203.0.113.7")
	if allowed {
		t.Error("fourth request allowed, want denied")
	}

	// A different client is unaffected.
	if allowed, _ := limiter.isAllowed("203.0.113.8"); !allowed {
		t.Error("separate client denied")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond, "test-reset")

	if allowed, _ := limiter.isAllowed("203.0.113.7"); !allowed {
		t.Fatal("first request denied")
	}
	if allowed, _ := limiter.isAllowed("203.0.113.7"); allowed {
		t.Fatal("second request in window allowed")
	}

	time.Sleep(30 * time.Millisecond)
	if allowed, _ := limiter.isAllowed("203.0.113.7"); !allowed {
		t.Error("request after window reset denied")
	}
}

func TestRateLimitMiddlewareResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(1, time.Minute, "test-response")
	router := gin.New()
	router.GET("/ping", rateLimitMiddleware(limiter), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w.Code)
	}

	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}
	if w.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("X-RateLimit-Limit = %q, want 1", w.Header().Get("X-RateLimit-Limit"))
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/problem+json") {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
}

// Run with -race. Exercises concurrent clients against a shared limiter.
func TestRateLimiterConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute, "test-concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				ip := "198.51.100.1"
				if j%3 == 0 {
					ip = fmt.Sprintf("198.51.100.%d", id%10+2)
				}
				limiter.isAllowed(ip)
			}
		}(i)
	}
	wg.Wait()
}

// Verifies no race between request handling and the cleanup goroutine.
func TestRateLimiterConcurrentWithCleanup(t *testing.T) {
	limiter := NewRateLimiter(5, 20*time.Millisecond, "test-cleanup-race")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				limiter.isAllowed(fmt.Sprintf("198.51.100.%d", id%10+2))
				if j%10 == 0 {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	wg.Wait()
}
