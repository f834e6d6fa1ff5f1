package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeLimiter struct {
	allow  bool
	err    error
	keys   []string
	limits []int
}

func (f *fakeLimiter) Allow(_ context.Context, key string, config *RateLimitConfig) (*RateLimitResult, error) {
	f.keys = append(f.keys, key)
	f.limits = append(f.limits, config.Limit)
	if f.err != nil {
		return nil, f.err
	}
	remaining := 0
	if f.allow {
		remaining = config.Limit - 1
	}
	return &RateLimitResult{Allowed: f.allow, Remaining: remaining, ResetAt: time.Now().Unix() + 60, Limit: config.Limit}, nil
}

func newRouter(g *RateLimitGroup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(g.Middleware())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/api/v1/auth/login", ok)
	r.GET("/api/v1/cameras", ok)
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitGroupPicksRuleByPrefix(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	g := NewRateLimitGroup(limiter,
		&RateLimitConfig{Path: "*", Limit: 100, Window: time.Minute, Type: RateLimitByIP},
		&RateLimitConfig{Path: "/api/v1/auth/login", Limit: 5, Window: time.Minute, Type: RateLimitByIP},
	)
	r := newRouter(g)

	if w := do(r, http.MethodPost, "/api/v1/auth/login"); w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	w := do(r, http.MethodGet, "/api/v1/cameras")
	if w.Code != http.StatusOK {
		t.Fatalf("cameras status = %d", w.Code)
	}
	if w.Header().Get("X-RateLimit-Limit") != "100" {
		t.Fatalf("limit header = %q", w.Header().Get("X-RateLimit-Limit"))
	}

	if limiter.limits[0] != 5 || limiter.limits[1] != 100 {
		t.Fatalf("limits = %v", limiter.limits)
	}
	if limiter.keys[0] != "/api/v1/auth/login:ip:10.0.0.7" {
		t.Fatalf("key = %q", limiter.keys[0])
	}
}

func TestRateLimitGroupRejects(t *testing.T) {
	g := NewRateLimitGroup(&fakeLimiter{allow: false}, &RateLimitConfig{Path: "*", Limit: 1, Window: time.Second})
	w := do(newRouter(g), http.MethodGet, "/api/v1/cameras")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestRateLimitGroupFailsOpen(t *testing.T) {
	g := NewRateLimitGroup(&fakeLimiter{err: errors.New("redis down")}, &RateLimitConfig{Path: "*", Limit: 1, Window: time.Second})
	w := do(newRouter(g), http.MethodGet, "/api/v1/cameras")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestParseScriptResult(t *testing.T) {
	res, err := parseScriptResult([]interface{}{int64(1), int64(4), int64(5)}, 99)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !res.Allowed || res.Remaining != 4 || res.Limit != 5 || res.ResetAt != 99 {
		t.Fatalf("res = %+v", res)
	}
	if _, err := parseScriptResult("nope", 0); err == nil {
		t.Fatal("expected error for bad reply")
	}
}

func TestWindowSecondsFloor(t *testing.T) {
	c := &RateLimitConfig{Window: 200 * time.Millisecond}
	if c.windowSeconds() != 1 {
		t.Fatalf("windowSeconds = %d", c.windowSeconds())
	}
}
