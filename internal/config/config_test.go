package config

import (
	"os"
	"testing"
	"time"

	"golfcam/internal/middleware"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != 3000 || cfg.Addr() != ":3000" {
		t.Fatalf("port = %d", cfg.APIPort)
	}
	if !cfg.ResetAtomic {
		t.Fatal("RESET_ATOMIC should default to true")
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("JWT_TTL = %v", cfg.JWTTTL)
	}
	if cfg.RateLimit.LoginRule.Limit != 5 || cfg.RateLimit.LoginRule.Algorithm != middleware.FixedWindow {
		t.Fatalf("login rule = %+v", cfg.RateLimit.LoginRule)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("CORS_ORIGINS = %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_PORT", "8080")
	t.Setenv("RESET_ATOMIC", "false")
	t.Setenv("REPORT_CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_LOGIN_LIMIT", "3")
	t.Setenv("RATE_LIMIT_LOGIN_WINDOW", "5m")
	t.Setenv("RATE_LIMIT_DEFAULT_ALGORITHM", "fixed_window")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("REPORT_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != 8080 || cfg.ResetAtomic || cfg.ReportCacheTTL != 30*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	login := cfg.RateLimit.LoginRule
	if login.Limit != 3 || login.Window != 5*time.Minute || login.Path != "/api/v1/auth/login" {
		t.Fatalf("login rule = %+v", login)
	}
	if cfg.RateLimit.DefaultRule.Algorithm != middleware.FixedWindow {
		t.Fatalf("default algorithm = %s", cfg.RateLimit.DefaultRule.Algorithm)
	}
	if cfg.RateLimit.AdminRule.Limit != 10 {
		t.Fatalf("admin rule lost its default: %+v", cfg.RateLimit.AdminRule)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("CORS_ORIGINS = %v", cfg.CORSOrigins)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("Location = %v, %v", loc, err)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

func TestGetRateLimitRuleForPath(t *testing.T) {
	cfg := &Config{RateLimit: defaultRateLimits()}

	cases := map[string]string{
		"/api/v1/auth/login":                "/api/v1/auth/login",
		"/api/v1/admin/reset":               "/api/v1/admin/",
		"/api/v1/reports/shipments/monthly": "/api/v1/reports/",
		"/api/v1/cameras":                   "*",
	}
	for path, want := range cases {
		if got := cfg.GetRateLimitRuleForPath(path).Path; got != want {
			t.Fatalf("rule for %s = %s, want %s", path, got, want)
		}
	}
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
