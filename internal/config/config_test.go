package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("GIN_MODE", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %s", cfg.CacheTTL)
	}
	if cfg.CommentRatePerMinute != 3 {
		t.Fatalf("expected comment rate 3, got %d", cfg.CommentRatePerMinute)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=tour")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("SITE_BASE_URL", "https://tour.example/")
	t.Setenv("SESSION_SECRET", "session-secret-for-tests")
	t.Setenv("JWT_SECRET", "jwt-secret-for-tests")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.0/8,")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != "postgres" || cfg.DatabaseDSN != "host=db user=tour" {
		t.Fatalf("unexpected database config: %+v", cfg)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("expected 2h jwt ttl, got %s", cfg.JWTTTL)
	}
	if cfg.SiteBaseURL != "https://tour.example" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.SiteBaseURL)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "10.0.0.0/8" {
		t.Fatalf("unexpected trusted proxies %q", cfg.TrustedProxies)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	content := "gin_mode: debug\nredis_addr: localhost:6379\ncomment_rate_per_minute: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("expected redis addr from file, got %q", cfg.RedisAddr)
	}
	if cfg.CommentRatePerMinute != 10 {
		t.Fatalf("expected comment rate 10, got %d", cfg.CommentRatePerMinute)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("DATABASE_DRIVER", "oracle")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadReleaseModeRequiresSecrets(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("GIN_MODE", "release")

	cases := []struct {
		name    string
		session string
		jwt     string
		wantErr bool
	}{
		{"builtin defaults", "", "", true},
		{"builtin session secret", "tourcms-dev-secret", "jwt-secret-for-tests", true},
		{"builtin jwt secret", "session-secret-for-tests", "tourcms-dev-jwt-secret", true},
		{"custom secrets", "session-secret-for-tests", "jwt-secret-for-tests", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", tc.session)
			t.Setenv("JWT_SECRET", tc.jwt)
			_, err := Load("")
			if tc.wantErr && !errors.Is(err, ErrInsecureSecret) {
				t.Fatalf("expected ErrInsecureSecret, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("load config: %v", err)
			}
		})
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
