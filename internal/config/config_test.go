package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{"PORT", "BACKEND_URL", "DB_PATH", "BOARDS_PATH", "TEMPLATE_DIR", "SESSION_SECRET", "SESSION_TTL", "PAGE_LIMIT", "BACKEND_TIMEOUT", "COOKIE_SECURE"}

// clearEnv unsets keys for the test and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.Addr() != ":8080" || cfg.PageLimit != 5 || cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.CookieSecure {
		t.Fatal("secure cookies on by default")
	}
	if !cfg.GeneratedSecret || len(cfg.SessionSecret) != 64 {
		t.Fatalf("secret not generated: %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	body := "BACKEND_URL=http://api.example:9000\nPAGE_LIMIT=10\nSESSION_TTL=2h\nSESSION_SECRET=s3cret\nCOOKIE_SECURE=true\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BackendURL != "http://api.example:9000" || cfg.PageLimit != 10 || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.CookieSecure {
		t.Fatal("COOKIE_SECURE ignored")
	}
	if cfg.SessionSecret != "s3cret" || cfg.GeneratedSecret {
		t.Fatalf("secret = %q", cfg.SessionSecret)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAGE_LIMIT", "zero")
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatal("bad PAGE_LIMIT accepted")
	}
	t.Setenv("PAGE_LIMIT", "")
	t.Setenv("SESSION_TTL", "-1h")
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatal("negative SESSION_TTL accepted")
	}
	t.Setenv("SESSION_TTL", "")
	t.Setenv("COOKIE_SECURE", "sometimes")
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatal("bad COOKIE_SECURE accepted")
	}
}
