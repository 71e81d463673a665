package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Services.Composite != DefaultCompositeServiceURL {
		t.Fatalf("unexpected composite URL: %s", cfg.Services.Composite)
	}
	if cfg.Semester != DefaultSemester {
		t.Fatalf("unexpected semester: %s", cfg.Semester)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.HTTP.Timeout)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Services.Composite != DefaultCompositeServiceURL {
		t.Fatalf("expected default composite URL, got %s", cfg.Services.Composite)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "services:\n  composite: https://composite.test\nsemester: Spring 2026\nhttp:\n  timeout: 5s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Services.Composite != "https://composite.test" {
		t.Fatalf("file value not applied: %s", cfg.Services.Composite)
	}
	if cfg.Semester != "Spring 2026" {
		t.Fatalf("semester not applied: %s", cfg.Semester)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Fatalf("timeout not applied: %s", cfg.HTTP.Timeout)
	}
	// File must not clobber untouched defaults.
	if cfg.Services.Auth != DefaultAuthServiceURL {
		t.Fatalf("auth URL default lost: %s", cfg.Services.Auth)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("services: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("P2P_COMPOSITE_SERVICE_URL", "https://override.test")
	t.Setenv("P2P_SEMESTER", "Summer 2026")
	t.Setenv("P2P_HTTP_TIMEOUT", "2s")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Services.Composite != "https://override.test" {
		t.Fatalf("env override not applied: %s", cfg.Services.Composite)
	}
	if cfg.Semester != "Summer 2026" {
		t.Fatalf("semester override not applied: %s", cfg.Semester)
	}
	if cfg.HTTP.Timeout != 2*time.Second {
		t.Fatalf("timeout override not applied: %s", cfg.HTTP.Timeout)
	}
}
