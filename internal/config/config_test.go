package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
	if cfg.Schedule.DailyCron == "" {
		t.Error("empty daily cron")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
storage:
  backend: postgres
  postgres_dsn: postgres://localhost/pricewatch
feed:
  source: http
  base_url: https://feeds.example/daily
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Backend != "postgres" || cfg.Storage.PostgresDSN == "" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Feed.BaseURL != "https://feeds.example/daily" {
		t.Errorf("base url = %q", cfg.Feed.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
`)
	t.Setenv("SERVER_ADDR", ":7777")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://env/db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.PostgresDSN != "postgres://env/db" {
		t.Errorf("dsn = %q", cfg.Storage.PostgresDSN)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Storage.Backend = "postgres"
	cfg.Feed.Source = "s3"
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing postgres dsn error")
	}

	cfg.Storage.PostgresDSN = "postgres://x"
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing bucket error")
	}

	cfg.Feed.S3.Bucket = "feeds"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cfg.Storage.Backend = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected backend error")
	}
}
