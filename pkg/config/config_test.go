package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Processing.MaxUploadSize != 100*1024*1024 {
		t.Fatalf("unexpected max upload size %d", cfg.Processing.MaxUploadSize)
	}
	if cfg.Sync.Timeout != 15*time.Second {
		t.Fatalf("unexpected sync timeout %s", cfg.Sync.Timeout)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("expected two default origins, got %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENABLE_LOCAL_MODE", "true")
	t.Setenv("SYNC_PENDING_ONLY", "true")
	t.Setenv("DB_NAME", "secretary_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.Processing.LocalMode {
		t.Fatal("expected local mode")
	}
	if !cfg.Sync.PendingOnly {
		t.Fatal("expected pending-only sync policy")
	}
	if got := cfg.GetDatabaseDSN(); got != "host=localhost port=5432 user=postgres password=postgres dbname=secretary_test sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for default secret in production")
	}
}
