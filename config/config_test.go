package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendCSV {
		t.Fatalf("want csv backend, got %q", cfg.Backend)
	}
	if cfg.DataDir != filepath.Join("resources", "dat") {
		t.Fatalf("unexpected data dir %q", cfg.DataDir)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "BOOKSTORE_RESOURCE_DIR=" + dir + "\nBOOKSTORE_BACKEND=sqlite\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("BOOKSTORE_RESOURCE_DIR")
		os.Unsetenv("BOOKSTORE_BACKEND")
	})

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Fatalf("want sqlite backend, got %q", cfg.Backend)
	}
	if cfg.DataDir != filepath.Join(dir, "dat") {
		t.Fatalf("data dir should follow resource dir, got %q", cfg.DataDir)
	}
	if cfg.SQLitePath != filepath.Join(dir, "dat", "bookstore.db") {
		t.Fatalf("unexpected sqlite path %q", cfg.SQLitePath)
	}
	if err := cfg.CheckResources(); err != nil {
		t.Fatalf("check resources: %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestCheckResourcesMissing(t *testing.T) {
	cfg := Default()
	cfg.ResourceDir = filepath.Join(t.TempDir(), "nope")
	if err := cfg.CheckResources(); err == nil {
		t.Fatalf("expected error for missing resources")
	}
}
