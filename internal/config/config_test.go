package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timer.TickMs != 1000 || cfg.Sync.TimeoutSec != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Sync.BackupFilename != "timekeeper_app_data.json" || cfg.Sync.CalendarName != "timekeeper" {
		t.Fatalf("unexpected sync defaults: %+v", cfg.Sync)
	}
	if cfg.Database.Path == "" || cfg.Log.File == "" {
		t.Fatal("paths should default")
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "database:\n  path: /tmp/tk.db\ntimer:\n  tick_ms: 250\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Path != "/tmp/tk.db" {
		t.Fatalf("expected db path override, got %q", cfg.Database.Path)
	}
	if cfg.Timer.TickInterval() != 250*time.Millisecond {
		t.Fatalf("unexpected tick interval %v", cfg.Timer.TickInterval())
	}
	if cfg.Sync.Timeout() != 30*time.Second {
		t.Fatal("unset keys should keep defaults")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("timer:\n  tick_ms: 0\n"), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("timer: [unterminated"), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Sync.CalendarName = "work-log"
	cfg.Timer.TickMs = 500

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Sync.CalendarName != "work-log" || got.Timer.TickMs != 500 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	if filepath.Base(DefaultConfigPath()) != "config.yaml" {
		t.Fatalf("unexpected path %q", DefaultConfigPath())
	}
}
