package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.HistoryCapacity != 8 || cfg.DefaultPageSize != 20 {
		t.Fatalf("defaults wrong: %#v", cfg)
	}
	if cfg.Limits.MaxSlotsPerTemplate == 0 || cfg.Limits.MaxValueBytes == 0 || cfg.Limits.MaxPageSize == 0 {
		t.Fatalf("limits unset: %#v", cfg.Limits)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"historyCapacity": 16, "limits": {"maxPageSize": 50}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HistoryCapacity != 16 {
		t.Fatalf("historyCapacity = %d", cfg.HistoryCapacity)
	}
	if cfg.Limits.MaxPageSize != 50 {
		t.Fatalf("maxPageSize = %d", cfg.Limits.MaxPageSize)
	}
	// untouched fields keep defaults
	if cfg.DefaultPageSize != 20 {
		t.Fatalf("defaultPageSize = %d", cfg.DefaultPageSize)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "historyCapacity: 4\ndefaultPageSize: 10\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HistoryCapacity != 4 || cfg.DefaultPageSize != 10 {
		t.Fatalf("yaml not applied: %#v", cfg)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("empty path should return defaults")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("MAJIN_HISTORY_CAPACITY", "12")
	t.Setenv("MAJIN_DEFAULT_PAGE_SIZE", "30")
	t.Setenv("MAJIN_MAX_PAGE_SIZE", "500")
	t.Setenv("MAJIN_MAX_VALUE_BYTES", "not-a-number")

	cfg := Default()
	FromEnv(&cfg)
	if cfg.HistoryCapacity != 12 || cfg.DefaultPageSize != 30 {
		t.Fatalf("env overlay missed: %#v", cfg)
	}
	if cfg.Limits.MaxPageSize != 500 {
		t.Fatalf("maxPageSize = %d", cfg.Limits.MaxPageSize)
	}
	// malformed values are ignored
	if cfg.Limits.MaxValueBytes != Default().Limits.MaxValueBytes {
		t.Fatalf("malformed env applied: %d", cfg.Limits.MaxValueBytes)
	}
}
