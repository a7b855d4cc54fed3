package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Path != "data/festival_data.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.MusicBrainz.BaseURL != "https://musicbrainz.org/ws/2" {
		t.Errorf("MusicBrainz.BaseURL = %q", cfg.MusicBrainz.BaseURL)
	}
	if cfg.OCR.Timeout != 120*time.Second {
		t.Errorf("OCR.Timeout = %v", cfg.OCR.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
store:
  path: /var/lib/headliner/kb.json
musicbrainz:
  base_url: https://mb.internal.test/ws/2
inbox:
  path: /posters
  debounce: 5s
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Path != "/var/lib/headliner/kb.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.MusicBrainz.BaseURL != "https://mb.internal.test/ws/2" {
		t.Errorf("MusicBrainz.BaseURL = %q", cfg.MusicBrainz.BaseURL)
	}
	if cfg.Inbox.Path != "/posters" || cfg.Inbox.Debounce != 5*time.Second {
		t.Errorf("Inbox = %+v", cfg.Inbox)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	// File did not set OCR timeout; default must survive.
	if cfg.OCR.Timeout != 120*time.Second {
		t.Errorf("OCR.Timeout = %v", cfg.OCR.Timeout)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Path != "data/festival_data.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store:\n  path: /from/file.json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HL_STORE_PATH", "/from/env.json")
	t.Setenv("HL_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Path != "/from/env.json" {
		t.Errorf("Store.Path = %q, want env override", cfg.Store.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestValidateRequiresStorePath(t *testing.T) {
	cfg := Default()
	cfg.Store.Path = ""
	if err := cfg.validate(); err == nil {
		t.Error("validate() expected error for empty store path")
	}
}

func TestValidateBackfillsTimers(t *testing.T) {
	cfg := Default()
	cfg.OCR.Timeout = 0
	cfg.Inbox.Debounce = -time.Second
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}
	if cfg.OCR.Timeout != 120*time.Second {
		t.Errorf("OCR.Timeout = %v", cfg.OCR.Timeout)
	}
	if cfg.Inbox.Debounce != 2*time.Second {
		t.Errorf("Inbox.Debounce = %v", cfg.Inbox.Debounce)
	}
}
