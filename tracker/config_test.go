package tracker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("got %+v, want defaults %+v", cfg, DefaultConfig())
	}
	if cfg.Version != "1" {
		t.Fatalf("version = %q, want %q", cfg.Version, "1")
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("config.json not written: %v", err)
	}
	if !strings.Contains(string(data), `"version": "1"`) {
		t.Fatalf("version not written as a string: %s", data)
	}
}

func TestLoadConfigKeepsSavedValues(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.InsuranceCost = 1372
	cfg.UpdateIntervalSecs = 2
	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != cfg {
		t.Fatalf("got %+v, want %+v", got, cfg)
	}
	if got.UpdateInterval() != 2*time.Second {
		t.Fatalf("UpdateInterval = %v, want 2s", got.UpdateInterval())
	}
}

func TestConfigIntervalFloors(t *testing.T) {
	var cfg Config // all zero
	if got := cfg.UpdateInterval(); got != 5*time.Second {
		t.Fatalf("UpdateInterval = %v, want 5s", got)
	}
	if got := cfg.AutosaveInterval(); got != time.Minute {
		t.Fatalf("AutosaveInterval = %v, want 1m", got)
	}
	if got := cfg.DeathDebounce(); got != 10*time.Second {
		t.Fatalf("DeathDebounce = %v, want 10s", got)
	}
}
