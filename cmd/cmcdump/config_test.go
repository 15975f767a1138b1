package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmcdump.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "operation: currency\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Scrape.Convert != "USD" || cfg.Scrape.TimeoutSec != 15 {
		t.Errorf("scrape defaults = %+v", cfg.Scrape)
	}
	if cfg.Output.Dir != "dumps" || cfg.Logging.Level != "info" {
		t.Errorf("output/logging defaults = %+v / %+v", cfg.Output, cfg.Logging)
	}
}

func TestLoadConfig_InvalidOperation(t *testing.T) {
	path := writeConfig(t, "operation: everything\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("unknown operation must be rejected")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, "operation: currency\nscrape:\n  consumers: 4\n")

	t.Setenv("CMCDUMP_OPERATION", "markets")
	t.Setenv("CMCDUMP_CONSUMERS", "8")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Operation != "markets" {
		t.Errorf("operation = %q, want env override", cfg.Operation)
	}
	if cfg.Scrape.Consumers != 8 {
		t.Errorf("consumers = %d, want 8", cfg.Scrape.Consumers)
	}
}

func TestConfig_HistoricalWindow(t *testing.T) {
	path := writeConfig(t, `
operation: historical
scrape:
  start: "2017-08-24"
  end: "2017-08-26"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	window, err := cfg.HistoricalWindow()
	if err != nil {
		t.Fatalf("HistoricalWindow failed: %v", err)
	}
	if !window[1].After(window[0]) {
		t.Errorf("window = %v", window)
	}
}

func TestConfig_HistoricalRequiresWindow(t *testing.T) {
	path := writeConfig(t, "operation: historical\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("historical without a window must be rejected")
	}
}
