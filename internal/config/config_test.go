package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "cb.json")
	content := `{"debug": true, "maxCallDepth": 500}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Debug == nil || !*cfg.Debug {
		t.Errorf("Debug: got %v, want true", cfg.Debug)
	}
	if cfg.MaxCallDepth == nil || *cfg.MaxCallDepth != 500 {
		t.Errorf("MaxCallDepth: got %v, want 500", cfg.MaxCallDepth)
	}
}

func TestLoadWalksUpToParent(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "project", "src")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}
	configPath := filepath.Join(tmpDir, "project", "cb.json")
	if err := os.WriteFile(configPath, []byte(`{"debug": true}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundAt, err := Load(subDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected to find a config in the parent directory")
	}
	if foundAt != configPath {
		t.Errorf("foundAt: got %q, want %q", foundAt, configPath)
	}
}

func TestLoadReturnsNilWhenNotFound(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, foundAt, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil || foundAt != "" {
		t.Fatalf("expected no config to be found, got %v at %q", cfg, foundAt)
	}
}

func TestMergePrefersCLIOverConfig(t *testing.T) {
	cfgDebug := true
	cfg := &Config{Debug: &cfgDebug}
	cliDebug := false
	opts := cfg.Merge(CLIOverrides{Debug: &cliDebug})
	if opts.Debug {
		t.Fatalf("expected CLI override to win, got Debug=true")
	}
}

func TestToOptionsDefaultsWhenNil(t *testing.T) {
	var cfg *Config
	opts := cfg.ToOptions()
	if opts != DefaultOptions() {
		t.Fatalf("expected defaults for a nil config, got %+v", opts)
	}
}
