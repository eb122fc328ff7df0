package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Failed to load missing config: %v", err)
	}

	if cfg.Settings.MaxUndoDepth != 10 {
		t.Errorf("MaxUndoDepth = %d, want 10", cfg.Settings.MaxUndoDepth)
	}
	if cfg.Settings.ProcessMatch != MatchSubstring {
		t.Errorf("ProcessMatch = %q, want %q", cfg.Settings.ProcessMatch, MatchSubstring)
	}
	if len(cfg.Settings.IdentityKeys) == 0 {
		t.Error("Default identity keys are empty")
	}
	if len(cfg.Settings.CacheDirs) == 0 {
		t.Error("Default cache dirs are empty")
	}
}

func TestLoadCorruptFileIsBackedUpAndDefaulted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("applications: [not: valid: yaml"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Corrupt config should fall back to defaults, got: %v", err)
	}
	if cfg.Settings.MaxUndoDepth != 10 {
		t.Errorf("MaxUndoDepth = %d, want default 10", cfg.Settings.MaxUndoDepth)
	}

	// The broken original is preserved for inspection.
	if _, err := os.Stat(path + ".backup"); err != nil {
		t.Errorf("Corrupt config was not backed up: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Corrupt config still present at the original path")
	}
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
applications:
  cursor:
    data_paths:
      - $APPDATA/Cursor
    process_names:
      - cursor
settings:
  max_undo_depth: 3
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Settings.MaxUndoDepth != 3 {
		t.Errorf("MaxUndoDepth = %d, want 3", cfg.Settings.MaxUndoDepth)
	}
	if cfg.Settings.BackupRoot == "" {
		t.Error("Missing backup_root was not filled from defaults")
	}
	if len(cfg.Settings.SessionKeys) == 0 {
		t.Error("Missing session_keys were not filled from defaults")
	}

	app, ok := cfg.App("cursor")
	if !ok {
		t.Fatal("Configured application missing")
	}
	if app.DisplayName != "cursor" {
		t.Errorf("DisplayName = %q, want the map key", app.DisplayName)
	}
	if app.ResetStrategy != StrategyWipe {
		t.Errorf("ResetStrategy = %q, want default %q", app.ResetStrategy, StrategyWipe)
	}
}

func TestLoadPreservesExplicitStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
applications:
  windsurf:
    display_name: Windsurf
    reset_strategy: mutate
settings:
  process_match: exact
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	app, _ := cfg.App("windsurf")
	if app.ResetStrategy != StrategyMutate {
		t.Errorf("ResetStrategy = %q, want %q", app.ResetStrategy, StrategyMutate)
	}
	if cfg.Settings.ProcessMatch != MatchExact {
		t.Errorf("ProcessMatch = %q, want %q", cfg.Settings.ProcessMatch, MatchExact)
	}
}

func TestAppUnknown(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.App("definitely-not-configured"); ok {
		t.Error("App returned ok for an unknown name")
	}
}
