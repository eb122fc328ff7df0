// Package config defines the declarative application definitions and engine
// settings consumed by the rest of the engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Reset strategies for the purge phase.
const (
	StrategyWipe   = "wipe"   // delete the data root, recreate it empty
	StrategyMutate = "mutate" // rewrite identity artifacts in place
)

// Process-name matching modes.
const (
	MatchSubstring = "substring" // case-insensitive substring (catches renamed binaries)
	MatchExact     = "exact"     // case-insensitive whole-name comparison
)

// AppDefinition describes one managed application. Path templates may contain
// environment-variable placeholders in either $VAR or %VAR% form.
type AppDefinition struct {
	DisplayName   string   `yaml:"display_name"`
	DataPaths     []string `yaml:"data_paths"`
	ExePaths      []string `yaml:"exe_paths"`
	ProcessNames  []string `yaml:"process_names"`
	BackupItems   []string `yaml:"backup_items"`
	ResetStrategy string   `yaml:"reset_strategy"`
}

// Settings holds engine-wide tunables.
type Settings struct {
	BackupRoot      string   `yaml:"backup_root"`
	UndoRoot        string   `yaml:"undo_root"`
	MaxUndoDepth    int      `yaml:"max_undo_depth"`
	ProcessMatch    string   `yaml:"process_match"`
	CloseTimeout    int      `yaml:"close_timeout_seconds"`
	CompressBackups bool     `yaml:"compress_backups"`
	IdentityKeys    []string `yaml:"identity_keys"`
	SessionKeys     []string `yaml:"session_keys"`
	CacheDirs       []string `yaml:"cache_dirs"`
}

// Config is the root of the declarative configuration contract.
type Config struct {
	Applications map[string]AppDefinition `yaml:"applications"`
	Settings     Settings                 `yaml:"settings"`
}

// DefaultPath returns the per-user config location (~/.surfmanager/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".surfmanager", "config.yaml"), nil
}

// Load reads the configuration at path. A missing file yields the defaults.
// A corrupt file is renamed aside to <path>.backup and the defaults are used,
// so a broken config never blocks the engine.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		// Preserve the broken file for inspection, then fall back.
		backupPath := path + ".backup"
		if renameErr := os.Rename(path, backupPath); renameErr == nil {
			fmt.Fprintf(os.Stderr, "Warning: config corrupted (%v), backed up to %s\n", err, backupPath)
		}
		return Default(), nil
	}

	cfg.normalize()
	return cfg, nil
}

// App returns the definition for name, or false when it is not configured.
func (c *Config) App(name string) (AppDefinition, bool) {
	def, ok := c.Applications[name]
	return def, ok
}

// normalize fills zero-valued settings back in from the defaults so a partial
// settings block does not disable the engine's guards.
func (c *Config) normalize() {
	def := Default()
	s := &c.Settings
	if s.BackupRoot == "" {
		s.BackupRoot = def.Settings.BackupRoot
	}
	if s.UndoRoot == "" {
		s.UndoRoot = def.Settings.UndoRoot
	}
	if s.MaxUndoDepth <= 0 {
		s.MaxUndoDepth = def.Settings.MaxUndoDepth
	}
	if s.ProcessMatch != MatchExact {
		s.ProcessMatch = MatchSubstring
	}
	if s.CloseTimeout <= 0 {
		s.CloseTimeout = def.Settings.CloseTimeout
	}
	if len(s.IdentityKeys) == 0 {
		s.IdentityKeys = def.Settings.IdentityKeys
	}
	if len(s.SessionKeys) == 0 {
		s.SessionKeys = def.Settings.SessionKeys
	}
	if len(s.CacheDirs) == 0 {
		s.CacheDirs = def.Settings.CacheDirs
	}
	for name, app := range c.Applications {
		if app.DisplayName == "" {
			app.DisplayName = name
		}
		if app.ResetStrategy != StrategyMutate {
			app.ResetStrategy = StrategyWipe
		}
		c.Applications[name] = app
	}
}
