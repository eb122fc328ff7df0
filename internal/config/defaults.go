package config

import (
	"os"
	"path/filepath"
)

// Default identity keys: field names understood to hold machine/device/session
// identifiers subject to regeneration.
var defaultIdentityKeys = []string{
	"machineId", "deviceId", "telemetryId", "installationId",
	"anonymousId", "userId", "sessionId", "clientId",
}

// Default session keys: field names whose presence represents session state
// to be deleted outright.
var defaultSessionKeys = []string{
	"session", "sessions", "sessionData", "sessionInfo",
}

// Default cache directory names searched under an application's data root
// during the cache purge phase.
var defaultCacheDirs = []string{
	"IndexedDB", "Local Storage", "Cache", "Code Cache",
	"GPUCache", "blob_storage", "logs", "CachedData",
	"CachedExtensions", "ShaderCache", "WebStorage",
}

// Default returns the built-in configuration. Applications are expected to
// come from the user's config file; the defaults only carry settings.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Applications: map[string]AppDefinition{},
		Settings: Settings{
			BackupRoot:      filepath.Join(home, "Documents", "SurfManager", "Backups"),
			UndoRoot:        filepath.Join(home, ".surfmanager", "undo"),
			MaxUndoDepth:    10,
			ProcessMatch:    MatchSubstring,
			CloseTimeout:    10,
			CompressBackups: true,
			IdentityKeys:    append([]string(nil), defaultIdentityKeys...),
			SessionKeys:     append([]string(nil), defaultSessionKeys...),
			CacheDirs:       append([]string(nil), defaultCacheDirs...),
		},
	}
}
