package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/risunCode/SurfManager/internal/config"
)

func testConfig(dataPath string) *config.Config {
	cfg := config.Default()
	cfg.Applications = map[string]config.AppDefinition{
		"cursor": {
			DisplayName:  "Cursor",
			DataPaths:    []string{dataPath},
			ProcessNames: []string{"cursor"},
		},
		"ghost": {
			DisplayName: "Ghost",
			DataPaths:   []string{filepath.Join(dataPath, "no-such-subdir")},
		},
	}
	return cfg
}

func TestScan(t *testing.T) {
	dataPath := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataPath, "state.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to seed data path: %v", err)
	}

	probeCalls := 0
	probe := func(config.AppDefinition) bool {
		probeCalls++
		return true
	}

	r := New(testConfig(dataPath), probe, "")
	apps := r.Scan(true)

	cursor, ok := apps["cursor"]
	if !ok || !cursor.Installed {
		t.Fatal("Existing data path was not detected as installed")
	}
	if cursor.Path != dataPath {
		t.Errorf("Path = %q, want %q", cursor.Path, dataPath)
	}
	if cursor.Size == 0 {
		t.Error("Size = 0 for a non-empty data path")
	}
	if !cursor.Running {
		t.Error("Running = false despite a positive probe")
	}

	ghost, ok := apps["ghost"]
	if !ok {
		t.Fatal("Unmatched application missing from scan results")
	}
	if ghost.Installed {
		t.Error("Missing data path was reported installed")
	}

	// Incremental scan re-probes running only; no re-walk of the filesystem.
	callsBefore := probeCalls
	again := r.Scan(false)
	if probeCalls <= callsBefore {
		t.Error("Incremental scan did not re-probe running status")
	}
	if again["cursor"].Size != cursor.Size {
		t.Error("Incremental scan changed the cached size")
	}
}

func TestScanReturnsCopies(t *testing.T) {
	dataPath := t.TempDir()
	r := New(testConfig(dataPath), nil, "")

	first := r.Scan(true)
	first["cursor"].Installed = false
	first["cursor"].Path = "poisoned"

	second := r.Scan(false)
	if second["cursor"].Path == "poisoned" {
		t.Error("Mutating a scan result leaked into the registry's state")
	}
}

func TestGetScansOnDemand(t *testing.T) {
	dataPath := t.TempDir()
	r := New(testConfig(dataPath), nil, "")

	info, ok := r.Get("cursor")
	if !ok {
		t.Fatal("Get did not trigger an initial scan")
	}
	if !info.Installed {
		t.Error("Get returned Installed=false for an existing path")
	}

	if _, ok := r.Get("unknown"); ok {
		t.Error("Get returned ok for an unconfigured name")
	}
}

func TestDetectedPathsCachePersists(t *testing.T) {
	dataPath := t.TempDir()
	cachePath := filepath.Join(t.TempDir(), "detected.yaml")

	r := New(testConfig(dataPath), nil, cachePath)
	r.Scan(true)

	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("Scan did not persist the detected-paths cache: %v", err)
	}

	// A new registry warm-starts from the cache file.
	r2 := New(testConfig(dataPath), nil, cachePath)
	info, ok := r2.Get("cursor")
	if !ok || !info.Installed {
		t.Error("Cached installation facts were not loaded")
	}
	if info.Path != dataPath {
		t.Errorf("Cached Path = %q, want %q", info.Path, dataPath)
	}
}

func TestWarmStartScanRecomputesSize(t *testing.T) {
	dataPath := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataPath, "state.json"), []byte("123456789"), 0644); err != nil {
		t.Fatalf("Failed to seed data path: %v", err)
	}
	cachePath := filepath.Join(t.TempDir(), "detected.yaml")

	r := New(testConfig(dataPath), nil, cachePath)
	first := r.Scan(true)
	if first["cursor"].Size != 9 {
		t.Fatalf("Initial Size = %d, want 9", first["cursor"].Size)
	}

	// An incremental scan in a fresh process must not serve the cache's
	// partial entry: size is recomputed from the filesystem.
	r2 := New(testConfig(dataPath), nil, cachePath)
	warm := r2.Scan(false)
	if warm["cursor"].Size != 9 {
		t.Errorf("Warm-start incremental Size = %d, want 9", warm["cursor"].Size)
	}

	// Get on a warm-started registry resolves the partial entry too.
	r3 := New(testConfig(dataPath), nil, cachePath)
	info, ok := r3.Get("cursor")
	if !ok {
		t.Fatal("Get failed on a warm-started registry")
	}
	if info.Size != 9 {
		t.Errorf("Warm-start Get Size = %d, want 9", info.Size)
	}
}

func TestIncrementalScanPicksUpNewApplications(t *testing.T) {
	dataPath := t.TempDir()
	otherPath := t.TempDir()
	cachePath := filepath.Join(t.TempDir(), "detected.yaml")

	r := New(testConfig(dataPath), nil, cachePath)
	r.Scan(true)

	// A second process starts with an application added to the config
	// after the cache was written.
	cfg := testConfig(dataPath)
	cfg.Applications["windsurf"] = config.AppDefinition{
		DisplayName: "Windsurf",
		DataPaths:   []string{otherPath},
	}
	r2 := New(cfg, nil, cachePath)

	apps := r2.Scan(false)
	info, ok := apps["windsurf"]
	if !ok {
		t.Fatal("Newly configured application missing from incremental scan")
	}
	if !info.Installed || info.Path != otherPath {
		t.Errorf("New application = %+v, want installed at %q", info, otherPath)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("SURFTEST_HOME", "/opt/home")

	tests := []struct {
		in   string
		want string
	}{
		{"$SURFTEST_HOME/data", filepath.FromSlash("/opt/home/data")},
		{"${SURFTEST_HOME}/data", filepath.FromSlash("/opt/home/data")},
		{"%SURFTEST_HOME%/data", filepath.FromSlash("/opt/home/data")},
		{"plain/path", filepath.FromSlash("plain/path")},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
