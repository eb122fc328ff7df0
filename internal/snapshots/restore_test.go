package snapshots

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/risunCode/SurfManager/internal/errs"
)

func TestRestoreRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "appdata")
	files := map[string]string{
		"settings.json":     `{"machineId": "abc"}`,
		"nested/state.json": `{"deep": true}`,
	}
	writeTree(t, source, files)

	m := New(filepath.Join(tempDir, "backups"))
	manifest, err := m.Create(source, "cursor", "")
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	// Destroy the source, then restore over it.
	if err := os.RemoveAll(source); err != nil {
		t.Fatalf("Failed to remove source: %v", err)
	}
	if err := m.Restore(manifest.BackupPath, source); err != nil {
		t.Fatalf("Failed to restore backup: %v", err)
	}

	for rel, want := range files {
		data, err := os.ReadFile(filepath.Join(source, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("Restored file %s missing: %v", rel, err)
		}
		if string(data) != want {
			t.Errorf("Restored %s = %q, want %q", rel, data, want)
		}
	}

	// The manifest sidecar must not leak into the restored tree.
	if _, err := os.Stat(filepath.Join(source, manifestName)); !os.IsNotExist(err) {
		t.Error("Manifest sidecar was restored into the application state")
	}

	// Restored content hashes to the manifest checksum.
	sum, err := checksumTree(source)
	if err != nil {
		t.Fatalf("Failed to checksum restored tree: %v", err)
	}
	if sum != manifest.Checksum {
		t.Errorf("Restored checksum = %q, want %q", sum, manifest.Checksum)
	}
}

func TestRestoreWipesExistingTarget(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "appdata")
	writeTree(t, source, map[string]string{"keep.json": "{}"})

	m := New(filepath.Join(tempDir, "backups"))
	manifest, err := m.Create(source, "cursor", "")
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	// A file written after the backup must not survive the restore.
	writeTree(t, source, map[string]string{"stray.json": "{}"})
	if err := m.Restore(manifest.BackupPath, source); err != nil {
		t.Fatalf("Failed to restore backup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(source, "stray.json")); !os.IsNotExist(err) {
		t.Error("stray.json survived the restore")
	}
}

func TestRestoreMissingBackup(t *testing.T) {
	tempDir := t.TempDir()
	m := New(filepath.Join(tempDir, "backups"))

	err := m.Restore(filepath.Join(tempDir, "no-such-backup"), filepath.Join(tempDir, "target"))
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "appdata")
	writeTree(t, source, map[string]string{
		"User/settings.json":       `{"machineId": "abc"}`,
		"User/globalStorage/x.db":  "binary",
		"machineid":                "token",
		"unrelated/not-backed.txt": "skip me",
	})

	m := New(filepath.Join(tempDir, "backups"))
	var messages []string
	result, err := m.CreateArchive(source, "cursor",
		[]string{"User", "machineid", "Preferences"}, "snap",
		func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}

	if result.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", result.TotalFiles)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "Preferences" {
		t.Errorf("Missing = %v, want [Preferences]", result.Missing)
	}
	// Every declared item is accounted for in exactly one bucket.
	if got := len(result.Found) + len(result.Missing) + len(result.Failed); got != 3 {
		t.Errorf("Found+Missing+Failed = %d, want 3 declared items", got)
	}
	if len(messages) == 0 {
		t.Error("No progress messages emitted")
	}

	target := filepath.Join(tempDir, "restored")
	if err := m.Restore(result.Path, target); err != nil {
		t.Fatalf("Failed to restore archive: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(target, "User", "settings.json"))
	if err != nil {
		t.Fatalf("Restored archive entry missing: %v", err)
	}
	if string(data) != `{"machineId": "abc"}` {
		t.Errorf("Restored content = %q", data)
	}

	// The undeclared item stays out of the archive.
	if _, err := os.Stat(filepath.Join(target, "unrelated")); !os.IsNotExist(err) {
		t.Error("Undeclared item was archived")
	}
}

func TestArchiveRequiresItems(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "appdata")
	writeTree(t, source, map[string]string{"a.txt": "x"})

	m := New(filepath.Join(tempDir, "backups"))
	if _, err := m.CreateArchive(source, "cursor", nil, "", nil); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestListAndDelete(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "appdata")
	writeTree(t, source, map[string]string{"a.json": "{}"})

	m := New(filepath.Join(tempDir, "backups"))
	if _, err := m.Create(source, "cursor", "older"); err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}
	if _, err := m.CreateArchive(source, "cursor", []string{"a.json"}, "archived", nil); err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}

	snaps, err := m.List("cursor")
	if err != nil {
		t.Fatalf("Failed to list backups: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("List returned %d snapshots, want 2", len(snaps))
	}

	var sawArchive bool
	for _, s := range snaps {
		if s.Compressed {
			sawArchive = true
		}
	}
	if !sawArchive {
		t.Error("Archive-form backup missing from listing")
	}

	if err := m.Delete(snaps[0].Path); err != nil {
		t.Fatalf("Failed to delete backup: %v", err)
	}
	if err := m.Delete(snaps[0].Path); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Deleting a deleted backup: err = %v, want ErrNotFound", err)
	}

	// An app with no backups lists empty without error.
	empty, err := m.List("nothing")
	if err != nil || len(empty) != 0 {
		t.Errorf("List for unknown app = (%v, %v), want empty", empty, err)
	}
}
