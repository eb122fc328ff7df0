package snapshots

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/risunCode/SurfManager/internal/errs"
)

// Create copies source into a new directory-form backup for appName and
// returns its manifest. name is optional; when empty a timestamped name is
// derived. The backup volume must have at least 1.5x the source size free
// before any file is copied.
//
// Transient files (version control, virtual envs, temp/log/cache names) are
// skipped, and per-file copy failures are tolerated: the manifest records
// what was actually written.
func (m *Manager) Create(source, appName, name string) (*Manifest, error) {
	if err := ValidatePath(source); err != nil {
		return nil, fmt.Errorf("invalid source path: %w", err)
	}
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("%w: source path does not exist: %s", errs.ErrNotFound, source)
	}

	timestamp := nowStamp()
	if name == "" {
		name = fmt.Sprintf("%s_backup_%s", appName, timestamp)
	}
	name = SanitizeName(name)
	backupPath := filepath.Join(m.root, appName, name)

	if err := os.MkdirAll(filepath.Dir(backupPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	if err := m.checkSpace(source); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(backupPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	totalFiles, totalSize := copyTree(source, backupPath)

	checksum, err := checksumTree(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compute checksum: %w", err)
	}

	manifest := &Manifest{
		AppName:    appName,
		SourcePath: source,
		BackupPath: backupPath,
		Timestamp:  timestamp,
		TotalFiles: totalFiles,
		TotalSize:  totalSize,
		Checksum:   checksum,
	}

	if err := writeManifest(backupPath, manifest); err != nil {
		return nil, err
	}

	return manifest, nil
}

// checkSpace fails with ErrInsufficientSpace when the free space on the
// backup volume is below 1.5x the source size.
func (m *Manager) checkSpace(source string) error {
	sourceSize := treeSize(source)
	required := uint64(float64(sourceSize) * spaceFactor)

	free, err := m.freeSpace(m.root)
	if err != nil {
		return fmt.Errorf("failed to determine free disk space: %w", err)
	}
	if free < required {
		return fmt.Errorf("%w: required %s, available %s",
			errs.ErrInsufficientSpace, humanize.Bytes(required), humanize.Bytes(free))
	}
	return nil
}

// copyTree copies source into dest, skipping transient entries. Per-file
// failures are tolerated; the returned counts reflect files actually copied.
func copyTree(source, dest string) (int, int64) {
	totalFiles := 0
	var totalSize int64

	_ = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == source {
			return nil
		}
		if shouldSkip(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return nil
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			_ = os.MkdirAll(target, 0755)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if size, err := copyFile(path, target); err == nil {
			totalFiles++
			totalSize += size
		}
		return nil
	})

	return totalFiles, totalSize
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, err
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	size, err := io.Copy(out, in)
	if err != nil {
		return 0, err
	}
	return size, nil
}

// treeSize sums regular file sizes under path, skipping unreadable entries.
func treeSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

func writeManifest(backupPath string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(backupPath, manifestName), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func readManifest(backupPath string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(backupPath, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: unparseable manifest: %v", errs.ErrCorruption, err)
	}
	return &manifest, nil
}
