package snapshots

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/risunCode/SurfManager/internal/errs"
)

// List enumerates both directory-form and archive-form backups under the
// application's backup root, newest first. Entries without a readable
// manifest are listed from filesystem metadata alone.
func (m *Manager) List(appName string) ([]*Snapshot, error) {
	appDir := filepath.Join(m.root, appName)
	entries, err := os.ReadDir(appDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var snaps []*Snapshot
	for _, entry := range entries {
		path := filepath.Join(appDir, entry.Name())

		if entry.IsDir() {
			snap := &Snapshot{AppName: appName, Path: path}
			if manifest, err := readManifest(path); err == nil {
				snap.TotalFiles = manifest.TotalFiles
				snap.TotalSize = manifest.TotalSize
				snap.Checksum = manifest.Checksum
				snap.CreatedAt = parseStamp(manifest.Timestamp, path)
			} else {
				snap.CreatedAt = modTime(path)
				snap.TotalSize = treeSize(path)
			}
			snaps = append(snaps, snap)
			continue
		}

		if strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			snap := &Snapshot{
				AppName:    appName,
				Path:       path,
				Compressed: true,
				CreatedAt:  modTime(path),
			}
			if info, err := entry.Info(); err == nil {
				snap.TotalSize = info.Size()
			}
			snaps = append(snaps, snap)
		}
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	return snaps, nil
}

// Delete removes a backup in either form. A missing path is a failure, not
// a silent no-op.
func (m *Manager) Delete(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: backup not found: %s", errs.ErrNotFound, path)
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to delete backup: %w", err)
		}
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

// parseStamp decodes a manifest timestamp, falling back to the path's
// modification time when the stamp is malformed.
func parseStamp(stamp, path string) time.Time {
	if t, err := time.ParseInLocation(timestampLayout, stamp, time.Local); err == nil {
		return t
	}
	return modTime(path)
}

func modTime(path string) time.Time {
	if info, err := os.Stat(path); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}
