package snapshots

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/risunCode/SurfManager/internal/errs"
)

// Restore repopulates targetPath from a backup, detecting directory versus
// archive form by extension. The target's current contents are wiped first;
// the wipe is best-effort, not transactional (a failure part-way leaves the
// target in a mixed state — the undo ledger is the recovery path).
func (m *Manager) Restore(backupPath, targetPath string) error {
	if strings.EqualFold(filepath.Ext(backupPath), ".zip") {
		return m.restoreArchive(backupPath, targetPath)
	}
	return m.restoreDirectory(backupPath, targetPath)
}

func (m *Manager) restoreDirectory(backupPath, targetPath string) error {
	info, err := os.Stat(backupPath)
	if err != nil {
		return fmt.Errorf("%w: backup path does not exist: %s", errs.ErrNotFound, backupPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: backup path is not a directory: %s", errs.ErrValidation, backupPath)
	}

	if err := wipeTarget(targetPath); err != nil {
		return err
	}

	// The manifest sidecar describes the backup; it does not belong to the
	// restored application state.
	err = filepath.WalkDir(backupPath, walkCopy(backupPath, targetPath))
	if err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	return nil
}

func (m *Manager) restoreArchive(archivePath, targetPath string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: cannot open archive %s: %v", errs.ErrNotFound, archivePath, err)
	}
	defer reader.Close()

	if err := wipeTarget(targetPath); err != nil {
		return err
	}

	for _, file := range reader.File {
		// Guard against zip-slip: entries must land inside the target.
		destPath := filepath.Join(targetPath, filepath.FromSlash(file.Name))
		if !strings.HasPrefix(destPath, filepath.Clean(targetPath)+string(os.PathSeparator)) {
			continue
		}

		if file.FileInfo().IsDir() {
			_ = os.MkdirAll(destPath, 0755)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			continue
		}

		src, err := file.Open()
		if err != nil {
			continue
		}
		dst, err := os.Create(destPath)
		if err != nil {
			src.Close()
			continue
		}
		_, _ = io.Copy(dst, src)
		src.Close()
		dst.Close()
	}

	return nil
}

// wipeTarget clears the target directory and recreates it empty.
func wipeTarget(targetPath string) error {
	if err := os.RemoveAll(targetPath); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: cannot clear target directory: %v", errs.ErrPermission, err)
		}
		return fmt.Errorf("failed to clear target directory: %w", err)
	}
	if err := os.MkdirAll(targetPath, 0755); err != nil {
		return fmt.Errorf("failed to recreate target directory: %w", err)
	}
	return nil
}

// walkCopy returns a WalkDirFunc copying files from src into dst, excluding
// the manifest sidecar. Per-file failures are tolerated.
func walkCopy(src, dst string) func(string, os.DirEntry, error) error {
	return func(path string, d os.DirEntry, err error) error {
		if err != nil || path == src {
			return nil
		}
		if d.Name() == manifestName {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			_ = os.MkdirAll(target, 0755)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		_, _ = copyFile(path, target)
		return nil
	}
}
