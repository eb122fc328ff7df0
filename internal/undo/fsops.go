package undo

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/risunCode/SurfManager/internal/errs"
)

// restorePath replaces the current state at original with the backup
// contents. The backup must still exist; the ledger verifies before
// touching the original.
func restorePath(backup, original string) error {
	info, err := os.Stat(backup)
	if err != nil {
		return fmt.Errorf("%w: backup missing: %s", errs.ErrNotFound, backup)
	}

	if err := os.RemoveAll(original); err != nil {
		return fmt.Errorf("failed to remove current state: %w", err)
	}

	if info.IsDir() {
		return copyDir(backup, original)
	}
	return copyFile(backup, original)
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// removeBackup deletes an evicted or cleared backup; failures are silent,
// the ledger index no longer references the path either way.
func removeBackup(path string) {
	_ = os.RemoveAll(path)
}

func pathSize(path string) int64 {
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
