package snapshots

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"github.com/risunCode/SurfManager/internal/errs"
)

// CreateArchive writes only the declared items (files or whole directories)
// from source into a single .zip backup for appName, preserving paths
// relative to source. Missing items are reported in the result and counted,
// not treated as failures; the summary is always populated on success.
func (m *Manager) CreateArchive(source, appName string, items []string, name string, progress ProgressFunc) (*ArchiveResult, error) {
	if err := ValidatePath(source); err != nil {
		return nil, fmt.Errorf("invalid source path: %w", err)
	}
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("%w: source path does not exist: %s", errs.ErrNotFound, source)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no backup items declared for %s", errs.ErrValidation, appName)
	}

	if name == "" {
		name = fmt.Sprintf("%s_backup_%s", appName, nowStamp())
	}
	name = SanitizeName(name)

	appDir := filepath.Join(m.root, appName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	archivePath := filepath.Join(appDir, name+".zip")

	f, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})

	result := &ArchiveResult{Path: archivePath}
	emit := func(format string, args ...interface{}) {
		if progress != nil {
			progress(fmt.Sprintf(format, args...))
		}
	}

	emit("scanning %d items", len(items))

	for _, item := range items {
		itemPath := filepath.Join(source, filepath.FromSlash(item))
		info, err := os.Stat(itemPath)
		if err != nil {
			result.Missing = append(result.Missing, item)
			emit("not found: %s", item)
			continue
		}

		if info.IsDir() {
			count := archiveDir(zw, source, itemPath)
			result.TotalFiles += count
			result.Found = append(result.Found, item)
			emit("backed up: %s (%d files)", item, count)
			continue
		}

		if err := archiveFile(zw, itemPath, filepath.ToSlash(item)); err != nil {
			result.Failed = append(result.Failed, item)
			emit("failed: %s", item)
			continue
		}
		result.TotalFiles++
		result.Found = append(result.Found, item)
		emit("backed up: %s", item)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	emit("summary: %d items backed up, %d not found, %d failed",
		len(result.Found), len(result.Missing), len(result.Failed))
	return result, nil
}

// archiveDir adds every regular file under dir to the archive, with entry
// names relative to source. Per-file failures are tolerated.
func archiveDir(zw *zip.Writer, source, dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return nil
		}
		if err := archiveFile(zw, path, filepath.ToSlash(rel)); err == nil {
			count++
		}
		return nil
	})
	return count
}

func archiveFile(zw *zip.Writer, path, entryName string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(entryName)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
