package snapshots

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/risunCode/SurfManager/internal/errs"
)

// checksumTree computes a SHA-256 digest over every regular file under root,
// excluding the manifest sidecar. Files are visited in sorted relative-path
// order with the path mixed into the digest, so the result is reproducible
// regardless of walk order and sensitive to renames.
func checksumTree(root string) (string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() || d.Name() == manifestName {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	hasher := sha256.New()
	for _, rel := range paths {
		// Slash form keeps the digest identical across platforms.
		io.WriteString(hasher, filepath.ToSlash(rel))

		f, err := os.Open(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		_, copyErr := io.Copy(hasher, f)
		f.Close()
		if copyErr != nil {
			continue
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verify recomputes the checksum of a directory-form backup and compares it
// to the manifest. A mismatch is reported as ErrCorruption.
func (m *Manager) Verify(backupPath string) (*Manifest, error) {
	manifest, err := readManifest(backupPath)
	if err != nil {
		return nil, err
	}

	actual, err := checksumTree(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compute checksum: %w", err)
	}
	if actual != manifest.Checksum {
		return manifest, fmt.Errorf("%w: checksum mismatch (manifest %s, actual %s)",
			errs.ErrCorruption, manifest.Checksum, actual)
	}
	return manifest, nil
}
