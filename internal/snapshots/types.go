// Package snapshots creates, verifies, lists, and restores backups of
// application data, in directory or compressed-archive form.
package snapshots

import (
	"time"

	"github.com/shirou/gopsutil/v4/disk"
)

// manifestName is the sidecar written alongside directory-form backups.
const manifestName = "backup_info.json"

// spaceFactor is the safety multiplier applied to the source size before
// copying: compression overhead, metadata, and headroom.
const spaceFactor = 1.5

// Manifest records the verifiable facts about a directory-form backup.
type Manifest struct {
	AppName    string `json:"app_name"`
	SourcePath string `json:"source_path"`
	BackupPath string `json:"backup_path"`
	Timestamp  string `json:"timestamp"`
	TotalFiles int    `json:"total_files"`
	TotalSize  int64  `json:"total_size"`
	Checksum   string `json:"checksum"`
}

// Snapshot is one listed backup, in either form.
type Snapshot struct {
	AppName    string
	Path       string
	CreatedAt  time.Time
	TotalFiles int
	TotalSize  int64
	Checksum   string
	Compressed bool
}

// ArchiveResult summarizes a compressed backup. Every declared item lands in
// exactly one of Found, Missing, or Failed.
type ArchiveResult struct {
	Path       string
	TotalFiles int
	Found      []string
	Missing    []string
	Failed     []string
}

// ProgressFunc receives per-item progress messages during archive creation.
type ProgressFunc func(message string)

// Manager owns the on-disk snapshot tree under root, one subdirectory per
// application.
type Manager struct {
	root string

	// freeSpace is swapped out by tests to exercise the space guard.
	freeSpace func(path string) (uint64, error)
}

// New creates a snapshot Manager rooted at root.
func New(root string) *Manager {
	return &Manager{
		root: root,
		freeSpace: func(path string) (uint64, error) {
			usage, err := disk.Usage(path)
			if err != nil {
				return 0, err
			}
			return usage.Free, nil
		},
	}
}

// Root returns the backup root directory.
func (m *Manager) Root() string {
	return m.root
}

const timestampLayout = "20060102_150405"

func nowStamp() string {
	return time.Now().Format(timestampLayout)
}
