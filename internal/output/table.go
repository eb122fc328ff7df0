package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/risunCode/SurfManager/internal/registry"
	"github.com/risunCode/SurfManager/internal/snapshots"
	"github.com/risunCode/SurfManager/internal/undo"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorGray  = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted:
// stdout is a TTY and NO_COLOR is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// RenderAppTable renders the scan results sorted by application name.
func RenderAppTable(apps map[string]*registry.AppInfo) string {
	if len(apps) == 0 {
		return "No applications configured.\n"
	}

	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-10s %-9s %-9s %s\n",
		"Application", "Installed", "Running", "Size", "Path"))
	sb.WriteString(strings.Repeat("─", 78))
	sb.WriteString("\n")

	for _, name := range names {
		info := apps[name]
		installed := "no"
		size := "-"
		path := "-"
		if info.Installed {
			installed = colorize("yes", colorGreen)
			size = humanize.Bytes(uint64(info.Size))
			path = info.Path
		}
		running := "no"
		if info.Running {
			running = colorize("yes", colorGreen)
		}
		sb.WriteString(fmt.Sprintf("%-20s %-10s %-9s %-9s %s\n",
			info.DisplayName, installed, running, size, path))
	}
	return sb.String()
}

// RenderSnapshotTable renders backups newest first, as returned by List.
func RenderSnapshotTable(snaps []*snapshots.Snapshot) string {
	if len(snaps) == 0 {
		return "No backups found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-3s %-17s %-6s %-9s %s\n",
		"#", "Created", "Form", "Size", "Path"))
	sb.WriteString(strings.Repeat("─", 78))
	sb.WriteString("\n")

	for i, snap := range snaps {
		form := "dir"
		if snap.Compressed {
			form = "zip"
		}
		sb.WriteString(fmt.Sprintf("%-3d %-17s %-6s %-9s %s\n",
			i+1,
			snap.CreatedAt.Format("2006-01-02 15:04"),
			form,
			humanize.Bytes(uint64(snap.TotalSize)),
			snap.Path))
	}
	return sb.String()
}

// RenderHistoryTable renders the undo ledger, most recent action first.
func RenderHistoryTable(undoActions, redoActions []undo.Action) string {
	if len(undoActions) == 0 && len(redoActions) == 0 {
		return "No undo history.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-6s %-8s %-15s %-17s %s\n",
		"Stack", "Type", "Application", "Timestamp", "Description"))
	sb.WriteString(strings.Repeat("─", 78))
	sb.WriteString("\n")

	for i := len(undoActions) - 1; i >= 0; i-- {
		a := undoActions[i]
		sb.WriteString(fmt.Sprintf("%-6s %-8s %-15s %-17s %s\n",
			"undo", a.Type, a.AppName, a.Timestamp, a.Description))
	}
	for i := len(redoActions) - 1; i >= 0; i-- {
		a := redoActions[i]
		sb.WriteString(fmt.Sprintf("%-6s %-8s %-15s %-17s %s\n",
			colorize("redo", colorGray), a.Type, a.AppName, a.Timestamp, a.Description))
	}
	return sb.String()
}

func colorize(s, color string) string {
	if !IsColorEnabled() {
		return s
	}
	return color + s + colorReset
}
