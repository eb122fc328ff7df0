package snapshots

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/risunCode/SurfManager/internal/errs"
)

// maxPathLength is the classic Windows path limit; longer paths fail
// validation rather than failing halfway through a copy.
const maxPathLength = 260

var (
	traversalPattern = regexp.MustCompile(`\.\.[\\/]`)
	invalidChars     = regexp.MustCompile(`[<>"|?*]`)
	sanitizePattern  = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// ValidatePath rejects paths that are empty, over-long, contain parent
// directory traversal, or contain characters invalid on Windows volumes.
// The colon is allowed for drive letters.
func ValidatePath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", errs.ErrValidation)
	}
	if len(path) > maxPathLength {
		return fmt.Errorf("%w: path too long (max %d characters)", errs.ErrValidation, maxPathLength)
	}
	if m := traversalPattern.FindString(path); m != "" {
		return fmt.Errorf("%w: path contains parent directory traversal", errs.ErrValidation)
	}
	if m := invalidChars.FindString(path); m != "" {
		return fmt.Errorf("%w: path contains invalid characters: %s", errs.ErrValidation, m)
	}
	return nil
}

// SanitizeName strips characters that cannot appear in a backup directory
// name and guarantees a non-empty result.
func SanitizeName(name string) string {
	sanitized := sanitizePattern.ReplaceAllString(name, "_")

	var b strings.Builder
	for _, r := range sanitized {
		if r >= 32 {
			b.WriteRune(r)
		}
	}
	sanitized = strings.TrimSpace(b.String())

	if sanitized == "" {
		return "unnamed"
	}
	if len(sanitized) > 255 {
		sanitized = sanitized[:255]
	}
	return sanitized
}

// shouldSkip reports whether a file or directory name belongs to the fixed
// set of transient patterns excluded from backups: version-control metadata,
// virtual environments, and temp/log/cache files.
func shouldSkip(name string) bool {
	lower := strings.ToLower(name)
	switch lower {
	case "node_modules", "__pycache__", ".git", ".venv", "venv", "temp", "tmp":
		return true
	}
	for _, suffix := range []string{".tmp", ".log", ".cache"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
