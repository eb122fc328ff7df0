// Package registry resolves declared application definitions against the
// live filesystem to produce installation facts.
package registry

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/risunCode/SurfManager/internal/config"
)

// AppInfo holds the installation facts for one configured application.
type AppInfo struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Installed   bool   `yaml:"installed"`
	Path        string `yaml:"path"`
	ExePath     string `yaml:"exe_path"`
	Size        int64  `yaml:"size"`
	Running     bool   `yaml:"running"`

	// partial marks an entry preloaded from the detected-paths cache:
	// size and running status are missing and must be re-resolved before
	// the entry can be treated as a prior scan result.
	partial bool
}

// RunningProbe reports whether any process belonging to the definition is
// alive. Injected so the registry stays decoupled from the process table.
type RunningProbe func(def config.AppDefinition) bool

// Registry scans configured applications and caches the results.
type Registry struct {
	cfg       *config.Config
	isRunning RunningProbe
	cachePath string

	mu       sync.Mutex
	detected map[string]*AppInfo
}

// New creates a Registry. cachePath may be empty to disable persistence of
// last-known installed paths.
func New(cfg *config.Config, probe RunningProbe, cachePath string) *Registry {
	r := &Registry{
		cfg:       cfg,
		isRunning: probe,
		cachePath: cachePath,
		detected:  make(map[string]*AppInfo),
	}
	r.loadCache()
	return r
}

// Scan resolves every configured application. When force is false and a prior
// result exists, entries from a completed scan only get their running status
// re-probed; entries preloaded from the cache, or applications configured
// since, are fully resolved. Scan never fails: an application with no
// matching path is reported with Installed=false.
//
// The returned map is a copy; callers may mutate it freely.
func (r *Registry) Scan(force bool) map[string]*AppInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !force && len(r.detected) > 0 {
		for name, def := range r.cfg.Applications {
			info, ok := r.detected[name]
			if !ok || info.partial {
				r.detected[name] = r.resolve(name, def)
				continue
			}
			if info.Installed {
				info.Running = r.probe(name)
			}
		}
		for name := range r.detected {
			if _, ok := r.cfg.App(name); !ok {
				delete(r.detected, name)
			}
		}
		r.saveCache()
		return r.copyDetected()
	}

	detected := make(map[string]*AppInfo, len(r.cfg.Applications))
	for name, def := range r.cfg.Applications {
		detected[name] = r.resolve(name, def)
	}

	r.detected = detected
	r.saveCache()
	return r.copyDetected()
}

// resolve probes one application against the filesystem. Must be called with
// the lock held.
func (r *Registry) resolve(name string, def config.AppDefinition) *AppInfo {
	info := &AppInfo{Name: name, DisplayName: def.DisplayName}

	for _, tmpl := range def.DataPaths {
		path := ExpandPath(tmpl)
		if _, err := os.Stat(path); err == nil {
			info.Installed = true
			info.Path = path
			info.Size = dirSize(path)
			break
		}
	}

	if info.Installed {
		for _, tmpl := range def.ExePaths {
			path := ExpandPath(tmpl)
			if _, err := os.Stat(path); err == nil {
				info.ExePath = path
				break
			}
		}
		if r.isRunning != nil {
			info.Running = r.isRunning(def)
		}
	}

	return info
}

// Get returns the facts for one application, scanning first if needed.
// Cache-preloaded entries are fully resolved before being returned.
func (r *Registry) Get(name string) (*AppInfo, bool) {
	r.mu.Lock()
	empty := len(r.detected) == 0
	r.mu.Unlock()

	if empty {
		r.Scan(false)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.detected[name]
	if !ok || info.partial {
		def, configured := r.cfg.App(name)
		if !configured {
			return nil, false
		}
		info = r.resolve(name, def)
		r.detected[name] = info
		r.saveCache()
	}
	cp := *info
	return &cp, true
}

// probe must be called with the lock held.
func (r *Registry) probe(name string) bool {
	if r.isRunning == nil {
		return false
	}
	def, ok := r.cfg.App(name)
	if !ok {
		return false
	}
	return r.isRunning(def)
}

// copyDetected must be called with the lock held.
func (r *Registry) copyDetected() map[string]*AppInfo {
	out := make(map[string]*AppInfo, len(r.detected))
	for name, info := range r.detected {
		cp := *info
		out[name] = &cp
	}
	return out
}

var winEnvPattern = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// ExpandPath expands environment-variable placeholders in a path template.
// Both $VAR/${VAR} and Windows-style %VAR% forms are accepted, and forward
// slashes are normalized to the platform separator.
func ExpandPath(template string) string {
	expanded := winEnvPattern.ReplaceAllString(template, "${$1}")
	expanded = os.ExpandEnv(expanded)
	return filepath.FromSlash(expanded)
}

// dirSize sums file sizes under path. Unreadable entries are skipped; a
// partial size is acceptable.
func dirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
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
