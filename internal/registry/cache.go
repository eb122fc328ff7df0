package registry

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// cachedApp is the persisted subset of AppInfo: last-known installed paths
// only. Size and running status are always re-probed.
type cachedApp struct {
	Installed bool   `yaml:"installed"`
	Path      string `yaml:"path"`
	ExePath   string `yaml:"exe_path,omitempty"`
}

// loadCache preloads last-known installed paths so callers get a useful
// answer before the first full scan. Entries are marked partial: size and
// running status are always re-resolved before use. Errors are ignored: the
// cache is an optimization, not a source of truth.
func (r *Registry) loadCache() {
	if r.cachePath == "" {
		return
	}
	data, err := os.ReadFile(r.cachePath)
	if err != nil {
		return
	}
	cached := map[string]cachedApp{}
	if err := yaml.Unmarshal(data, &cached); err != nil {
		return
	}
	for name, entry := range cached {
		if !entry.Installed {
			continue
		}
		def, ok := r.cfg.App(name)
		if !ok {
			continue
		}
		r.detected[name] = &AppInfo{
			Name:        name,
			DisplayName: def.DisplayName,
			Installed:   true,
			Path:        entry.Path,
			ExePath:     entry.ExePath,
			partial:     true,
		}
	}
}

// saveCache persists last-known installed paths. Must be called with the
// lock held. Failures are silent for the same reason loadCache's are.
func (r *Registry) saveCache() {
	if r.cachePath == "" {
		return
	}
	cached := make(map[string]cachedApp, len(r.detected))
	for name, info := range r.detected {
		cached[name] = cachedApp{
			Installed: info.Installed,
			Path:      info.Path,
			ExePath:   info.ExePath,
		}
	}
	data, err := yaml.Marshal(cached)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.cachePath), 0755); err != nil {
		return
	}
	_ = os.WriteFile(r.cachePath, data, 0644)
}
