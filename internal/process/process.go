// Package process detects and terminates OS processes belonging to a
// managed application.
package process

import (
	"fmt"
	"strings"
	"time"

	gops "github.com/shirou/gopsutil/v4/process"

	"github.com/risunCode/SurfManager/internal/config"
	"github.com/risunCode/SurfManager/internal/errs"
)

// pollInterval is how often Close re-checks the process table while waiting
// for graceful termination.
const pollInterval = 250 * time.Millisecond

// Info describes one live process matched against an application definition.
type Info struct {
	PID    int32
	Name   string
	Memory uint64
}

// Controller matches configured process-name fragments against the live
// process table. The match mode comes from settings: substring matching is
// deliberately loose to catch renamed binaries, exact mode avoids collisions
// with short fragments.
type Controller struct {
	matchMode string
}

// New creates a Controller using the given match mode
// (config.MatchSubstring or config.MatchExact).
func New(matchMode string) *Controller {
	if matchMode != config.MatchExact {
		matchMode = config.MatchSubstring
	}
	return &Controller{matchMode: matchMode}
}

// Matches reports whether a process name matches any configured fragment.
func (c *Controller) Matches(procName string, fragments []string) bool {
	name := strings.ToLower(procName)
	for _, frag := range fragments {
		frag = strings.ToLower(frag)
		if frag == "" {
			continue
		}
		if c.matchMode == config.MatchExact {
			if name == frag {
				return true
			}
		} else if strings.Contains(name, frag) {
			return true
		}
	}
	return false
}

// IsRunning reports whether any live process matches the definition.
func (c *Controller) IsRunning(def config.AppDefinition) bool {
	return len(c.matching(def)) > 0
}

// Processes returns details for every live process matching the definition.
func (c *Controller) Processes(def config.AppDefinition) []Info {
	var out []Info
	for _, p := range c.matching(def) {
		info := Info{PID: p.Pid}
		if name, err := p.Name(); err == nil {
			info.Name = name
		}
		if mem, err := p.MemoryInfo(); err == nil && mem != nil {
			info.Memory = mem.RSS
		}
		out = append(out, info)
	}
	return out
}

// Close quiesces an application's processes in three phases: a graceful
// terminate signal to every match, a poll-wait up to timeout, then a force
// kill of anything still matching. It is idempotent: closing an application
// with no matching processes succeeds with a "not running" message and no
// side effects.
func (c *Controller) Close(def config.AppDefinition, timeout time.Duration) (int, string, error) {
	matched := c.matching(def)
	if len(matched) == 0 {
		return 0, "application not running", nil
	}

	// The count reported is matched processes that are gone afterwards; a
	// process both terminated and killed is still one process.
	for _, p := range matched {
		_ = p.Terminate()
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !c.IsRunning(def) {
			return len(matched), fmt.Sprintf("closed %d processes", len(matched)), nil
		}
		time.Sleep(pollInterval)
	}

	for _, p := range c.matching(def) {
		_ = p.Kill()
	}

	if remaining := c.matching(def); len(remaining) > 0 {
		return len(matched) - len(remaining), "",
			fmt.Errorf("%w: %d processes still running after kill", errs.ErrProcess, len(remaining))
	}
	return len(matched), fmt.Sprintf("closed %d processes", len(matched)), nil
}

// matching returns every live process whose name matches the definition.
// Processes that disappear or deny access mid-scan are skipped.
func (c *Controller) matching(def config.AppDefinition) []*gops.Process {
	procs, err := gops.Processes()
	if err != nil {
		return nil
	}
	var out []*gops.Process
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if c.Matches(name, def.ProcessNames) {
			out = append(out, p)
		}
	}
	return out
}
