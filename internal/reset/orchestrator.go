package reset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/risunCode/SurfManager/internal/config"
	"github.com/risunCode/SurfManager/internal/identity"
	"github.com/risunCode/SurfManager/internal/registry"
	"github.com/risunCode/SurfManager/internal/snapshots"
	"github.com/risunCode/SurfManager/internal/undo"
)

// Options tunes one reset run.
type Options struct {
	// Backup takes a pre-reset snapshot of the data root. A backup failure
	// aborts the run before anything destructive happens.
	Backup bool

	// RecordUndo records the destructive phase in the undo ledger.
	RecordUndo bool

	// Strategy overrides the application's configured reset strategy when
	// non-empty (config.StrategyWipe or config.StrategyMutate).
	Strategy string
}

// Orchestrator drives the reset phase state machine. A single mutex allows
// at most one active reset at a time; within a run, steps execute strictly
// sequentially.
type Orchestrator struct {
	cfg      *config.Config
	registry *registry.Registry
	procs    processCloser
	snaps    *snapshots.Manager
	ledger   *undo.Ledger

	mu sync.Mutex
}

// processCloser is the slice of the process controller the orchestrator
// needs; narrowed for testability.
type processCloser interface {
	Close(def config.AppDefinition, timeout time.Duration) (int, string, error)
}

// New creates an Orchestrator. ledger may be nil when undo recording is
// never requested.
func New(cfg *config.Config, reg *registry.Registry, procs processCloser, snaps *snapshots.Manager, ledger *undo.Ledger) *Orchestrator {
	return &Orchestrator{cfg: cfg, registry: reg, procs: procs, snaps: snaps, ledger: ledger}
}

// Run executes the reset on a background goroutine and streams progress
// events on the returned channel. The channel is closed after the terminal
// COMPLETE or FAILED event.
func (o *Orchestrator) Run(appName string, opts Options) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		o.Execute(appName, opts, func(ev Event) { events <- ev })
	}()
	return events
}

// Execute runs the reset synchronously, delivering progress through emit.
// The terminal event carries the outcome; the returned error mirrors a
// FAILED terminal phase for callers that prefer error handling.
func (o *Orchestrator) Execute(appName string, opts Options, emitFn func(Event)) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e := &emitter{fn: emitFn}

	fail := func(format string, args ...interface{}) error {
		err := fmt.Errorf(format, args...)
		e.emit(PhaseFailed, err.Error(), e.last)
		return err
	}

	e.emit(PhaseInit, fmt.Sprintf("starting reset for %s", appName), 0)

	info, ok := o.registry.Get(appName)
	if !ok || !info.Installed {
		return fail("application not found: %s", appName)
	}
	def, ok := o.cfg.App(appName)
	if !ok {
		return fail("application not configured: %s", appName)
	}

	strategy := def.ResetStrategy
	if opts.Strategy != "" {
		strategy = opts.Strategy
	}

	// CLOSE_PROCESS. A close failure is a warning, not an abort: the data
	// may still be safely rewritten or deleted.
	e.emit(PhaseCloseProcess, fmt.Sprintf("closing %s processes", def.DisplayName), 10)
	if _, msg, err := o.procs.Close(def, time.Duration(o.cfg.Settings.CloseTimeout)*time.Second); err != nil {
		e.emit(PhaseCloseProcess, fmt.Sprintf("warning: %v", err), 15)
	} else {
		e.emit(PhaseCloseProcess, msg, 15)
	}

	// PURGE_OR_MUTATE.
	if opts.Backup {
		e.emit(PhasePurgeOrMutate, "creating pre-reset snapshot", 18)
		manifest, err := o.snaps.Create(info.Path, appName, "")
		if err != nil {
			return fail("backup failed: %v", err)
		}
		e.emit(PhasePurgeOrMutate, fmt.Sprintf("snapshot created: %s", manifest.BackupPath), 20)
	}

	if opts.RecordUndo && o.ledger != nil {
		action, err := o.ledger.CreateBackupBeforeAction(undo.ActionReset, appName, info.Path,
			fmt.Sprintf("reset of %s", def.DisplayName), nil)
		if err != nil {
			e.emit(PhasePurgeOrMutate, fmt.Sprintf("warning: undo backup skipped: %v", err), 22)
		} else if action != nil {
			if err := o.ledger.Push(action); err != nil {
				e.emit(PhasePurgeOrMutate, fmt.Sprintf("warning: undo record failed: %v", err), 22)
			}
		}
	}

	switch strategy {
	case config.StrategyMutate:
		e.emit(PhasePurgeOrMutate, "rewriting identity artifacts", 25)
		summary := identity.New(o.cfg.Settings.IdentityKeys, o.cfg.Settings.SessionKeys).MutateTree(info.Path)
		e.emit(PhasePurgeOrMutate, fmt.Sprintf(
			"identity pass complete (processed %d, updated %d, deleted %d, failed %d)",
			summary.Processed, summary.Updated, summary.Deleted, summary.Failed), 50)

		wiped, records, failed := identity.WipeDatabases(info.Path)
		e.emit(PhasePurgeOrMutate, fmt.Sprintf(
			"database wipe complete (stores %d, records %d, failed %d)", wiped, records, failed), 65)

	default: // config.StrategyWipe
		e.emit(PhasePurgeOrMutate, fmt.Sprintf("deleting data root: %s", info.Path), 30)
		if err := os.RemoveAll(info.Path); err != nil {
			return fail("failed to delete data root: %v", err)
		}
		e.emit(PhasePurgeOrMutate, "data root deleted", 55)
		if err := os.MkdirAll(info.Path, 0755); err != nil {
			e.emit(PhasePurgeOrMutate, fmt.Sprintf("warning: could not recreate data root: %v", err), 60)
		} else {
			e.emit(PhasePurgeOrMutate, "data root recreated", 60)
		}
	}

	// CACHE_PURGE. Per-item errors are tolerated and counted.
	e.emit(PhaseCachePurge, "purging cache directories", 65)
	purged, failures := o.purgeCaches(info.Path, e)
	e.emit(PhaseCachePurge, fmt.Sprintf("cache purge complete (purged %d, failed %d)", purged, failures), 95)

	e.emit(PhaseComplete, fmt.Sprintf("successfully reset %s", def.DisplayName), 100)
	return nil
}

// purgeCaches locates every directory under root whose name matches a
// configured cache-directory name and empties it.
func (o *Orchestrator) purgeCaches(root string, e *emitter) (purged, failures int) {
	dirs := findDirsByName(root, o.cfg.Settings.CacheDirs)
	pct := 70
	for _, dir := range dirs {
		if err := emptyDir(dir); err != nil {
			failures++
		} else {
			purged++
		}
		e.emit(PhaseCachePurge, fmt.Sprintf("emptied %s", filepath.Base(dir)), pct)
		if pct < 94 {
			pct++
		}
	}
	return purged, failures
}

// findDirsByName walks root collecting directories whose base name matches
// any of names, case-insensitively.
func findDirsByName(root string, names []string) []string {
	lookup := make(map[string]bool, len(names))
	for _, n := range names {
		lookup[strings.ToLower(n)] = true
	}

	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == root {
			return nil
		}
		if lookup[strings.ToLower(d.Name())] {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}

// emptyDir removes the contents of dir but keeps the directory itself.
func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var firstErr error
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
