package app

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/risunCode/SurfManager/internal/config"
	"github.com/risunCode/SurfManager/internal/process"
	"github.com/risunCode/SurfManager/internal/registry"
	"github.com/risunCode/SurfManager/internal/reset"
	"github.com/risunCode/SurfManager/internal/snapshots"
	"github.com/risunCode/SurfManager/internal/undo"
)

// engine bundles the wired components for one command invocation.
type engine struct {
	cfg      *config.Config
	registry *registry.Registry
	procs    *process.Controller
	snaps    *snapshots.Manager
	ledger   *undo.Ledger
	orch     *reset.Orchestrator
}

// newEngine loads the configuration and constructs the component graph.
func newEngine() (*engine, error) {
	cfgPath := flagConfig
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	procs := process.New(cfg.Settings.ProcessMatch)
	cachePath := filepath.Join(filepath.Dir(cfgPath), "detected.yaml")
	reg := registry.New(cfg, procs.IsRunning, cachePath)
	snaps := snapshots.New(cfg.Settings.BackupRoot)

	ledger, err := undo.New(cfg.Settings.UndoRoot, cfg.Settings.MaxUndoDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to open undo ledger: %w", err)
	}

	return &engine{
		cfg:      cfg,
		registry: reg,
		procs:    procs,
		snaps:    snaps,
		ledger:   ledger,
		orch:     reset.New(cfg, reg, procs, snaps, ledger),
	}, nil
}

// requireApp resolves an installed application or returns a descriptive
// error listing what is configured.
func (e *engine) requireApp(name string) (*registry.AppInfo, config.AppDefinition, error) {
	def, ok := e.cfg.App(name)
	if !ok {
		names := make([]string, 0, len(e.cfg.Applications))
		for n := range e.cfg.Applications {
			names = append(names, n)
		}
		return nil, config.AppDefinition{}, fmt.Errorf("application %q is not configured (configured: %s)",
			name, strings.Join(names, ", "))
	}

	info, ok := e.registry.Get(name)
	if !ok || !info.Installed {
		return nil, def, fmt.Errorf("application %q is not installed", name)
	}
	return info, def, nil
}

// confirm prompts for a y/N answer on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
