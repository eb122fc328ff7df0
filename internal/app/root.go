// Package app wires the engine components behind the surfmanager CLI.
package app

import (
	"github.com/spf13/cobra"
)

var (
	flagConfig string

	// RootCmd is the root command for surfmanager.
	RootCmd = &cobra.Command{
		Use:   "surfmanager",
		Short: "Desktop application data reset with verifiable backups",
		Long: `surfmanager locates installed desktop applications, snapshots their
persisted state, rewrites identity/telemetry artifacts, and supports
transactional undo of destructive operations.

Quick Start:
  1. surfmanager scan                  # detect configured applications
  2. surfmanager backup create <app>   # snapshot before touching anything
  3. surfmanager reset <app>           # close, purge, and clean caches
  4. surfmanager undo                  # roll the last reset back

Every destructive operation records an undo action backed by its own
snapshot, bounded by the configured history depth.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config path (default: ~/.surfmanager/config.yaml)")
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
