package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close <app>",
	Short: "Close an application's processes",
	Long: `Send a graceful terminate signal to every matching process, wait up to
the configured timeout, then force-kill anything still running.

Closing an application with no matching processes succeeds with no side
effects.`,
	Args: cobra.ExactArgs(1),
	RunE: runClose,
}

func init() {
	RootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	def, ok := eng.cfg.App(args[0])
	if !ok {
		return fmt.Errorf("application %q is not configured", args[0])
	}

	timeout := time.Duration(eng.cfg.Settings.CloseTimeout) * time.Second
	closed, msg, err := eng.procs.Close(def, timeout)
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", def.DisplayName, err)
	}

	if closed == 0 {
		fmt.Printf("%s: %s\n", def.DisplayName, msg)
	} else {
		fmt.Printf("✓ %s: %s\n", def.DisplayName, msg)
	}
	return nil
}
