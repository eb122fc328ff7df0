package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/risunCode/SurfManager/internal/config"
	"github.com/risunCode/SurfManager/internal/output"
	"github.com/risunCode/SurfManager/internal/reset"
)

var (
	flagResetNoBackup bool
	flagResetNoUndo   bool
	flagResetStrategy string
	flagResetYes      bool
)

var resetCmd = &cobra.Command{
	Use:   "reset <app>",
	Short: "Reset an application's stored state",
	Long: `Close the application, snapshot its data, then either wipe the data
root or rewrite its identity fields, and finally purge cache directories.

A pre-reset backup and an undo ledger entry are recorded by default, so a
reset can be rolled back with "surfmanager undo".`,
	Args: cobra.ExactArgs(1),
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&flagResetNoBackup, "no-backup", false, "skip the pre-reset snapshot")
	resetCmd.Flags().BoolVar(&flagResetNoUndo, "no-undo", false, "skip recording an undo entry")
	resetCmd.Flags().StringVar(&flagResetStrategy, "strategy", "", "override reset strategy (wipe or mutate)")
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "skip the confirmation prompt")
	RootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	switch flagResetStrategy {
	case "", config.StrategyWipe, config.StrategyMutate:
	default:
		return fmt.Errorf("unknown strategy %q (want %q or %q)",
			flagResetStrategy, config.StrategyWipe, config.StrategyMutate)
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}

	info, def, err := eng.requireApp(args[0])
	if err != nil {
		return err
	}

	if !flagResetYes {
		fmt.Printf("This will reset %s at %s.\n", def.DisplayName, info.Path)
		if flagResetNoBackup {
			fmt.Println("No backup will be taken (--no-backup).")
		}
		if !confirm("Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	opts := reset.Options{
		Backup:     !flagResetNoBackup,
		RecordUndo: !flagResetNoUndo,
		Strategy:   flagResetStrategy,
	}

	bar := output.NewProgress()
	var failed bool
	for ev := range eng.orch.Run(args[0], opts) {
		if ev.Phase == reset.PhaseFailed {
			failed = true
			fmt.Printf("\n✗ %s\n", ev.Message)
			continue
		}
		bar.Update(ev.Percentage, ev.Message)
	}

	if failed {
		return fmt.Errorf("reset of %s failed", def.DisplayName)
	}
	bar.Finish()
	fmt.Printf("✓ %s has been reset\n", def.DisplayName)
	return nil
}
