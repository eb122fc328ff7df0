package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/risunCode/SurfManager/internal/output"
)

var (
	flagUndoYes      bool
	flagHistoryClear bool
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the most recent destructive action",
	Long: `Restore the filesystem state captured before the most recent
destructive action. The reverted action moves to the redo stack, so it
can be reapplied with "surfmanager redo".`,
	Args: cobra.NoArgs,
	RunE: runUndo,
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Reapply the most recently undone action",
	Args:  cobra.NoArgs,
	RunE:  runRedo,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the undo and redo stacks",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	undoCmd.Flags().BoolVarP(&flagUndoYes, "yes", "y", false, "skip the confirmation prompt")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "delete all undo history and its backups")
	RootCmd.AddCommand(undoCmd, redoCmd, historyCmd)
}

func runUndo(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	desc, ok := eng.ledger.PeekUndo()
	if !ok {
		fmt.Println("Nothing to undo.")
		return nil
	}

	if !flagUndoYes {
		fmt.Printf("This will revert: %s\n", desc)
		if !confirm("Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	reverted, err := eng.ledger.Undo()
	if err != nil {
		return fmt.Errorf("undo failed: %w", err)
	}
	fmt.Printf("✓ Reverted: %s\n", reverted)
	return nil
}

func runRedo(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	if !eng.ledger.CanRedo() {
		fmt.Println("Nothing to redo.")
		return nil
	}

	reapplied, err := eng.ledger.Redo()
	if err != nil {
		return fmt.Errorf("redo failed: %w", err)
	}
	fmt.Printf("✓ Reapplied: %s\n", reapplied)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	if flagHistoryClear {
		if !confirm("Delete all undo history and its backups?") {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := eng.ledger.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Println("✓ History cleared")
		return nil
	}

	undoActions, redoActions := eng.ledger.History()
	if len(undoActions) == 0 && len(redoActions) == 0 {
		fmt.Println("No recorded actions.")
		return nil
	}
	fmt.Print(output.RenderHistoryTable(undoActions, redoActions))
	return nil
}
