package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <app>",
	Short: "Show installation and process details for one application",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	info, def, err := eng.requireApp(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", info.DisplayName)
	fmt.Printf("  Data path:  %s\n", info.Path)
	if info.ExePath != "" {
		fmt.Printf("  Executable: %s\n", info.ExePath)
	}
	fmt.Printf("  Data size:  %s\n", humanize.Bytes(uint64(info.Size)))

	procs := eng.procs.Processes(def)
	if len(procs) == 0 {
		fmt.Println("  Processes:  not running")
		return nil
	}
	fmt.Printf("  Processes:  %d running\n", len(procs))
	for _, p := range procs {
		fmt.Printf("    [%d] %s (%s)\n", p.PID, p.Name, humanize.Bytes(p.Memory))
	}
	return nil
}
