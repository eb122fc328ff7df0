package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/risunCode/SurfManager/internal/output"
)

var scanFlagForce bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Detect installed applications",
	Long: `Resolve every configured application against the filesystem: expand
path templates, probe installation paths, compute data sizes, and check
running status.

Without --force, a previous scan result is reused and only the running
status is re-probed.`,
	Example: `  surfmanager scan
  surfmanager scan --force    # full re-probe of paths and sizes`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanFlagForce, "force", false, "Force a full rescan")
	RootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	spinner := output.NewSpinner("Scanning applications...")
	spinner.Start()
	apps := eng.registry.Scan(scanFlagForce)
	spinner.Stop()

	fmt.Print(output.RenderAppTable(apps))
	return nil
}
