package app

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/risunCode/SurfManager/internal/output"
)

var (
	flagBackupName     string
	flagBackupCompress bool
	flagBackupYes      bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage application backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create <app>",
	Short: "Create a checksummed backup of an application's data",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupCreate,
}

var backupListCmd = &cobra.Command{
	Use:   "list <app>",
	Short: "List backups for an application, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <app> <backup-path>",
	Short: "Restore a backup over the application's data directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runBackupRestore,
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete <backup-path>",
	Short: "Delete a backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupDelete,
}

var backupVerifyCmd = &cobra.Command{
	Use:   "verify <backup-path>",
	Short: "Verify a backup against its recorded checksum",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupVerify,
}

func init() {
	backupCreateCmd.Flags().StringVar(&flagBackupName, "name", "", "override the generated backup name")
	backupCreateCmd.Flags().BoolVar(&flagBackupCompress, "compress", false, "write a zip archive of the configured backup items")
	backupRestoreCmd.Flags().BoolVarP(&flagBackupYes, "yes", "y", false, "skip the confirmation prompt")
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd, backupDeleteCmd, backupVerifyCmd)
	RootCmd.AddCommand(backupCmd)
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	info, def, err := eng.requireApp(args[0])
	if err != nil {
		return err
	}

	if flagBackupCompress || eng.cfg.Settings.CompressBackups {
		res, err := eng.snaps.CreateArchive(info.Path, args[0], def.BackupItems, flagBackupName, func(msg string) {
			fmt.Println("  " + msg)
		})
		if err != nil {
			return fmt.Errorf("failed to create archive: %w", err)
		}
		fmt.Printf("✓ Archived %d file(s) to %s\n", res.TotalFiles, res.Path)
		if len(res.Missing) > 0 {
			fmt.Printf("  %d configured item(s) not found: %s\n", len(res.Missing), strings.Join(res.Missing, ", "))
		}
		if len(res.Failed) > 0 {
			fmt.Printf("  %d configured item(s) failed: %s\n", len(res.Failed), strings.Join(res.Failed, ", "))
		}
		return nil
	}

	manifest, err := eng.snaps.Create(info.Path, args[0], flagBackupName)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	fmt.Printf("✓ Backed up %d file(s) (%s) to %s\n",
		manifest.TotalFiles, humanize.Bytes(uint64(manifest.TotalSize)), manifest.BackupPath)
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	snaps, err := eng.snaps.List(args[0])
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(snaps) == 0 {
		fmt.Printf("No backups found for %q under %s\n", args[0], eng.snaps.Root())
		return nil
	}
	fmt.Print(output.RenderSnapshotTable(snaps))
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	info, def, err := eng.requireApp(args[0])
	if err != nil {
		return err
	}

	if info.Running {
		return fmt.Errorf("%s is running; close it before restoring", def.DisplayName)
	}

	if !flagBackupYes {
		fmt.Printf("This will replace the contents of %s.\n", info.Path)
		if !confirm("Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := eng.snaps.Restore(args[1], info.Path); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	fmt.Printf("✓ Restored %s from %s\n", def.DisplayName, args[1])
	return nil
}

func runBackupDelete(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	if err := eng.snaps.Delete(args[0]); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	fmt.Printf("✓ Deleted %s\n", args[0])
	return nil
}

func runBackupVerify(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	manifest, err := eng.snaps.Verify(args[0])
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	fmt.Printf("✓ Backup is intact: %d file(s), checksum %s\n", manifest.TotalFiles, manifest.Checksum[:12])
	return nil
}
