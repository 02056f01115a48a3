package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/nback/internal/backup"
	"github.com/nvandessel/nback/internal/config"
	"github.com/nvandessel/nback/internal/pathutil"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export the training history to a backup file",
		Long: `Backup every recorded run to a file.

Default location: ~/.nback/backups/nback-backup-YYYYMMDD-HHMMSS.json.gz
Old backups are removed according to backup.max_count and backup.max_age.

Examples:
  nback backup                               # Backup to default location (V2 compressed)
  nback backup --output ~/.nback/backups/a.json.gz
  nback backup --no-compress                 # Create V1 uncompressed backup
  nback backup list                          # List all backups
  nback backup restore <file>                # Restore runs from a backup
  nback backup verify <file>                 # Verify backup integrity`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("output")
			noCompress, _ := cmd.Flags().GetBool("no-compress")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			compress := cfg.Backup.Compress && !noCompress

			store, dataDir, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if outputPath == "" {
				outputPath = backup.GeneratePath(backup.DefaultDir(dataDir), time.Now(), compress)
			} else if err := validateBackupPath(outputPath, dataDir); err != nil {
				return fmt.Errorf("backup path rejected: %w", err)
			}

			snap, err := backup.Backup(cmd.Context(), store, outputPath, backup.Options{Compress: compress})
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			applyRetention(cmd, &cfg.Backup, filepath.Dir(outputPath))

			if jsonOut {
				var sizeBytes int64
				if info, err := os.Stat(outputPath); err == nil {
					sizeBytes = info.Size()
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"path":       outputPath,
					"run_count":  len(snap.Runs),
					"version":    snap.Version,
					"compressed": compress,
					"size_bytes": sizeBytes,
					"message":    fmt.Sprintf("Backup created: %d runs", len(snap.Runs)),
				})
			}

			versionLabel := "v2/gzip"
			if !compress {
				versionLabel = "v1/json"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backup created: %d runs (%s)\n", len(snap.Runs), versionLabel)
			fmt.Fprintf(out, "  Path: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output file path (default: auto-generated in ~/.nback/backups/)")
	cmd.Flags().Bool("no-compress", false, "Create V1 uncompressed backup instead of V2 compressed")

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupRestoreCmd(),
		newBackupVerifyCmd(),
	)

	return cmd
}

// applyRetention prunes dir per the configured policy. Failures only warn.
func applyRetention(cmd *cobra.Command, cfg *config.BackupConfig, dir string) {
	policy, err := backup.PolicyFor(cfg.MaxCount, cfg.MaxAge)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: invalid retention policy: %v\n", err)
		return
	}
	if _, err := backup.ApplyRetention(dir, policy); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to apply retention: %v\n", err)
	}
}

// validateBackupPath confines user-supplied backup paths to the backup
// directory and the working directory.
func validateBackupPath(path, dataDir string) error {
	cwd, _ := os.Getwd()
	return pathutil.ValidatePath(path, pathutil.AllowedBackupDirs(dataDir, cwd))
}

func newBackupRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the training history from a backup file",
		Long: `Restore runs from a backup file (V1 or V2 format).
Format is auto-detected.

Modes:
  merge   - Skip runs that already exist (default)
  replace - Clear the history first, then restore

Examples:
  nback backup restore ~/.nback/backups/nback-backup-20260206-120000.json.gz
  nback backup restore backup.json --mode replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			jsonOut, _ := cmd.Flags().GetBool("json")
			modeFlag, _ := cmd.Flags().GetString("mode")

			mode, err := backup.ParseRestoreMode(modeFlag)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, dataDir, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := validateBackupPath(inputPath, dataDir); err != nil {
				return fmt.Errorf("restore path rejected: %w", err)
			}

			result, err := backup.Restore(cmd.Context(), store, inputPath, mode)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"runs_restored": result.RunsRestored,
					"runs_skipped":  result.RunsSkipped,
					"mode":          string(mode),
					"message":       fmt.Sprintf("Restore complete: %d runs", result.RunsRestored),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Restore complete (mode: %s)\n", mode)
			fmt.Fprintf(out, "  Runs: %d restored, %d skipped\n", result.RunsRestored, result.RunsSkipped)
			return nil
		},
	}

	cmd.Flags().String("mode", "merge", "Restore mode: merge or replace")
	return cmd
}
