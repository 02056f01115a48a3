package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/nback/internal/backup"
)

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify backup file integrity",
		Long: `Verify the integrity of a backup file by checking its SHA-256 checksum.
Only V2 (compressed) backups carry a checksum.

Examples:
  nback backup verify ~/.nback/backups/nback-backup-20260206-120000.json.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			version, err := backup.DetectFormat(filePath)
			if err != nil {
				if jsonOut {
					_ = writeJSON(out, map[string]any{
						"file":  filePath,
						"valid": false,
						"error": err.Error(),
					})
				}
				return fmt.Errorf("failed to detect format: %w", err)
			}

			if version == backup.FormatV1 {
				if jsonOut {
					return writeJSON(out, map[string]any{
						"file":    filePath,
						"version": backup.FormatV1,
						"valid":   true,
						"message": "V1 format: no checksum to verify",
					})
				}
				fmt.Fprintln(out, "V1 format: no checksum to verify")
				fmt.Fprintf(out, "  File: %s\n", filePath)
				return nil
			}

			if err := backup.VerifyChecksum(filePath); err != nil {
				if jsonOut {
					_ = writeJSON(out, map[string]any{
						"file":    filePath,
						"version": backup.FormatV2,
						"valid":   false,
						"error":   err.Error(),
					})
				} else {
					fmt.Fprintf(out, "FAILED: %v\n", err)
					fmt.Fprintf(out, "  File: %s\n", filePath)
				}
				return fmt.Errorf("checksum verification failed")
			}

			if jsonOut {
				return writeJSON(out, map[string]any{
					"file":    filePath,
					"version": backup.FormatV2,
					"valid":   true,
					"message": "Checksum OK",
				})
			}
			fmt.Fprintln(out, "OK: checksum verified")
			fmt.Fprintf(out, "  File: %s\n", filePath)
			return nil
		},
	}
}
