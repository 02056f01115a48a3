package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nvandessel/nback/internal/backup"
)

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all backups with metadata",
		Long: `List all backup files in the backup directory with version, format,
size and run count.

Examples:
  nback backup list
  nback backup list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataDir, err := cfg.ResolveDataDir()
			if err != nil {
				return err
			}
			dir := backup.DefaultDir(dataDir)

			backups, err := backup.ListBackups(dir)
			if err != nil {
				return fmt.Errorf("failed to list backups: %w", err)
			}

			if jsonOut {
				type jsonEntry struct {
					Path      string `json:"path"`
					Version   int    `json:"version"`
					Size      int64  `json:"size_bytes"`
					CreatedAt string `json:"created_at"`
					RunCount  int    `json:"run_count,omitempty"`
					Checksum  string `json:"checksum,omitempty"`
				}
				entries := make([]jsonEntry, 0, len(backups))
				for _, b := range backups {
					entry := jsonEntry{
						Path:      b.Path,
						Version:   b.Version,
						Size:      b.Size,
						CreatedAt: b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
					}
					if b.Version == backup.FormatV2 {
						if header, err := backup.ReadV2Header(b.Path); err == nil {
							entry.RunCount = header.RunCount
							entry.Checksum = header.Checksum
						}
					}
					entries = append(entries, entry)
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"backups":     entries,
					"total_count": len(entries),
					"directory":   dir,
				})
			}

			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintf(out, "No backups found in %s\n", dir)
				return nil
			}

			fmt.Fprintf(out, "Backups in %s:\n", dir)
			var totalSize int64
			for _, b := range backups {
				totalSize += b.Size

				versionStr, formatStr, runs := "v1", "json", "?"
				if b.Version == backup.FormatV2 {
					versionStr, formatStr = "v2", "gzip"
					if header, err := backup.ReadV2Header(b.Path); err == nil {
						runs = fmt.Sprint(header.RunCount)
					}
				}

				fmt.Fprintf(out, "  %s  %s  %s  %7s  %s runs  %s\n",
					b.CreatedAt.Format("2006-01-02 15:04"),
					versionStr,
					formatStr,
					formatBytes(b.Size),
					runs,
					filepath.Base(b.Path),
				)
			}
			fmt.Fprintf(out, "Total: %d backups, %s\n", len(backups), formatBytes(totalSize))
			return nil
		},
	}
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1fGB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1fMB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.1fKB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%dB", b)
	}
}
