package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/nback/internal/config"
	"github.com/nvandessel/nback/internal/history"
	"github.com/nvandessel/nback/internal/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nback",
		Short: "Dual n-back working memory trainer",
		Long: `nback is a dual n-back trainer for the terminal.

Each block shows a sequence of grid positions and spoken sounds. Press a
when the position matches the one n steps back and l when the sound does.
The level goes up when both streams are within tolerance, stays when one
is close, and goes down otherwise.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default: ~/.nback)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newPlayCmd(),
		newGenerateCmd(),
		newSimulateCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newBackupCmd(),
	)

	return rootCmd
}

// loadConfig loads the configuration and applies the --data-dir flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

// openStore opens the SQLite history in the configured data directory.
func openStore(cfg *config.Config) (*history.SQLiteStore, string, error) {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, "", err
	}
	store, err := history.OpenSQLite(dataDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open history: %w", err)
	}
	return store, dataDir, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

// signalContext returns a context cancelled on interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		stopSignals(ch)
	}()
	return ctx, cancel
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
