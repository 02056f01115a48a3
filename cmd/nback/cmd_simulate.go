package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/nback/internal/history"
	"github.com/nvandessel/nback/internal/logging"
	"github.com/nvandessel/nback/internal/sequence"
	"github.com/nvandessel/nback/internal/session"
	"github.com/nvandessel/nback/internal/simulation"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play blocks headlessly with a simulated player",
		Long: `Run consecutive blocks without a terminal UI. A simulated player answers
each step and the level adapts exactly as in interactive play.

Players:
  perfect          confirms every match and nothing else
  silent           never presses a key
  accurate:<pct>   answers each stream correctly pct percent of the time

Simulated runs are kept in memory unless --record is given.

Examples:
  nback simulate --player perfect --blocks 12 --level 1
  nback simulate --player accurate:85 --blocks 50 --seed 7
  nback simulate --player silent --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			playerName, _ := cmd.Flags().GetString("player")
			blocks, _ := cmd.Flags().GetInt("blocks")
			record, _ := cmd.Flags().GetBool("record")
			seed, _ := cmd.Flags().GetInt64("seed")

			if blocks < 1 {
				return fmt.Errorf("blocks must be positive, got %d", blocks)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyTrainingFlags(cmd, cfg)
			logger := newLogger(cmd, cfg)
			for _, key := range cfg.Coerce() {
				logger.Warn("setting out of range, using default or nearest valid value", "key", key)
			}

			src := sourceFor(seed)
			player, err := simulation.ParsePlayer(playerName, src)
			if err != nil {
				return err
			}

			var store history.Store = history.NewMemoryStore()
			var events *logging.EventLogger
			if record {
				sqlStore, dataDir, err := openStore(cfg)
				if err != nil {
					return err
				}
				store = sqlStore
				events = logging.NewEventLogger(dataDir, cfg.Logging.Level)
				defer events.Close()
			}
			defer store.Close()

			gen := sequence.NewGenerator(sequence.Config{
				MaxAttempts: cfg.Generator.MaxAttempts,
				Source:      src,
				Logger:      logger,
			})
			runner := simulation.NewRunner(gen, store,
				simulation.WithLogger(logger),
				simulation.WithEvents(events),
			)

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			result, err := runner.Run(ctx, simulation.Scenario{
				Name:     playerName,
				Settings: session.SettingsFrom(cfg.Training),
				Blocks:   blocks,
				Player:   player,
			})
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprint(cmd.OutOrStdout(), simulation.FormatResult(result))
			return nil
		},
	}

	addTrainingFlags(cmd)
	cmd.Flags().String("player", "perfect", "Simulated player: perfect, silent or accurate:<percent>")
	cmd.Flags().Int("blocks", 10, "Number of blocks to play")
	cmd.Flags().Bool("record", false, "Record simulated runs in the history database")
	return cmd
}
