package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/nback/internal/config"
	"github.com/nvandessel/nback/internal/logging"
	"github.com/nvandessel/nback/internal/sequence"
	"github.com/nvandessel/nback/internal/session"
	"github.com/nvandessel/nback/internal/stimulus"
	"github.com/nvandessel/nback/internal/ui"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play dual n-back blocks interactively",
		Long: `Start the interactive trainer.

Keys:
  s   start or stop a block
  a   the position matches the one n steps back
  l   the sound matches the one n steps back
  q   quit

The level reached after each finished block is saved to the config file
and every finished block is recorded in the history.

Examples:
  nback play
  nback play --level 3 --time 2000
  nback play --no-feedback`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyTrainingFlags(cmd, cfg)
			if noFeedback, _ := cmd.Flags().GetBool("no-feedback"); noFeedback {
				cfg.Training.Feedback = false
			}

			logger := newLogger(cmd, cfg)
			for _, key := range cfg.Coerce() {
				logger.Warn("setting out of range, using default or nearest valid value", "key", key)
			}

			store, dataDir, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			events := logging.NewEventLogger(dataDir, cfg.Logging.Level)
			defer events.Close()

			seed, _ := cmd.Flags().GetInt64("seed")
			gen := sequence.NewGenerator(sequence.Config{
				MaxAttempts: cfg.Generator.MaxAttempts,
				Source:      sourceFor(seed),
				Logger:      logger,
			})

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			m := ui.New(ctx, ui.Options{
				Settings:  session.SettingsFrom(cfg.Training),
				Generator: gen,
				Store:     store,
				SessionOptions: []session.Option{
					session.WithLogger(logger),
					session.WithEvents(events),
				},
				OnResult: func(res session.Result) error {
					if err := session.SaveResult(res, dataDir); err != nil {
						return err
					}
					return updateConfigFile(func(c *config.Config) error {
						c.Training.Level = res.Settings.Level
						return nil
					})
				},
			})

			final, err := ui.Run(ctx, m)
			if err != nil {
				return fmt.Errorf("trainer exited: %w", err)
			}
			if res, ok := final.Result(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Verdict.Message)
			}
			return nil
		},
	}

	addTrainingFlags(cmd)
	cmd.Flags().Bool("no-feedback", false, "Hide correct/incorrect feedback after a key press")
	cmd.Flags().Int("time", 0, "Step interval in milliseconds, 2000 to 3000 (default from config)")
	return cmd
}

// addTrainingFlags registers --level, --clues and --seed.
func addTrainingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("level", 0, "Span n, 1 to 10 (default from config)")
	cmd.Flags().Int("clues", 0, "Matches per modality in a block (default from config)")
	cmd.Flags().Int64("seed", 0, "Random seed for reproducible blocks (0 = random)")
}

// applyTrainingFlags copies explicitly set training flags into cfg.
func applyTrainingFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("level") {
		cfg.Training.Level, _ = flags.GetInt("level")
	}
	if flags.Changed("clues") {
		cfg.Training.Clues, _ = flags.GetInt("clues")
	}
	if flags.Lookup("time") != nil && flags.Changed("time") {
		cfg.Training.Time, _ = flags.GetInt("time")
	}
}

func sourceFor(seed int64) stimulus.RandomSource {
	if seed == 0 {
		return stimulus.NewRandomSource()
	}
	return stimulus.NewSeededSource(seed)
}

// updateConfigFile applies fn to the config file alone, without environment
// overrides or flags, and writes it back unless fn fails.
func updateConfigFile(fn func(*config.Config) error) error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		cfg, err = config.LoadFromFile(path)
		if err != nil {
			return err
		}
	}

	if err := fn(cfg); err != nil {
		return err
	}
	return cfg.SaveToFile(path)
}
