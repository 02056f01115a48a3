package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/sequence"
	"github.com/nvandessel/nback/internal/sounds"
	"github.com/nvandessel/nback/internal/stimulus"
)

type generatedStep struct {
	Index         int    `json:"index"`
	Position      int    `json:"position"`
	Sound         int    `json:"sound"`
	Tile          int    `json:"tile"`
	SoundName     string `json:"sound_name"`
	PositionMatch bool   `json:"position_match"`
	SoundMatch    bool   `json:"sound_match"`
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a block and print it",
		Long: `Generate one block with exactly the requested number of lag-n matches
per modality and print it step by step. Matches are marked P (position)
and S (sound).

Examples:
  nback generate
  nback generate --level 3 --clues 6 --seed 42
  nback generate --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyTrainingFlags(cmd, cfg)

			n, clues := cfg.Training.Level, cfg.Training.Clues
			if n < constants.MinLevel || n > constants.MaxLevel {
				return fmt.Errorf("level must be between %d and %d, got %d", constants.MinLevel, constants.MaxLevel, n)
			}

			seed, _ := cmd.Flags().GetInt64("seed")
			gen := sequence.NewGenerator(sequence.Config{
				MaxAttempts: cfg.Generator.MaxAttempts,
				Source:      sourceFor(seed),
				Logger:      newLogger(cmd, cfg),
			})

			block, err := gen.GenerateForLevel(n, clues)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			stats := gen.Stats()

			soundSet := cfg.Training.SoundSet
			if !sounds.Known(soundSet) {
				soundSet = sounds.DefaultSet
			}
			steps := describeBlock(block, n, soundSet)

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"level":     n,
					"clues":     clues,
					"length":    block.Len(),
					"attempts":  stats.Attempts,
					"sound_set": soundSet,
					"steps":     steps,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Block n=%d, %d clues, %d steps (attempts: %d)\n", n, clues, block.Len(), stats.Attempts)
			for _, s := range steps {
				marks := ""
				if s.PositionMatch {
					marks += " P"
				}
				if s.SoundMatch {
					marks += " S"
				}
				fmt.Fprintf(out, "  %3d  tile %d  sound %-10s%s\n", s.Index, s.Tile, s.SoundName, marks)
			}
			fmt.Fprintf(out, "Position matches: %d, sound matches: %d\n",
				stimulus.CountMatches(block, n, stimulus.Position),
				stimulus.CountMatches(block, n, stimulus.Sound))
			return nil
		},
	}

	addTrainingFlags(cmd)
	return cmd
}

func describeBlock(block stimulus.Block, n int, soundSet string) []generatedStep {
	steps := make([]generatedStep, 0, block.Len())
	for i, p := range block {
		name, err := sounds.Name(soundSet, p.Sound())
		if err != nil {
			name = "?"
		}
		steps = append(steps, generatedStep{
			Index:         i,
			Position:      int(p.Position()),
			Sound:         int(p.Sound()),
			Tile:          stimulus.TileIndex(p.Position()),
			SoundName:     name,
			PositionMatch: block.MatchesAt(i, n, stimulus.Position),
			SoundMatch:    block.MatchesAt(i, n, stimulus.Sound),
		})
	}
	return steps
}
