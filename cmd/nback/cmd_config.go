package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/nback/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nback configuration",
		Long: `View and modify nback configuration settings.

Configuration is stored in ~/.nback/config.yaml. Environment variables
(NBACK_LEVEL, NBACK_CLUES, NBACK_TIME, NBACK_SOUND_SET, NBACK_FEEDBACK,
NBACK_LOG_LEVEL, NBACK_DATA_DIR) override the file.

Examples:
  nback config list                          # Show all settings
  nback config get training.level            # Get a specific setting
  nback config set training.level 3          # Set a setting
  nback config set training.sound_set "Letters German"`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}

			out := cmd.OutOrStdout()
			path, _ := config.DefaultPath()
			fmt.Fprintf(out, "Configuration (%s):\n\n", path)
			for _, key := range config.Keys() {
				value, _ := cfg.Get(key)
				fmt.Fprintf(out, "  %-24s %v\n", key+":", valueOrDefault(value))
			}
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, err := cfg.Get(key)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"key": key, "value": value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, valueOrDefault(value))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			err := updateConfigFile(func(c *config.Config) error {
				if err := c.Set(key, value); err != nil {
					return err
				}
				return c.Validate()
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"status": "updated", "key": key, "value": value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

func valueOrDefault(v any) any {
	if s, ok := v.(string); ok && s == "" {
		return "(default)"
	}
	return v
}
