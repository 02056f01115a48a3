package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/history"
	"github.com/nvandessel/nback/internal/session"
	"github.com/nvandessel/nback/internal/visualization"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show training history per day",
		Long: `List every day with at least one finished block: how many blocks were
played, and the levels of the passed ones. Today's progress toward the
daily goal is shown at the end.

Examples:
  nback history
  nback history chart
  nback history last`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, _, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			days, err := store.Days(ctx)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			today, err := store.Day(ctx, history.DateKey(time.Now()))
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"days": days,
					"today": map[string]any{
						"date":     today.Date,
						"runs":     today.Runs,
						"goal":     constants.DailyGoal,
						"progress": history.Progress(today.Runs),
					},
				})
			}

			out := cmd.OutOrStdout()
			if len(days) == 0 {
				fmt.Fprintln(out, "No blocks played yet.")
			}
			for _, d := range days {
				fmt.Fprintf(out, "%s  %3d runs  levels %s\n", d.Date, d.Runs, formatLevels(d.Levels))
			}
			fmt.Fprintf(out, "Today: %d/%d runs (%.0f%%)\n", today.Runs, constants.DailyGoal, history.Progress(today.Runs))
			return nil
		},
	}

	cmd.AddCommand(
		newHistoryChartCmd(),
		newHistoryLastCmd(),
	)
	return cmd
}

func newHistoryChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Chart the max, average and min level per day",
		Long: `Chart the max, average and min saved level of every day in the terminal,
or as an HTML page opened in the browser.

Examples:
  nback history chart
  nback history chart --html                 # Write and open an HTML chart
  nback history chart --html -o chart.html --no-open
  nback history chart --serve                # Serve a live chart on localhost`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			htmlOut, _ := cmd.Flags().GetBool("html")
			output, _ := cmd.Flags().GetString("output")
			noOpen, _ := cmd.Flags().GetBool("no-open")
			serve, _ := cmd.Flags().GetBool("serve")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, _, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if serve {
				return runChartServer(cmd, store, noOpen)
			}

			days, err := store.Days(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			points, err := history.CollectSeries(days)
			if errors.Is(err, history.ErrInsufficientData) {
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"points": []history.Point{}, "message": history.InsufficientDataMessage})
				}
				fmt.Fprintln(cmd.OutOrStdout(), history.InsufficientDataMessage)
				return nil
			}
			if err != nil {
				return err
			}

			switch {
			case htmlOut:
				return writeChartHTML(cmd, points, output, noOpen)
			case jsonOut:
				return writeJSON(cmd.OutOrStdout(), map[string]any{"points": points})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderChart(points))
			return nil
		},
	}

	cmd.Flags().Bool("html", false, "Render the chart as an HTML page")
	cmd.Flags().StringP("output", "o", "", "Output file path (--html only)")
	cmd.Flags().Bool("no-open", false, "Don't open the browser")
	cmd.Flags().Bool("serve", false, "Serve a live chart on localhost until Ctrl-C")
	return cmd
}

// writeChartHTML renders points to a self-contained HTML file.
func writeChartHTML(cmd *cobra.Command, points []history.Point, output string, noOpen bool) error {
	htmlBytes, err := visualization.RenderHTML(points)
	if err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}

	outPath := output
	if outPath == "" {
		outPath = filepath.Join(os.TempDir(), "nback-chart.html")
	}
	if err := os.WriteFile(outPath, htmlBytes, 0644); err != nil {
		return fmt.Errorf("write HTML file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", outPath)

	if !noOpen {
		if err := visualization.OpenBrowser(outPath); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, outPath)
		}
	}
	return nil
}

// runChartServer serves the chart on localhost and blocks until Ctrl-C.
func runChartServer(cmd *cobra.Command, store history.Store, noOpen bool) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	srv := visualization.NewServer(store)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for srv.Addr() == "" && time.Now().Before(deadline) {
		select {
		case err := <-errCh:
			return fmt.Errorf("chart server: %w", err)
		case <-time.After(10 * time.Millisecond):
		}
	}

	addr := srv.Addr()
	if addr == "" {
		return fmt.Errorf("chart server failed to start")
	}

	url := "http://" + addr
	fmt.Fprintf(cmd.OutOrStdout(), "Chart server running at %s\n", url)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if !noOpen {
		if err := visualization.OpenBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, url)
		}
	}

	return <-errCh
}

func newHistoryLastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the result of the last finished block",
		Long: `Show the counters, outcome and message of the last finished block.

Examples:
  nback history last
  nback history last --clear    # Forget the saved result`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			clearResult, _ := cmd.Flags().GetBool("clear")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dataDir, err := cfg.ResolveDataDir()
			if err != nil {
				return err
			}
			path := session.ResultFilePath(dataDir)

			if clearResult {
				if err := session.RemoveResult(dataDir); err != nil {
					return fmt.Errorf("failed to clear last result: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"status": "cleared", "path": path})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", path)
				return nil
			}

			res, ok, err := session.LoadResult(dataDir)
			if err != nil {
				return fmt.Errorf("failed to read last result: %w", err)
			}
			if !ok {
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"result": nil, "path": path})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "No finished block yet.")
				return nil
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"result": res, "path": path})
			}
			v := res.Verdict
			c := v.Counters
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  n=%d  %s\n", res.History.Date, v.Level, v.Outcome)
			fmt.Fprintf(out, "  position: %d hits, %d misses, %d errors\n", c.PosHits, c.PosMisses, c.PosErrors)
			fmt.Fprintf(out, "  sound:    %d hits, %d misses, %d errors\n", c.SoundHits, c.SoundMisses, c.SoundErrors)
			fmt.Fprintf(out, "  %s\n", v.Message)
			return nil
		},
	}

	cmd.Flags().Bool("clear", false, "Delete the saved last result")
	return cmd
}

func formatLevels(levels []int) string {
	if len(levels) == 0 {
		return "-"
	}
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, " ")
}

const cellsPerLevel = 3

var (
	chartMin = lipgloss.NewStyle().Foreground(lipgloss.Color("#4db6ac"))
	chartAvg = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd54f"))
	chartMax = lipgloss.NewStyle().Foreground(lipgloss.Color("#e57373"))
)

// renderChart draws one horizontal bar per day: the min segment, then up
// to the average, then up to the max.
func renderChart(points []history.Point) string {
	var sb strings.Builder
	legend := lipgloss.JoinHorizontal(lipgloss.Top,
		chartMin.Render("█ min"), "  ",
		chartAvg.Render("▓ avg"), "  ",
		chartMax.Render("░ max"),
	)
	sb.WriteString(legend)
	sb.WriteString("\n")

	for _, p := range points {
		minCells := p.Min * cellsPerLevel
		avgCells := int(math.Round(p.Avg * cellsPerLevel))
		maxCells := p.Max * cellsPerLevel

		bar := chartMin.Render(strings.Repeat("█", minCells)) +
			chartAvg.Render(strings.Repeat("▓", max(avgCells-minCells, 0))) +
			chartMax.Render(strings.Repeat("░", max(maxCells-max(avgCells, minCells), 0)))
		pad := strings.Repeat(" ", max(constants.MaxLevel*cellsPerLevel-maxCells, 0))

		fmt.Fprintf(&sb, "%s %s%s  max %d  avg %.2f  min %d\n", p.Date, bar, pad, p.Max, p.Avg, p.Min)
	}
	return sb.String()
}
