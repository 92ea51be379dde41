package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediapull/internal/history"
)

const defaultHistoryLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect completed downloads",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistorySearchCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("download history is disabled (set history.enabled = true)")
	}
	store, err := history.OpenFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				entries, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printHistory(cmd, ctx, entries, "No downloads recorded yet")
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Maximum entries to show (0 for all)")
	return cmd
}

func newHistorySearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Find downloads by title, channel, or URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withHistory(func(store *history.Store) error {
				entries, err := store.Search(cmd.Context(), query)
				if err != nil {
					return err
				}
				return printHistory(cmd, ctx, entries, fmt.Sprintf("No downloads match %q", query))
			})
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries\n", removed)
				return nil
			})
		},
	}
}

func printHistory(cmd *cobra.Command, ctx *commandContext, entries []history.Entry, emptyMessage string) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, entries)
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, emptyMessage)
		return nil
	}

	var total int64
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		total += entry.FileSize
		rows = append(rows, []string{
			humanize.Time(entry.Timestamp),
			entry.Title,
			entry.Channel,
			firstNonEmpty(entry.Mode, "-"),
			firstNonEmpty(entry.Quality, "-"),
			formatBytes(entry.FileSize),
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"When", "Title", "Channel", "Mode", "Quality", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
		"", fmt.Sprintf("%d downloads", len(entries)), "", "", "", formatBytes(total),
	))
	return nil
}

func formatBytes(size int64) string {
	if size <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(size))
}
