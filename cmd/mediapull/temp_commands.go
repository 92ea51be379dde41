package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediapull/internal/staging"
)

func newTempCommand(ctx *commandContext) *cobra.Command {
	tempCmd := &cobra.Command{
		Use:   "temp",
		Short: "Manage leftover temp files in the output directory",
	}

	tempCmd.AddCommand(newTempListCommand(ctx))
	tempCmd.AddCommand(newTempCleanCommand(ctx))

	return tempCmd
}

func newTempListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List temp and partial download files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			outputDir := strings.TrimSpace(cfg.Paths.OutputDir)
			files, err := staging.ListTemp(outputDir)
			if err != nil {
				return fmt.Errorf("list temp files: %w", err)
			}
			if files == nil {
				files = []staging.FileInfo{}
			}

			var totalSize int64
			for _, file := range files {
				totalSize += file.Size
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"output_dir":       outputDir,
					"files":            files,
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No temp files found")
				return nil
			}

			fmt.Fprintf(out, "Output directory: %s\n\n", outputDir)
			rows := make([][]string, 0, len(files))
			for _, file := range files {
				age := time.Since(file.ModTime).Truncate(time.Minute)
				rows = append(rows, []string{file.Name, formatAge(age), formatBytes(file.Size)})
			}
			fmt.Fprint(out, renderTable(
				[]string{"File", "Age", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
				fmt.Sprintf("%d files", len(files)), "", formatBytes(totalSize),
			))
			return nil
		},
	}
}

func newTempCleanCommand(ctx *commandContext) *cobra.Command {
	var cleanAll bool
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove abandoned temp files",
		Long: `Remove temp and partial download files left behind by interrupted runs.

By default only files older than --older-than are removed, so a download that
is still running in another process keeps its temp files.

Use --all to remove every temp file regardless of age.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			maxAge := olderThan
			if cleanAll {
				maxAge = 0
			}
			result := staging.CleanStale(cmd.Context(), cfg.Paths.OutputDir, maxAge, logger)
			if ctx.JSONMode() {
				return writeCleanJSON(cmd, result)
			}
			return printCleanResult(cmd, result)
		},
	}

	cmd.Flags().BoolVar(&cleanAll, "all", false, "Remove all temp files regardless of age")
	cmd.Flags().DurationVar(&olderThan, "older-than", staleTempAge, "Minimum age of files to remove")

	return cmd
}

func printCleanResult(cmd *cobra.Command, result staging.CleanResult) error {
	out := cmd.OutOrStdout()
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(out, "No temp files to clean")
		return nil
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Removed %d temp files, %d errors\n", len(result.Removed), len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
		return nil
	}
	fmt.Fprintf(out, "Removed %d temp files\n", len(result.Removed))
	return nil
}

func writeCleanJSON(cmd *cobra.Command, result staging.CleanResult) error {
	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
	}
	return writeJSON(cmd, map[string]any{
		"removed": len(result.Removed),
		"errors":  errs,
	})
}

func formatAge(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}
