package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediapull/internal/deps"
	"mediapull/internal/preflight"
)

type doctorReport struct {
	ConfigPath   string             `json:"config_path"`
	Dependencies []deps.Status      `json:"dependencies"`
	Checks       []preflight.Result `json:"checks"`
	OK           bool               `json:"ok"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			report := doctorReport{
				ConfigPath:   ctx.resolvedPath,
				Dependencies: deps.Check(cfg),
				Checks:       preflight.RunAll(cmd.Context(), cfg),
			}
			missing := deps.Missing(report.Dependencies)
			blocking := preflight.Blocking(report.Checks)
			report.OK = len(missing) == 0 && len(blocking) == 0

			if ctx.JSONMode() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader("Dependencies", colorize)
				lines = append(lines, dependencyLines(report.Dependencies, colorize)...)
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Environment", colorize)...)
				lines = append(lines, checkLines(report.Checks, colorize)...)
				fmt.Fprintln(out, strings.Join(lines, "\n"))
			}

			if !report.OK {
				return fmt.Errorf("doctor found %d problem(s)", len(missing)+len(blocking))
			}
			return nil
		},
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	var missing []string
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		if dep.Optional {
			lines = append(lines, renderStatusLine(dep.Name, statusWarn, detail+" (optional)", colorize))
			continue
		}
		lines = append(lines, renderStatusLine(dep.Name, statusError, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing", statusError, strings.Join(missing, ", ")+" must be installed or configured under [tools]", colorize))
	}
	return lines
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		kind := statusOK
		switch {
		case result.Passed:
		case result.Advisory:
			kind = statusWarn
		default:
			kind = statusError
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines
}
