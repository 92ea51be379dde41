package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"mediapull/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
	// Advisory checks report degraded features rather than blocking runs.
	Advisory bool `json:"advisory,omitempty"`
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir)}

	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if cfg.History.Enabled && strings.TrimSpace(cfg.Paths.HistoryDB) != "" {
		results = append(results, CheckDirectoryAccess("History directory", filepath.Dir(cfg.Paths.HistoryDB)))
	}

	if cfg.SponsorBlock.Enabled {
		results = append(results, CheckSponsorBlock(ctx, cfg.SponsorBlock.APIURL))
	}

	return results
}

// Blocking returns the failed checks that are not advisory.
func Blocking(results []Result) []Result {
	var blocking []Result
	for _, r := range Failed(results) {
		if !r.Advisory {
			blocking = append(blocking, r)
		}
	}
	return blocking
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
