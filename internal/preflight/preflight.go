package preflight

import (
	"context"

	"tubelift/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Remote checks only run for the configured storage backend and when Matrix
// is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckStorageFromConfig(ctx, cfg),
	}
	if cfg.Matrix.Enabled {
		results = append(results, CheckMatrix(ctx, cfg.Matrix.HomeserverURL, cfg.Matrix.AccessToken))
	}
	for _, dep := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: dep.Name, Passed: dep.Available || dep.Optional, Detail: dep.Command}
		switch {
		case dep.Detail != "":
			result.Detail = dep.Detail
		case dep.Version != "":
			result.Detail = dep.Path + " (" + dep.Version + ")"
		}
		results = append(results, result)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
