package preflight

import (
	"context"

	"condish/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Targets are the live dependencies RunAll probes besides the filesystem.
type Targets struct {
	Store  Pinger
	Remote HealthChecker
}

// RunAll executes the checks that apply to cfg. The LLM is probed only when
// it backs the collaborators, the remote API only when it does.
func RunAll(ctx context.Context, cfg *config.Config, targets Targets) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Data directory", cfg.Paths.DataDir)}
	if cfg.Paths.ReportDir != "" {
		results = append(results, CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir))
	}
	results = append(results, CheckStore(ctx, cfg.Store.Backend, targets.Store))

	if cfg.UsesRemoteCollaborators() {
		results = append(results, CheckRemote(ctx, targets.Remote))
	} else {
		results = append(results, CheckLLM(ctx, "Vision LLM", cfg.GetLLM()))
	}
	return results
}

// Failed returns the failing results.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
