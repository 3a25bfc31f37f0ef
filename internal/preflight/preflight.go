package preflight

import (
	"precis/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the offline preflight checks for the given config. The
// endpoint health probe is deliberately excluded so a run never spends an
// API call before fetching the listing; the status command invokes CheckLLM
// separately.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Papers directory", cfg.Paths.PapersDir))
	results = append(results, CheckDirectoryAccess("Summary directory", cfg.Paths.SummaryDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	results = append(results, CheckCredential(cfg.LLM))

	if cfg.Extraction.Engine == "pdftotext" {
		results = append(results, CheckExtractionEngine(cfg))
	}

	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
