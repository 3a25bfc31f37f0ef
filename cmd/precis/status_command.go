package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"precis/internal/config"
	"precis/internal/ledger"
	"precis/internal/library"
	"precis/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkAPI bool

	cmd := &cobra.Command{
		Use:         "status",
		Short:       "Show configuration, preflight checks, and workspace state",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := ctx.inspectConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, describeConfigPath(path), colorize))
			fmt.Fprintln(out, renderStatusLine("Listing", statusInfo, fmt.Sprintf("%s (max %d papers)", cfg.ArXiv.Listing, cfg.ArXiv.MaxPapers), colorize))
			fmt.Fprintln(out, renderStatusLine("Model", statusInfo, cfg.LLM.Model, colorize))
			fmt.Fprintln(out, renderStatusLine("Extraction", statusInfo, fmt.Sprintf("%s engine, %ds deadline", cfg.Extraction.Engine, cfg.Extraction.TimeoutSeconds), colorize))
			fmt.Fprintln(out, renderStatusLine("Group size", statusInfo, fmt.Sprintf("%d", cfg.Workflow.GroupSize), colorize))
			notify := "disabled"
			if cfg.Notifications.NtfyTopic != "" {
				notify = "ntfy configured"
			}
			fmt.Fprintln(out, renderStatusLine("Notifications", statusInfo, notify, colorize))
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range preflight.RunAll(cfg) {
				fmt.Fprintln(out, renderPreflightLine(result, colorize))
			}
			if checkAPI {
				result := preflight.CheckLLM(cmd.Context(), "LLM endpoint", cfg.LLM)
				fmt.Fprintln(out, renderPreflightLine(result, colorize))
			}
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Workspace", colorize) {
				fmt.Fprintln(out, line)
			}
			renderWorkspace(cmd.Context(), out, cfg, colorize)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkAPI, "check-api", false, "Probe the chat-completions endpoint (spends one request)")
	return cmd
}

func describeConfigPath(path string) string {
	if path == "" {
		return "defaults (no file)"
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("%s (missing, using defaults)", path)
	}
	return path
}

func renderPreflightLine(result preflight.Result, colorize bool) string {
	kind := statusError
	if result.Passed {
		kind = statusOK
	}
	return renderStatusLine(result.Name, kind, result.Detail, colorize)
}

func renderWorkspace(ctx context.Context, out io.Writer, cfg *config.Config, colorize bool) {
	lib := library.New(cfg.Paths.PapersDir, cfg.Paths.SummaryDir)

	downloads := countFiles(cfg.Paths.PapersDir, ".pdf")
	fmt.Fprintln(out, renderStatusLine("Download cache", statusInfo, fmt.Sprintf("%d files in %s", downloads, cfg.Paths.PapersDir), colorize))

	summaries := 0
	if filter, err := lib.ScanSummaries(); err == nil {
		summaries = filter.Len()
	}
	fmt.Fprintln(out, renderStatusLine("Summaries", statusInfo, fmt.Sprintf("%d artifacts in %s", summaries, cfg.Paths.SummaryDir), colorize))

	fmt.Fprintln(out, renderStatusLine("Last run", statusInfo, lastRunSummary(ctx, cfg), colorize))
}

// lastRunSummary reads the newest ledger row. The database is only opened
// when it already exists; status never creates workspace state.
func lastRunSummary(ctx context.Context, cfg *config.Config) string {
	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	if _, err := os.Stat(dbPath); err != nil {
		return "no runs recorded"
	}
	store, err := ledger.Open(cfg)
	if err != nil {
		return fmt.Sprintf("history unavailable: %v", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(ctx, 1)
	if err != nil || len(runs) == 0 {
		return "no runs recorded"
	}
	run := runs[0]
	when := run.StartedAt.Local().Format("2006-01-02 15:04")
	if run.FinishedAt == nil {
		return fmt.Sprintf("%s (did not finish)", when)
	}
	return fmt.Sprintf("%s: %d completed, %d failed of %d discovered", when, run.Completed, run.Failed, run.Discovered)
}

func countFiles(dir, suffix string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), suffix) {
			count++
		}
	}
	return count
}
