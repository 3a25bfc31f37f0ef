package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"precis/internal/config"
	"precis/internal/extract"
	"precis/internal/ledger"
	"precis/internal/logging"
	"precis/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var listing string
	var maxPapers int
	var groupSize int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover, summarize, and persist recent papers",
		Long: `Fetches the recent listing, downloads papers without an existing summary,
extracts their text inside the sandbox, and writes one markdown artifact per
paper. Item failures are reported and never abort the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if listing != "" {
				cfg.ArXiv.Listing = listing
			}
			if maxPapers > 0 {
				cfg.ArXiv.MaxPapers = maxPapers
			}
			if groupSize > 0 {
				cfg.Workflow.GroupSize = groupSize
			}
			return runPipeline(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&listing, "listing", "", "Category listing to scan (overrides arxiv.listing)")
	cmd.Flags().IntVar(&maxPapers, "max-papers", 0, "Upper bound on candidate papers (overrides arxiv.max_papers)")
	cmd.Flags().IntVar(&groupSize, "group-size", 0, "Papers processed concurrently per group (overrides workflow.group_size)")
	return cmd
}

func runPipeline(cmd *cobra.Command, cfg *config.Config) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "precis.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return errors.New("another precis run is already using this workspace")
	}
	defer func() { _ = lock.Unlock() }()

	// The guard hands out descriptors duplicated before any suppression, so
	// console logging stays visible while extractor noise goes to /dev/null.
	guard := extract.NewStreamGuard()
	defer guard.Close()

	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("precis-%s.log", time.Now().UTC().Format("20060102T150405Z")))
	logger, err := logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Console:  guard.Stdout(),
		FilePath: logPath,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: unable to update precis.log pointer: %v\n", err)
	}

	store, err := ledger.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	logger.Info("starting run",
		logging.String("listing", cfg.ArXiv.Listing),
		logging.String("model", cfg.LLM.Model),
		logging.String("engine", cfg.Extraction.Engine),
		logging.Int("group_size", cfg.Workflow.GroupSize),
	)

	runner := pipeline.NewRunner(cfg, store, guard, logger)
	report, err := runner.Run(signalCtx)
	if err != nil {
		return err
	}

	renderReport(cmd.OutOrStdout(), cfg, report)
	return nil
}

// renderReport prints the end-of-run summary. Item failures are listed but do
// not affect the exit status; only environment failures abort a run.
func renderReport(out io.Writer, cfg *config.Config, report *pipeline.Report) {
	fmt.Fprintf(out, "\nRun complete: %d summarized, %d skipped, %d failed (%d discovered, %s)\n",
		report.Completed, report.Skipped, report.Failed, report.Discovered, report.Elapsed.Round(time.Second))

	failures := make([][]string, 0)
	for _, result := range report.Results {
		if !result.Failed() {
			continue
		}
		failures = append(failures, []string{
			result.Paper.ID,
			result.Paper.DisplayTitle(60),
			formatStatusLabel(string(result.Status)),
			result.Detail,
		})
	}
	if len(failures) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"arXiv ID", "Title", "Outcome", "Detail"},
			failures,
			nil,
		))
	}

	fmt.Fprintf(out, "Summaries: %s\n", cfg.Paths.SummaryDir)
}

// ensureCurrentLogPointer keeps a stable precis.log name pointing at the
// newest per-run log file.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "precis.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}
