package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"precis/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:         "history [run-id]",
		Short:       "Show recent runs, or per-paper outcomes for one run",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.inspectConfig()
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return renderRunItems(cmd, store, strings.TrimSpace(args[0]))
			}
			return renderRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}

func renderRuns(cmd *cobra.Command, store *ledger.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortRunID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			formatRunDuration(run),
			run.Listing,
			fmt.Sprintf("%d", run.Discovered),
			fmt.Sprintf("%d", run.Skipped),
			fmt.Sprintf("%d", run.Completed),
			fmt.Sprintf("%d", run.Failed),
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Duration", "Listing", "Discovered", "Skipped", "Completed", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintln(out, "Use `precis history <run>` to see per-paper outcomes")
	return nil
}

func renderRunItems(cmd *cobra.Command, store *ledger.Store, runRef string) error {
	run, err := findRun(cmd, store, runRef)
	if err != nil {
		return err
	}

	items, err := store.ItemsForRun(cmd.Context(), run.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s started %s (%s)\n", shortRunID(run.ID),
		run.StartedAt.Local().Format("2006-01-02 15:04"), run.Listing)
	if len(items) == 0 {
		fmt.Fprintln(out, "No paper outcomes recorded")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.PaperID,
			clipText(item.Title, 60),
			formatStatusLabel(string(item.Status)),
			clipText(item.Detail, 70),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"arXiv ID", "Title", "Outcome", "Detail"},
		rows,
		nil,
	))
	return nil
}

// findRun resolves a run reference, accepting any unambiguous id prefix so
// the short ids printed by the runs table are usable directly.
func findRun(cmd *cobra.Command, store *ledger.Store, runRef string) (*ledger.Run, error) {
	if runRef == "" {
		return nil, fmt.Errorf("run id is required")
	}
	runs, err := store.RecentRuns(cmd.Context(), 100)
	if err != nil {
		return nil, err
	}

	var match *ledger.Run
	for i := range runs {
		if !strings.HasPrefix(runs[i].ID, runRef) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run id %q is ambiguous", runRef)
		}
		match = &runs[i]
	}
	if match == nil {
		return nil, fmt.Errorf("no run matches %q", runRef)
	}
	return match, nil
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRunDuration(run ledger.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	d := run.FinishedAt.Sub(run.StartedAt).Round(time.Second)
	if d < 0 {
		d = 0
	}
	return d.String()
}

func clipText(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
