package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"precis/internal/library"
	"precis/internal/paper"
	"precis/internal/services/arxiv"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	var maxPapers int
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "feed",
		Short:       "Preview the de-duplicated recent listing without processing",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.inspectConfig()
			if err != nil {
				return err
			}
			if maxPapers > 0 {
				cfg.ArXiv.MaxPapers = maxPapers
			}

			client := arxiv.NewClient(arxiv.Config{
				BaseURL:   cfg.ArXiv.BaseURL,
				Listing:   cfg.ArXiv.Listing,
				MaxPapers: cfg.ArXiv.MaxPapers,
			}, arxiv.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Workflow.HTTPTimeoutSeconds) * time.Second}))

			papers, err := client.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch listing: %w", err)
			}

			lib := library.New(cfg.Paths.PapersDir, cfg.Paths.SummaryDir)
			filter, err := lib.ScanSummaries()
			if err != nil {
				return err
			}
			sanitizer := paper.NewSanitizer()

			if asJSON {
				return writeJSON(cmd, buildFeedViews(papers, sanitizer, filter))
			}

			out := cmd.OutOrStdout()
			if len(papers) == 0 {
				fmt.Fprintf(out, "No papers listed for %s\n", cfg.ArXiv.Listing)
				return nil
			}

			pending := 0
			rows := make([][]string, 0, len(papers))
			for i, item := range papers {
				done := filter.Has(sanitizer.Key(item.Title))
				if !done {
					pending++
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					item.ID,
					item.DisplayTitle(70),
					yesNo(done),
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"#", "arXiv ID", "Title", "Summarized"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d papers listed for %s, %d pending\n", len(papers), cfg.ArXiv.Listing, pending)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPapers, "max-papers", 0, "Upper bound on candidate papers (overrides arxiv.max_papers)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the listing as JSON")
	return cmd
}

type feedView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PDFURL     string `json:"pdf_url"`
	Key        string `json:"key"`
	Summarized bool   `json:"summarized"`
}

func buildFeedViews(papers []paper.Paper, sanitizer *paper.Sanitizer, filter *library.Filter) []feedView {
	views := make([]feedView, 0, len(papers))
	for _, item := range papers {
		key := sanitizer.Key(item.Title)
		views = append(views, feedView{
			ID:         item.ID,
			Title:      item.Title,
			PDFURL:     item.PDFURL,
			Key:        key,
			Summarized: filter.Has(key),
		})
	}
	return views
}
