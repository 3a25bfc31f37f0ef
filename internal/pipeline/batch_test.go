package pipeline_test

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"precis/internal/ledger"
	"precis/internal/paper"
	"precis/internal/pipeline"
)

func listingOf(titles ...string) []paper.Paper {
	papers := make([]paper.Paper, 0, len(titles))
	for i, title := range titles {
		papers = append(papers, paper.Paper{ID: strconv.Itoa(i + 1), Title: title})
	}
	return papers
}

func completedResult(item paper.Paper) pipeline.ItemResult {
	return pipeline.ItemResult{Paper: item, Key: item.Title, Status: ledger.StatusCompleted}
}

func TestSchedulerEnforcesGroupBarrier(t *testing.T) {
	papers := listingOf("A", "B", "C", "D")

	var firstGroupInflight atomic.Int64
	var overlaps atomic.Int64
	process := func(_ context.Context, item paper.Paper) pipeline.ItemResult {
		switch item.Title {
		case "A", "B":
			firstGroupInflight.Add(1)
			defer firstGroupInflight.Add(-1)
			time.Sleep(30 * time.Millisecond)
		default:
			if firstGroupInflight.Load() != 0 {
				overlaps.Add(1)
			}
		}
		return completedResult(item)
	}

	results := pipeline.NewScheduler(2, nil).Run(context.Background(), papers, process)

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if overlaps.Load() != 0 {
		t.Error("second group started while the first was still in flight")
	}
	for i, want := range []map[string]bool{
		{"A": true, "B": true},
		{"A": true, "B": true},
		{"C": true, "D": true},
		{"C": true, "D": true},
	} {
		if !want[results[i].Paper.Title] {
			t.Errorf("result %d is %q, expected a member of %v", i, results[i].Paper.Title, want)
		}
	}
}

func TestSchedulerProgressIsMonotonic(t *testing.T) {
	papers := listingOf("A", "B", "C", "D", "E", "F", "G")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	process := func(_ context.Context, item paper.Paper) pipeline.ItemResult {
		return completedResult(item)
	}

	results := pipeline.NewScheduler(3, logger).Run(context.Background(), papers, process)
	if len(results) != len(papers) {
		t.Fatalf("expected %d results, got %d", len(papers), len(results))
	}

	progress := regexp.MustCompile(`msg="paper processed" processed=(\d+) total=(\d+)`)
	matches := progress.FindAllStringSubmatch(buf.String(), -1)
	if len(matches) != len(papers) {
		t.Fatalf("expected %d progress lines, got %d", len(papers), len(matches))
	}
	for i, match := range matches {
		if got, _ := strconv.Atoi(match[1]); got != i+1 {
			t.Errorf("progress line %d reports processed=%s, want %d", i, match[1], i+1)
		}
		if total, _ := strconv.Atoi(match[2]); total != len(papers) {
			t.Errorf("progress line %d reports total=%s, want %d", i, match[2], len(papers))
		}
	}
}

func TestSchedulerObserverSeesEveryResult(t *testing.T) {
	papers := listingOf("A", "B", "C", "D", "E")

	var observed []pipeline.ItemResult
	scheduler := pipeline.NewScheduler(2, nil, pipeline.WithObserver(func(result pipeline.ItemResult) {
		observed = append(observed, result)
	}))
	results := scheduler.Run(context.Background(), papers, func(_ context.Context, item paper.Paper) pipeline.ItemResult {
		return completedResult(item)
	})

	if len(observed) != len(results) {
		t.Fatalf("observer saw %d results, scheduler returned %d", len(observed), len(results))
	}
	for i := range results {
		if observed[i].Paper.ID != results[i].Paper.ID {
			t.Errorf("observer order diverges at %d: %s != %s", i, observed[i].Paper.ID, results[i].Paper.ID)
		}
	}

	seen := make(map[string]int)
	for _, result := range results {
		seen[result.Paper.Title]++
	}
	for _, item := range papers {
		if seen[item.Title] != 1 {
			t.Errorf("paper %q reported %d times", item.Title, seen[item.Title])
		}
	}
}

func TestSchedulerFailureDoesNotStopGroup(t *testing.T) {
	papers := listingOf("A", "B", "C")

	process := func(_ context.Context, item paper.Paper) pipeline.ItemResult {
		if item.Title == "B" {
			return pipeline.ItemResult{Paper: item, Key: item.Title, Status: ledger.StatusDownloadFailed, Detail: "download returned http 404"}
		}
		time.Sleep(20 * time.Millisecond)
		return completedResult(item)
	}

	results := pipeline.NewScheduler(3, nil).Run(context.Background(), papers, process)

	if len(results) != 3 {
		t.Fatalf("expected the whole group to finish, got %d results", len(results))
	}
	var completed, failed int
	for _, result := range results {
		if result.Failed() {
			failed++
		} else {
			completed++
		}
	}
	if completed != 2 || failed != 1 {
		t.Errorf("expected 2 completed and 1 failed, got %d/%d", completed, failed)
	}
}

func TestSchedulerStopsNewGroupsAfterCancel(t *testing.T) {
	papers := listingOf("A", "B", "C", "D", "E", "F")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	process := func(_ context.Context, item paper.Paper) pipeline.ItemResult {
		cancel()
		return completedResult(item)
	}

	results := pipeline.NewScheduler(2, nil).Run(ctx, papers, process)

	if len(results) != 2 {
		t.Fatalf("cancellation should drain only the in-flight group, got %d results", len(results))
	}
	seen := map[string]bool{}
	for _, result := range results {
		seen[result.Paper.Title] = true
	}
	if !seen["A"] || !seen["B"] {
		t.Errorf("in-flight group must drain after cancel, got %v", seen)
	}
}

func TestSchedulerHandlesEmptyListing(t *testing.T) {
	var calls atomic.Int64
	results := pipeline.NewScheduler(10, nil).Run(context.Background(), nil, func(_ context.Context, item paper.Paper) pipeline.ItemResult {
		calls.Add(1)
		return completedResult(item)
	})

	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if calls.Load() != 0 {
		t.Error("process must not run for an empty listing")
	}
}
