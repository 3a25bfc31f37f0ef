package pipeline

import (
	"time"

	"precis/internal/ledger"
	"precis/internal/paper"
)

// ItemResult is the terminal outcome of processing one paper. Failure
// statuses carry a human-readable reason in Detail.
type ItemResult struct {
	Paper   paper.Paper
	Key     string
	Status  ledger.Status
	Detail  string
	Elapsed time.Duration
}

// Failed reports whether the item counts toward the run's failure total.
func (r ItemResult) Failed() bool {
	return r.Status.Failure()
}

// Report aggregates one run. Discovered = Skipped + Completed + Failed;
// Processed counts only the papers that entered the batch scheduler.
type Report struct {
	RunID      string
	Listing    string
	Discovered int
	Skipped    int
	Processed  int
	Completed  int
	Failed     int
	Elapsed    time.Duration
	Results    []ItemResult
}

// Tally folds a result into the report counters.
func (r *Report) Tally(result ItemResult) {
	switch {
	case result.Status == ledger.StatusCompleted:
		r.Completed++
	case result.Status == ledger.StatusSkipped:
		r.Skipped++
	case result.Failed():
		r.Failed++
	}
}
