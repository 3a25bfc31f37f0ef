package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"precis/internal/logging"
	"precis/internal/paper"
)

// ProcessFunc handles one paper and returns its terminal result.
type ProcessFunc func(ctx context.Context, item paper.Paper) ItemResult

// SchedulerOption configures optional Scheduler behavior.
type SchedulerOption func(*Scheduler)

// WithObserver registers a callback invoked from the scheduler goroutine as
// each result arrives, in completion order. The runner uses this to stream
// outcomes into the ledger while the group is still draining.
func WithObserver(observe func(ItemResult)) SchedulerOption {
	return func(s *Scheduler) {
		s.observe = observe
	}
}

// Scheduler partitions papers into fixed-size groups and runs one goroutine
// per paper within a group. A hard barrier separates groups: group N+1 does
// not start until every member of group N has finished, which bounds the
// number of downloads and extractions in flight.
type Scheduler struct {
	groupSize int
	logger    *slog.Logger
	observe   func(ItemResult)
}

// NewScheduler builds a scheduler with the given group size. Sizes below 1
// fall back to the default of 10.
func NewScheduler(groupSize int, logger *slog.Logger, opts ...SchedulerOption) *Scheduler {
	if groupSize <= 0 {
		groupSize = 10
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Scheduler{groupSize: groupSize, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes the papers and returns every result in completion order.
// The progress counter is owned by this goroutine, so processed/total only
// moves forward. A failed paper never cancels its group; external context
// cancellation stops new groups from starting while the in-flight group
// still drains.
func (s *Scheduler) Run(ctx context.Context, papers []paper.Paper, process ProcessFunc) []ItemResult {
	total := len(papers)
	results := make([]ItemResult, 0, total)
	processed := 0

	for start := 0; start < total; start += s.groupSize {
		if err := ctx.Err(); err != nil {
			s.logger.Info("run canceled, not starting further groups",
				logging.Int("remaining", total-processed),
			)
			break
		}

		end := min(start+s.groupSize, total)
		group := papers[start:end]

		resultCh := make(chan ItemResult, len(group))
		var wg sync.WaitGroup
		for _, item := range group {
			wg.Add(1)
			go func(item paper.Paper) {
				defer wg.Done()
				resultCh <- process(ctx, item)
			}(item)
		}

		for range group {
			result := <-resultCh
			processed++
			s.logger.Info("paper processed",
				logging.Int("processed", processed),
				logging.Int("total", total),
				logging.String(logging.FieldPaperID, result.Paper.ID),
				logging.String("status", string(result.Status)),
			)
			if s.observe != nil {
				s.observe(result)
			}
			results = append(results, result)
		}
		wg.Wait()
	}

	return results
}
