package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"precis/internal/config"
	"precis/internal/extract"
	"precis/internal/ledger"
	"precis/internal/library"
	"precis/internal/logging"
	"precis/internal/notifications"
	"precis/internal/paper"
	"precis/internal/services"
	"precis/internal/services/arxiv"
	"precis/internal/services/llm"
)

// Feed supplies the candidate papers for a run.
type Feed interface {
	Fetch(ctx context.Context) ([]paper.Paper, error)
}

var _ Feed = (*arxiv.Client)(nil)

// RunnerOption overrides a runner collaborator, mostly for tests.
type RunnerOption func(*Runner)

// WithFeed substitutes the discovery feed.
func WithFeed(feed Feed) RunnerOption {
	return func(r *Runner) {
		r.feed = feed
	}
}

// WithSummarizer substitutes the summarization client.
func WithSummarizer(summarizer Summarizer) RunnerOption {
	return func(r *Runner) {
		r.summarizer = summarizer
	}
}

// WithSandbox substitutes the extraction sandbox.
func WithSandbox(sandbox *extract.Sandbox) RunnerOption {
	return func(r *Runner) {
		r.sandbox = sandbox
	}
}

// WithNotifier substitutes the notification service.
func WithNotifier(notifier notifications.Service) RunnerOption {
	return func(r *Runner) {
		r.notifier = notifier
	}
}

// WithHTTPClient substitutes the shared download client.
func WithHTTPClient(client *http.Client) RunnerOption {
	return func(r *Runner) {
		r.client = client
	}
}

// Runner executes one complete pipeline run: discovery, idempotency
// filtering, batch processing, and run bookkeeping.
type Runner struct {
	cfg       *config.Config
	store     *ledger.Store
	logger    *slog.Logger
	library   *library.Library
	sanitizer *paper.Sanitizer

	feed       Feed
	summarizer Summarizer
	sandbox    *extract.Sandbox
	notifier   notifications.Service
	client     *http.Client
	processor  *Processor
}

// NewRunner wires a runner from config. The stream guard is installed on
// the default sandbox so extractor noise stays out of the run's terminal;
// collaborators not overridden by options are built from config.
func NewRunner(cfg *config.Config, store *ledger.Store, guard extract.StreamGuard, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:       cfg,
		store:     store,
		logger:    logger,
		library:   library.New(cfg.Paths.PapersDir, cfg.Paths.SummaryDir),
		sanitizer: paper.NewSanitizer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: time.Duration(cfg.Workflow.HTTPTimeoutSeconds) * time.Second}
	}
	if r.feed == nil {
		r.feed = arxiv.NewClient(arxiv.Config{
			BaseURL:   cfg.ArXiv.BaseURL,
			Listing:   cfg.ArXiv.Listing,
			MaxPapers: cfg.ArXiv.MaxPapers,
		}, arxiv.WithHTTPClient(r.client))
	}
	if r.summarizer == nil {
		r.summarizer = llm.NewClient(llm.Config{
			APIKey:              cfg.LLM.APIKey,
			BaseURL:             cfg.LLM.BaseURL,
			Model:               cfg.LLM.Model,
			MaxCompletionTokens: cfg.LLM.MaxCompletionTokens,
			TimeoutSeconds:      cfg.LLM.TimeoutSeconds,
		})
	}
	if r.sandbox == nil {
		timeout := time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second
		r.sandbox = extract.NewSandbox(extract.NewEngine(cfg), guard, timeout)
	}
	if r.notifier == nil {
		r.notifier = notifications.NewService(cfg)
	}
	r.processor = NewProcessor(cfg, r.library, r.sandbox, r.summarizer, r.client, logger)
	return r
}

// Run executes one complete pipeline run and returns its report. Only
// environment-level failures (feed, workspace, ledger startup) return an
// error; per-paper failures are folded into the report. Cancellation stops
// new groups and yields a partial report, not an error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	r.logger.Info("fetching listing",
		logging.String("listing", r.cfg.ArXiv.Listing),
		logging.String("base_url", r.cfg.ArXiv.BaseURL),
	)
	papers, err := r.feed.Fetch(ctx)
	if err != nil {
		feedErr := fmt.Errorf("fetch listing: %w", err)
		if notifyErr := r.notifier.NotifyError(context.WithoutCancel(ctx), feedErr, "listing fetch"); notifyErr != nil {
			r.logger.Warn("notification delivery failed", logging.Error(notifyErr))
		}
		return nil, feedErr
	}
	r.logger.Info("listing fetched", logging.Int("papers", len(papers)))

	filter, err := r.library.ScanSummaries()
	if err != nil {
		return nil, err
	}

	var pending []paper.Paper
	var skipped []ItemResult
	for _, item := range papers {
		key := r.sanitizer.Key(item.Title)
		if filter.Has(key) {
			skipped = append(skipped, ItemResult{
				Paper:  item,
				Key:    key,
				Status: ledger.StatusSkipped,
				Detail: "summary already exists",
			})
			continue
		}
		pending = append(pending, item)
	}

	run, err := r.store.BeginRun(ctx, r.cfg.ArXiv.Listing, len(papers), len(skipped))
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	ctx = services.WithRunID(ctx, run.ID)
	log := logging.WithContext(ctx, r.logger)

	// Bookkeeping must survive SIGINT: the in-flight group still drains
	// after cancellation and its outcomes belong in the ledger.
	persistCtx := context.WithoutCancel(ctx)

	report := &Report{
		RunID:      run.ID,
		Listing:    r.cfg.ArXiv.Listing,
		Discovered: len(papers),
	}

	for _, result := range skipped {
		report.Tally(result)
		r.recordItem(persistCtx, log, run.ID, result)
	}
	if len(skipped) > 0 {
		log.Info("skipping papers with existing summaries", logging.Int("skipped", len(skipped)))
	}

	if err := r.notifier.NotifyRunStarted(ctx, r.cfg.ArXiv.Listing, len(pending)); err != nil {
		log.Warn("notification delivery failed", logging.Error(err))
	}

	scheduler := NewScheduler(r.cfg.Workflow.GroupSize, log, WithObserver(func(result ItemResult) {
		report.Tally(result)
		r.recordItem(persistCtx, log, run.ID, result)
	}))
	results := scheduler.Run(ctx, pending, r.processor.Process)

	// Processed counts papers the scheduler actually dispatched; after a
	// cancellation that is fewer than the pending set.
	report.Processed = len(results)
	report.Results = append(skipped, results...)
	report.Elapsed = time.Since(start)

	if err := r.store.CompleteRun(persistCtx, run.ID, report.Processed, report.Completed, report.Failed); err != nil {
		log.Warn("failed to record run completion", logging.Error(err))
	}
	if err := r.notifier.NotifyRunCompleted(persistCtx, report.Completed, report.Failed, report.Elapsed); err != nil {
		log.Warn("notification delivery failed", logging.Error(err))
	}

	log.Info("run complete",
		logging.Int("discovered", report.Discovered),
		logging.Int("skipped", report.Skipped),
		logging.Int("completed", report.Completed),
		logging.Int("failed", report.Failed),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (r *Runner) recordItem(ctx context.Context, log *slog.Logger, runID string, result ItemResult) {
	err := r.store.RecordItem(ctx, runID, ledger.Item{
		PaperID: result.Paper.ID,
		Title:   result.Paper.Title,
		Key:     result.Key,
		Status:  result.Status,
		Detail:  result.Detail,
	})
	if err != nil {
		log.Warn("failed to record item outcome",
			logging.String(logging.FieldPaperID, result.Paper.ID),
			logging.Error(err),
		)
	}
}
