package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"precis/internal/config"
	"precis/internal/extract"
	"precis/internal/ledger"
	"precis/internal/library"
	"precis/internal/logging"
	"precis/internal/paper"
	"precis/internal/services"
	"precis/internal/services/arxiv"
	"precis/internal/services/llm"
)

// Summarizer generates the finished artifact document for one paper.
type Summarizer interface {
	Summarize(ctx context.Context, p paper.Paper, text string) (string, error)
}

var _ Summarizer = (*llm.Client)(nil)

// Processor runs one paper through download, validation, sandboxed
// extraction, summarization, and persist.
type Processor struct {
	cfg        *config.Config
	library    *library.Library
	sandbox    *extract.Sandbox
	summarizer Summarizer
	client     *http.Client
	sanitizer  *paper.Sanitizer
	logger     *slog.Logger
}

// NewProcessor wires the per-paper stage sequence. A nil client gets the
// config's shared download timeout; a nil logger discards output.
func NewProcessor(cfg *config.Config, lib *library.Library, sandbox *extract.Sandbox, summarizer Summarizer, client *http.Client, logger *slog.Logger) *Processor {
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.Workflow.HTTPTimeoutSeconds) * time.Second}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		cfg:        cfg,
		library:    lib,
		sandbox:    sandbox,
		summarizer: summarizer,
		client:     client,
		sanitizer:  paper.NewSanitizer(),
		logger:     logger,
	}
}

// Process runs the full stage sequence for one paper and returns its
// terminal outcome. Errors never escape; every failure is folded into the
// result so the caller's group keeps going.
func (p *Processor) Process(ctx context.Context, item paper.Paper) ItemResult {
	start := time.Now()
	key := p.sanitizer.Key(item.Title)
	ctx = services.WithPaperID(ctx, item.ID)
	log := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldPaperKey, key))

	finish := func(status ledger.Status, detail string) ItemResult {
		return ItemResult{Paper: item, Key: key, Status: status, Detail: detail, Elapsed: time.Since(start)}
	}

	pdfPath := p.library.PDFPath(key)
	cached, err := p.download(services.WithStage(ctx, "download"), item, pdfPath)
	if err != nil {
		log.Warn("download failed", logging.String(logging.FieldStage, "download"), logging.Error(err))
		return finish(ledger.StatusDownloadFailed, err.Error())
	}
	if cached {
		log.Debug("using cached download", logging.String("path", pdfPath))
	}

	if err := p.validateSize(pdfPath); err != nil {
		log.Warn("corrupt download removed", logging.String(logging.FieldStage, "validate"), logging.Error(err))
		return finish(ledger.StatusCorruptDownload, err.Error())
	}

	outcome := p.sandbox.Extract(services.WithStage(ctx, "extract"), pdfPath)
	if !outcome.OK() {
		log.Warn("extraction failed",
			logging.String(logging.FieldStage, "extract"),
			logging.String("outcome", string(outcome.Status)),
			logging.String("reason", outcome.Reason()),
		)
		return finish(ledger.StatusExtractionFailed, outcome.Reason())
	}

	summary, err := p.summarizer.Summarize(services.WithStage(ctx, "summarize"), item, outcome.Text)
	if err != nil {
		log.Warn("summarization failed", logging.String(logging.FieldStage, "summarize"), logging.Error(err))
		return finish(ledger.StatusSummarizationFailed, err.Error())
	}

	if err := p.library.WriteSummary(key, []byte(summary)); err != nil {
		if errors.Is(err, os.ErrExist) {
			log.Info("summary already exists, skipping", logging.String(logging.FieldStage, "persist"))
			return finish(ledger.StatusSkipped, "summary already exists")
		}
		log.Warn("summary persist failed", logging.String(logging.FieldStage, "persist"), logging.Error(err))
		return finish(ledger.StatusSummarizationFailed, fmt.Sprintf("persist summary: %v", err))
	}

	log.Info("summary written",
		logging.String("artifact", p.library.SummaryPath(key)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return finish(ledger.StatusCompleted, "")
}

// download fetches the paper's PDF into the cache unless a cached copy is
// already present. The cached flag lets the caller log the skip; the size
// gate still applies to cached files.
func (p *Processor) download(ctx context.Context, item paper.Paper, dest string) (cached bool, err error) {
	if _, statErr := os.Lstat(dest); statErr == nil {
		return true, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.PDFURL, nil)
	if err != nil {
		return false, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", arxiv.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("download pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("download returned http %d", resp.StatusCode)
	}

	file, err := os.Create(dest)
	if err != nil {
		return false, fmt.Errorf("create download file: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(dest)
		return false, fmt.Errorf("write download: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(dest)
		return false, fmt.Errorf("close download: %w", err)
	}
	return false, nil
}

// validateSize deletes downloads below the configured minimum so the next
// run re-fetches them instead of feeding garbage to the extractor.
func (p *Processor) validateSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat download: %w", err)
	}
	if info.Size() < p.cfg.Extraction.MinPDFBytes {
		_ = os.Remove(path)
		return fmt.Errorf("download too small (%d bytes, minimum %d), removed", info.Size(), p.cfg.Extraction.MinPDFBytes)
	}
	return nil
}
