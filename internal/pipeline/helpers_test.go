package pipeline_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"precis/internal/config"
	"precis/internal/extract"
	"precis/internal/library"
	"precis/internal/paper"
	"precis/internal/testsupport"
)

// engineStub lets tests script the extraction result per path.
type engineStub struct {
	fn func(ctx context.Context, path string) (string, error)
}

func (e engineStub) Name() string { return "stub" }

func (e engineStub) ExtractText(ctx context.Context, path string) (string, error) {
	return e.fn(ctx, path)
}

func textEngine(text string) engineStub {
	return engineStub{fn: func(context.Context, string) (string, error) {
		return text, nil
	}}
}

// summarizerStub counts calls and delegates to fn.
type summarizerStub struct {
	calls atomic.Int64
	fn    func(ctx context.Context, p paper.Paper, text string) (string, error)
}

func (s *summarizerStub) Summarize(ctx context.Context, p paper.Paper, text string) (string, error) {
	s.calls.Add(1)
	return s.fn(ctx, p, text)
}

func staticSummarizer(doc string) *summarizerStub {
	return &summarizerStub{fn: func(context.Context, paper.Paper, string) (string, error) {
		return doc, nil
	}}
}

// feedStub returns a fixed listing.
type feedStub struct {
	papers []paper.Paper
	err    error
}

func (f feedStub) Fetch(context.Context) ([]paper.Paper, error) {
	return f.papers, f.err
}

// notifierStub records every notification it receives.
type notifierStub struct {
	mu        sync.Mutex
	started   []int
	completed [][2]int
	errors    []string
}

func (n *notifierStub) NotifyRunStarted(_ context.Context, _ string, count int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, count)
	return nil
}

func (n *notifierStub) NotifyRunCompleted(_ context.Context, completed, failed int, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, [2]int{completed, failed})
	return nil
}

func (n *notifierStub) NotifyError(_ context.Context, err error, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, err.Error())
	return nil
}

func (n *notifierStub) TestNotification(context.Context) error { return nil }

// pdfServer serves a PDF-flavored payload of the given size for every path
// and counts requests.
func pdfServer(t *testing.T, size int64, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		_, _ = w.Write(testsupport.PDFBytes(size))
	}))
	t.Cleanup(server.Close)
	return server
}

func testPapers(serverURL string, titles ...string) []paper.Paper {
	papers := make([]paper.Paper, 0, len(titles))
	for i, title := range titles {
		id := fmt.Sprintf("2408.%05d", 4001+i)
		papers = append(papers, paper.Paper{
			ID:     id,
			Title:  title,
			PDFURL: serverURL + "/pdf/" + id + ".pdf",
		})
	}
	return papers
}

func newTestLibrary(t *testing.T, cfg *config.Config) *library.Library {
	t.Helper()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	return library.New(cfg.Paths.PapersDir, cfg.Paths.SummaryDir)
}

func newTestSandbox(engine extract.Engine, timeout time.Duration) *extract.Sandbox {
	return extract.NewSandbox(engine, extract.NewNoopGuard(), timeout)
}
