package testsupport

import (
	"path/filepath"
	"testing"

	"precis/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options. Directories
// are not created; callers that need them invoke EnsureDirectories.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.PapersDir = filepath.Join(base, "papers")
	cfgVal.Paths.SummaryDir = filepath.Join(base, "summary")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.LLM.APIKey = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey sets the chat-completions credential on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.APIKey = key
	}
}

// WithLLMEndpoint points the summarization client at a test server.
func WithLLMEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithArxivEndpoint points the listing feed at a test server.
func WithArxivEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ArXiv.BaseURL = url
	}
}

// WithMaxPapers caps the number of papers discovered per run.
func WithMaxPapers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ArXiv.MaxPapers = n
	}
}

// WithGroupSize overrides the batch group size on the test config.
func WithGroupSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.GroupSize = n
	}
}

// WithExtractionEngine selects the extraction engine on the test config.
func WithExtractionEngine(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.Engine = name
	}
}

// WithMinPDFBytes overrides the corrupt-download size gate.
func WithMinPDFBytes(n int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.MinPDFBytes = n
	}
}

// WithNtfyTopic enables push notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}
