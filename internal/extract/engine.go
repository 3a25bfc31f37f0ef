package extract

import (
	"context"

	"precis/internal/config"
)

// Engine extracts plain text from a downloaded document. Implementations
// are not trusted to return promptly or to survive malformed input, so
// they must only be invoked through the Sandbox.
type Engine interface {
	Name() string
	ExtractText(ctx context.Context, path string) (string, error)
}

// NewEngine selects the extraction engine named by the configuration.
func NewEngine(cfg *config.Config) Engine {
	if cfg.Extraction.Engine == "pdftotext" {
		return NewPdftotextEngine(cfg.PdftotextBinary())
	}
	return NewNativeEngine()
}

var (
	_ Engine = (*Native)(nil)
	_ Engine = (*Pdftotext)(nil)
)
