package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Pdftotext shells out to the poppler pdftotext binary. Running the
// parse in a separate process means a wedged call is force-killed at
// the deadline instead of lingering until the run exits, and a native
// fault in the parser cannot take the pipeline down with it.
type Pdftotext struct {
	binary string
}

// NewPdftotextEngine constructs the subprocess engine.
func NewPdftotextEngine(binary string) *Pdftotext {
	if binary == "" {
		binary = "pdftotext"
	}
	return &Pdftotext{binary: binary}
}

// Name implements Engine.
func (p *Pdftotext) Name() string { return "pdftotext" }

// ExtractText implements Engine.
func (p *Pdftotext) ExtractText(ctx context.Context, path string) (string, error) {
	cmd := commandContext(ctx, p.binary, "-enc", "UTF-8", path, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return "", fmt.Errorf("%s: %w", p.binary, err)
		}
		return "", fmt.Errorf("%s: %s: %w", p.binary, detail, err)
	}
	return stdout.String(), nil
}
