package extract

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLooksLikeHTML(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   bool
	}{
		{"pdf magic", "%PDF-1.5\n%\xe2\xe3\xcf\xd3", false},
		{"doctype", "<!DOCTYPE html><html>", true},
		{"leading whitespace", "\n  <html lang=\"en\">", true},
		{"byte order mark", "\xef\xbb\xbf<html>", true},
		{"plain text", "just some text", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := looksLikeHTML([]byte(tc.header)); got != tc.want {
				t.Fatalf("looksLikeHTML(%q) = %v, want %v", tc.header, got, tc.want)
			}
		})
	}
}

func TestNativeConvertsHTMLDownloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.pdf")

	var body strings.Builder
	body.WriteString("<!DOCTYPE html><html><head><title>Temporarily Unavailable</title></head><body><article><h1>Notice</h1>")
	body.WriteString("<p>The requested document is being regenerated, retry in a moment.</p>")
	for i := 0; i < 40; i++ {
		body.WriteString("<p>Listing pages are produced on demand and cached for later readers.</p>")
	}
	body.WriteString("</article></body></html>")
	if err := os.WriteFile(path, []byte(body.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	text, err := NewNativeEngine().ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "requested document") {
		t.Fatalf("converted text missing article body:\n%s", text)
	}
}

func TestNativeRejectsMalformedPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.pdf")
	data := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0x00, 0x41}, 800)...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sandbox := NewSandbox(NewNativeEngine(), NewNoopGuard(), time.Minute)
	outcome := sandbox.Extract(context.Background(), path)
	if outcome.OK() {
		t.Fatalf("outcome = %+v, want failure for malformed pdf", outcome)
	}
	if outcome.Status != StatusError && outcome.Status != StatusCrashed {
		t.Fatalf("status = %q, want parser failure classification", outcome.Status)
	}
}
