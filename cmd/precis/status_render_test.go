package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Model", statusInfo, "test-model", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Model:", "[INFO] test-model")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("LLM endpoint", statusOK, "reachable", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderStatusLineOmitsEmptyMessage(t *testing.T) {
	got := renderStatusLine("Checks", statusError, "", false)
	if !strings.HasSuffix(got, "[ERROR]") {
		t.Fatalf("expected bare status marker, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Workspace", false)
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %d lines", len(lines))
	}
	if lines[0] != "== Workspace ==" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("rule = %q does not match header width", lines[1])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}

func TestFormatStatusLabel(t *testing.T) {
	cases := map[string]string{
		"completed":            "Completed",
		"summarization_failed": "Summarization Failed",
		"corrupt_download":     "Corrupt Download",
		"  skipped  ":          "Skipped",
		"":                     "",
	}
	for input, want := range cases {
		if got := formatStatusLabel(input); got != want {
			t.Fatalf("formatStatusLabel(%q) = %q, want %q", input, got, want)
		}
	}
}
