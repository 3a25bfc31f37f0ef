package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"precis/internal/logging"
	"precis/internal/services"
)

func TestNewConsoleWritesComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "pipeline").Info("paper processed",
		logging.String("paper_key", "Example_Paper"),
		logging.Int("attempts", 2),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO pipeline: paper processed") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "paper_key=Example_Paper") {
		t.Fatalf("expected paper_key attr in %q", line)
	}
	if !strings.Contains(line, "attempts=2") {
		t.Fatalf("expected attempts attr in %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", line)
	}
}

func TestNewConsoleIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected caller information in debug-level logs, got %q", buf.String())
	}
}

func TestNewJSONUsesCanonicalKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("json message", logging.String("k", "v"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected %q key in JSON log, got %v", key, decoded)
		}
	}
	if decoded["msg"] != "json message" {
		t.Fatalf("unexpected msg: %v", decoded["msg"])
	}
	if decoded["k"] != "v" {
		t.Fatalf("unexpected attr value: %v", decoded["k"])
	}
}

func TestNewWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "precis.log")

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf, FilePath: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("persisted line")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "persisted line") {
		t.Fatalf("expected log file to contain message, got %q", content)
	}
	if !strings.Contains(buf.String(), "persisted line") {
		t.Fatal("expected console copy of the message")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "logfmt"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug output suppressed, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("expected info output, got %q", out)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPaperID(ctx, "2408.01234")
	ctx = services.WithStage(ctx, "extract")
	ctx = services.WithRunID(ctx, "run-xyz")

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WithContext(ctx, logger).Info("contextual log")

	line := buf.String()
	for _, want := range []string{"paper_id=2408.01234", "stage=extract", "run_id=run-xyz"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in log line %q", want, line)
		}
	}
}
