package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"precis/internal/config"
	"precis/internal/testsupport"
)

func completionHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckLLM_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(completionHandler))
	defer srv.Close()

	result := CheckLLM(context.Background(), "LLM", config.LLM{
		APIKey:  "key",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
	})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckLLM_MissingKey(t *testing.T) {
	result := CheckLLM(context.Background(), "LLM", config.LLM{})
	if result.Passed {
		t.Fatal("expected failure without API key")
	}
}

func TestCheckLLM_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckLLM(context.Background(), "LLM", config.LLM{
		APIKey:  "bad",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
	})
	if result.Passed {
		t.Fatal("expected failure for rejected key")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestRunAll_PassesOnHealthyWorkspace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	results := RunAll(cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 checks for native engine, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, first failure: %s: %s", failed[0].Name, failed[0].Detail)
	}
}

func TestRunAll_ReportsMissingDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	results := RunAll(cfg)
	failed := Failed(results)
	if len(failed) != 3 {
		t.Fatalf("expected 3 directory failures, got %d", len(failed))
	}
}

func TestRunAll_ReportsMissingCredential(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIKey(""))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	failed := Failed(RunAll(cfg))
	if len(failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failed))
	}
	if failed[0].Name != "LLM credential" {
		t.Fatalf("unexpected failing check %q", failed[0].Name)
	}
}

func TestCheckSystemDeps_MarksEngineOptionalForNative(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(statuses))
	}
	if !statuses[0].Optional {
		t.Fatal("expected pdftotext to be optional with the native engine")
	}

	cfg = testsupport.NewConfig(t, testsupport.WithExtractionEngine("pdftotext"))
	statuses = CheckSystemDeps(cfg)
	if statuses[0].Optional {
		t.Fatal("expected pdftotext to be required with the subprocess engine")
	}
}
