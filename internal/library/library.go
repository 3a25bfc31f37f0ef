package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const summarySuffix = "-summary.md"

// Library resolves workspace paths for one run. The zero value is not usable;
// construct with New.
type Library struct {
	papersDir  string
	summaryDir string
}

// New returns a Library rooted at the given cache and artifact directories.
func New(papersDir, summaryDir string) *Library {
	return &Library{papersDir: papersDir, summaryDir: summaryDir}
}

// PapersDir returns the download cache directory.
func (l *Library) PapersDir() string { return l.papersDir }

// SummaryDir returns the artifact directory.
func (l *Library) SummaryDir() string { return l.summaryDir }

// PDFPath returns the download cache location for a canonical key.
func (l *Library) PDFPath(key string) string {
	return filepath.Join(l.papersDir, key+".pdf")
}

// SummaryPath returns the artifact location for a canonical key.
func (l *Library) SummaryPath(key string) string {
	return filepath.Join(l.summaryDir, key+summarySuffix)
}

// Filter is the set of canonical keys that already have a summary artifact.
// It is built once at startup; the create-exclusive artifact write is the
// backstop for anything that appears afterwards.
type Filter struct {
	keys map[string]struct{}
}

// Has reports whether a summary artifact existed for key at scan time.
func (f *Filter) Has(key string) bool {
	_, ok := f.keys[key]
	return ok
}

// Len returns the number of known artifacts.
func (f *Filter) Len() int { return len(f.keys) }

// ScanSummaries lists the artifact directory and returns the idempotency
// filter. A missing directory yields an empty filter, not an error, so first
// runs work before any artifact exists.
func (l *Library) ScanSummaries() (*Filter, error) {
	filter := &Filter{keys: make(map[string]struct{})}

	entries, err := os.ReadDir(l.summaryDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return filter, nil
		}
		return nil, fmt.Errorf("scan summaries: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, summarySuffix) {
			continue
		}
		key := strings.TrimSuffix(name, summarySuffix)
		if key == "" {
			continue
		}
		filter.keys[key] = struct{}{}
	}
	return filter, nil
}

// WriteSummary persists an artifact atomically: the payload lands in a
// same-directory temp file, is synced, and is linked into place, so a summary
// is never observable half-written. An existing artifact is never clobbered;
// callers receive os.ErrExist and treat the item as already complete.
func (l *Library) WriteSummary(key string, data []byte) error {
	dst := l.SummaryPath(key)
	if fi, err := os.Lstat(dst); err == nil {
		if fi.IsDir() {
			return fmt.Errorf("summary path %q is a directory", dst)
		}
		return os.ErrExist
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return writeFileAtomic(l.summaryDir, key+summarySuffix, data)
}

func writeFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dst := filepath.Join(dir, name)

	// Temp file lives in the target directory so the final publish is atomic.
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := writeAll(tmp, data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Publish with a hard link instead of a rename: link fails with EEXIST
	// when a concurrent writer got there first, so an existing artifact is
	// never replaced. The deferred remove drops the temp name either way.
	if err := os.Link(tmpName, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return os.ErrExist
		}
		return err
	}

	// Directory sync is best-effort; semantics vary by filesystem.
	_ = syncDir(dir)
	return nil
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
