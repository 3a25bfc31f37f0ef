package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"precis/internal/config"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Run is one pipeline invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Listing    string
	Discovered int
	Skipped    int
	Processed  int
	Completed  int
	Failed     int
}

// Item is the recorded outcome for one paper within a run.
type Item struct {
	ID        int64
	RunID     string
	PaperID   string
	Title     string
	Key       string
	Status    Status
	Detail    string
	CreatedAt time.Time
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the history database under the log directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// BeginRun records the start of a pipeline run and returns it with a
// fresh identifier.
func (s *Store) BeginRun(ctx context.Context, listing string, discovered, skipped int) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		Listing:    listing,
		Discovered: discovered,
		Skipped:    skipped,
	}
	err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (id, started_at, listing, discovered, skipped) VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.Format(time.RFC3339Nano),
		run.Listing,
		run.Discovered,
		run.Skipped,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordItem appends one paper outcome to a run. Workers call this
// concurrently; WAL mode plus the busy retry keep writes serialized.
func (s *Store) RecordItem(ctx context.Context, runID string, item Item) error {
	if !item.Status.Valid() {
		return fmt.Errorf("record item: unknown status %q", item.Status)
	}
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	err := s.execWithRetry(
		ctx,
		`INSERT INTO run_items (run_id, paper_id, title, paper_key, status, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		item.PaperID,
		item.Title,
		item.Key,
		string(item.Status),
		nullableString(item.Detail),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run item: %w", err)
	}
	return nil
}

// CompleteRun stamps the run with its finish time and final counters.
func (s *Store) CompleteRun(ctx context.Context, runID string, processed, completed, failed int) error {
	err := s.execWithRetry(
		ctx,
		`UPDATE runs SET finished_at = ?, processed = ?, completed = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		processed,
		completed,
		failed,
		runID,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, started_at, finished_at, listing, discovered, skipped, processed, completed, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ItemsForRun returns the recorded outcomes of a run in insertion order.
func (s *Store) ItemsForRun(ctx context.Context, runID string) ([]Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, paper_id, title, paper_key, status, detail, created_at
		 FROM run_items WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item      Item
			status    string
			detail    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&item.ID, &item.RunID, &item.PaperID, &item.Title, &item.Key, &status, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		item.Status = Status(status)
		item.Detail = detail.String
		if ts, err := parseTimeString(createdAt); err == nil {
			item.CreatedAt = ts
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	if err := rows.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.Listing,
		&run.Discovered,
		&run.Skipped,
		&run.Processed,
		&run.Completed,
		&run.Failed,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if ts, err := parseTimeString(startedAt); err == nil {
		run.StartedAt = ts
	}
	if finishedAt.Valid {
		if ts, err := parseTimeString(finishedAt.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
