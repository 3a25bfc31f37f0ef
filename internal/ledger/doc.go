// Package ledger persists run history in SQLite. Each pipeline run
// produces one run row plus one item row per paper outcome, which
// backs the history command and lets consecutive runs be compared
// without scraping logs.
package ledger
