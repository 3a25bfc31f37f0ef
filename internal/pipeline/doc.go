// Package pipeline sequences the per-paper stages and schedules them in
// fixed-size concurrent groups.
//
// Fault isolation is the organizing principle: every paper reaches exactly
// one terminal outcome, and no failure escapes the goroutine of the paper
// that caused it. The scheduler places a hard barrier between groups so a
// run never holds more than one group of downloads and extractions in
// flight, and the runner turns the collected outcomes into a run report,
// ledger rows, and notifications.
package pipeline
