// Package library manages the on-disk workspace: download cache naming, summary
// artifact naming, the startup scan that powers the idempotency filter, and the
// atomic create-exclusive artifact write that guarantees summaries are either
// absent or complete.
package library
