// Package paper holds the core domain types for the summarization pipeline: the
// immutable work item produced by discovery and the canonical key derivation
// shared by the download cache, the artifact store, and the idempotency filter.
package paper
