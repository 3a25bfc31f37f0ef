// Package llm provides the chat completion client used for paper
// summarization.
//
// # Request Shape
//
// The client sends one user message per paper containing the
// summarization prompt and the extracted text, truncated to 50,000 code
// points before the first attempt. The response's first choice content
// becomes the body of the artifact document.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Summarize: produce the finished artifact document for a paper.
// Client.HealthCheck: verify the credential and endpoint are usable.
//
// # Retry Behaviour
//
// An attempt is retried only on transport-level errors, HTTP 429, or
// HTTP 5xx, up to 3 total attempts, waiting 500ms * n before attempt n.
// Any other non-success status, an undecodable body, or a response with
// no choices is terminal. Context cancellation aborts retries
// immediately.
package llm
