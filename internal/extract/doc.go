// Package extract turns downloaded documents into plain text while
// containing the failure modes of the underlying parsers. Every
// extraction call runs inside a sandbox that enforces a hard wall-clock
// deadline, converts panics into outcomes, and suppresses parser writes
// to the process standard streams for the duration of the call.
package extract
