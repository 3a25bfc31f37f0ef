package ledger

// Status is the terminal outcome recorded for one paper in a run.
type Status string

const (
	StatusSkipped             Status = "skipped"
	StatusDownloadFailed      Status = "download_failed"
	StatusCorruptDownload     Status = "corrupt_download"
	StatusExtractionFailed    Status = "extraction_failed"
	StatusSummarizationFailed Status = "summarization_failed"
	StatusCompleted           Status = "completed"
)

var knownStatuses = map[Status]struct{}{
	StatusSkipped:             {},
	StatusDownloadFailed:      {},
	StatusCorruptDownload:     {},
	StatusExtractionFailed:    {},
	StatusSummarizationFailed: {},
	StatusCompleted:           {},
}

// Valid reports whether the status is one of the recorded outcomes.
func (s Status) Valid() bool {
	_, ok := knownStatuses[s]
	return ok
}

// Failure reports whether the outcome counts toward a run's failed
// total. Skipped papers are neither completions nor failures.
func (s Status) Failure() bool {
	switch s {
	case StatusDownloadFailed, StatusCorruptDownload, StatusExtractionFailed, StatusSummarizationFailed:
		return true
	default:
		return false
	}
}
