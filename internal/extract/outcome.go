package extract

// Status classifies the result of one sandboxed extraction call.
type Status string

const (
	StatusText    Status = "text"
	StatusEmpty   Status = "empty"
	StatusTimeout Status = "timeout"
	StatusCrashed Status = "crashed"
	StatusError   Status = "error"
)

// Outcome is the single result delivered for one extraction call.
// Extraction is never retried within a run regardless of status.
type Outcome struct {
	Status Status
	Text   string
	Detail string
}

// OK reports whether extraction produced usable text.
func (o Outcome) OK() bool {
	return o.Status == StatusText
}

// Reason renders a short failure description for logs and run reports.
func (o Outcome) Reason() string {
	switch o.Status {
	case StatusText:
		return ""
	case StatusEmpty:
		return "extracted text was empty"
	case StatusTimeout:
		return "extraction timed out"
	case StatusCrashed:
		if o.Detail != "" {
			return "extraction crashed: " + o.Detail
		}
		return "extraction crashed"
	default:
		if o.Detail != "" {
			return o.Detail
		}
		return "extraction failed"
	}
}
