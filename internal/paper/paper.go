package paper

import "strings"

// Paper is one unit of work discovered by the listing feed. Values are
// immutable once constructed; every field is set during discovery.
type Paper struct {
	// ID is the external identifier assigned by the feed (e.g. "2408.01234").
	ID string
	// Title is the human-readable title. Discovery substitutes a placeholder
	// when the listing omits one, so this is never empty in practice.
	Title string
	// PDFURL is the download location for the full document.
	PDFURL string
}

// DisplayTitle returns the title clipped for log lines and tables.
func (p Paper) DisplayTitle(max int) string {
	title := strings.TrimSpace(p.Title)
	if max <= 0 {
		return title
	}
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max]) + "…"
}
