package paper

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxKeyRunes bounds canonical keys so derived file names stay well under
// common filesystem limits.
const maxKeyRunes = 200

// Sanitizer derives canonical keys from paper titles. Construct one at startup
// and pass it down; the compiled pattern is safe for concurrent use.
type Sanitizer struct {
	forbidden *regexp.Regexp
}

// NewSanitizer compiles the key derivation rules.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		forbidden: regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`),
	}
}

// Key converts a title into its canonical key: the title is Unicode-normalized
// (NFC), every character that is unsafe in a file name is replaced with an
// underscore, surrounding whitespace is trimmed, and the result is truncated to
// 200 code points. The derivation is pure; identical titles always yield
// identical keys.
func (s *Sanitizer) Key(title string) string {
	cleaned := s.forbidden.ReplaceAllString(norm.NFC.String(title), "_")
	cleaned = strings.TrimSpace(cleaned)
	runes := []rune(cleaned)
	if len(runes) > maxKeyRunes {
		runes = runes[:maxKeyRunes]
	}
	return string(runes)
}
