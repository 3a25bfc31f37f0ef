package llm

import (
	"fmt"
	"unicode/utf8"

	"precis/internal/paper"
)

// maxPromptRunes bounds the extracted text included in one prompt,
// counted in code points rather than bytes.
const maxPromptRunes = 50000

func buildPrompt(p paper.Paper, text string) string {
	return fmt.Sprintf(summaryPromptTemplate, p.Title, p.ID, p.PDFURL, truncateRunes(text, maxPromptRunes))
}

// assembleDocument renders the final artifact: title header, metadata
// block, separator, then the generated content verbatim.
func assembleDocument(p paper.Paper, content string) string {
	return fmt.Sprintf("# %s\n\n**arXiv ID**: %s\n**PDF**: %s\n\n---\n\n%s", p.Title, p.ID, p.PDFURL, content)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
