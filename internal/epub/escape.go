package epub

import (
	"strings"

	"github.com/brogergvhs/noveld/internal/book"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// escape makes s safe as XML text or attribute content. Characters that
// XML 1.0 forbids outright are dropped.
func escape(s string) string {
	return xmlEscaper.Replace(strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s))
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}

	return false
}

// paragraphs splits chapter text into one paragraph per non-empty line.
func paragraphs(content string) []string {
	var out []string
	for line := range strings.Lines(content) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}

	return out
}

func label(c book.Chapter) string {
	return book.TOCLine(c)
}
