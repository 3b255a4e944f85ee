package sangtacviet

import (
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
)

const (
	entrySep = "-//-"
	fieldSep = "-/-"

	// restrictedMarker flags paid chapters. It is matched anywhere in the
	// raw entry, not only in the status field.
	restrictedMarker = "unvip"
)

// ParseIndex decodes the delimited chapter list:
//
//	<status>-/-<chapter id>-/- <title>-//-<status>-/-<chapter id>-/- <title>-//-
//
// Entries whose id is not purely numeric are feed noise (volume headers and
// the like) and are dropped. Anything that is not delimited text, an HTML
// error page for example, yields an empty slice.
func ParseIndex(data string) []providers.Chapter {
	data = strings.TrimSpace(data)
	if data == "" || strings.HasPrefix(data, "<") || !strings.Contains(data, fieldSep) {
		return nil
	}

	var out []providers.Chapter
	for entry := range strings.SplitSeq(data, entrySep) {
		if strings.TrimSpace(entry) == "" {
			continue
		}

		parts := strings.Split(entry, fieldSep)
		if len(parts) < 3 {
			continue
		}

		id := strings.TrimSpace(parts[1])
		if !isDigits(id) {
			continue
		}

		out = append(out, providers.Chapter{
			ID:         id,
			Title:      strings.TrimSpace(parts[2]),
			Ordinal:    len(out) + 1,
			Restricted: strings.Contains(entry, restrictedMarker),
		})
	}

	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
