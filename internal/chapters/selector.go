// Package chapters narrows a parsed chapter index down to the chapters a
// run should fetch.
package chapters

import (
	"strconv"
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
)

// Selection describes which chapters to keep. Range ("3-10") and List
// ("1,4,7") address chapters by ordinal and are mutually exclusive, Range
// winning. Start and Max are applied afterwards.
type Selection struct {
	Chapter string
	Range   string
	List    string
	Start   int
	Max     int
}

func (s Selection) IsZero() bool {
	return s == Selection{}
}

// Filter applies s to all. Chapters keep their index ordinals.
func Filter(all []providers.Chapter, s Selection) []providers.Chapter {
	out := all

	switch {
	case s.Chapter != "":
		out = FilterChapter(all, s.Chapter)
	case s.Range != "":
		out = FilterChapterRange(all, s.Range)
	case s.List != "":
		out = FilterChapterList(all, s.List)
	}

	if s.Start > 1 {
		out = FromOrdinal(out, s.Start)
	}
	if s.Max > 0 && len(out) > s.Max {
		out = out[:s.Max]
	}

	return out
}

// FilterChapter matches a single chapter by ID first, then by ordinal.
func FilterChapter(all []providers.Chapter, key string) []providers.Chapter {
	key = strings.TrimSpace(key)
	for _, ch := range all {
		if ch.ID == key {
			return []providers.Chapter{ch}
		}
	}

	if n, err := atoi(key); err == nil {
		if ch, ok := byOrdinal(all, n); ok {
			return []providers.Chapter{ch}
		}
	}

	return []providers.Chapter{}
}

func FilterChapterRange(all []providers.Chapter, rng string) []providers.Chapter {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil
	}
	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	if start <= 0 || end <= 0 || start > end {
		return nil
	}

	var out []providers.Chapter
	for _, ch := range all {
		if ch.Ordinal >= start && ch.Ordinal <= end {
			out = append(out, ch)
		}
	}
	return out
}

func FilterChapterList(all []providers.Chapter, list string) []providers.Chapter {
	out := []providers.Chapter{}
	seen := make(map[int]bool)
	for n := range strings.SplitSeq(list, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		idx, err := atoi(n)
		if err != nil || seen[idx] {
			continue
		}
		if ch, ok := byOrdinal(all, idx); ok {
			seen[idx] = true
			out = append(out, ch)
		}
	}
	return out
}

// FromOrdinal drops every chapter before ordinal start.
func FromOrdinal(all []providers.Chapter, start int) []providers.Chapter {
	for i, ch := range all {
		if ch.Ordinal >= start {
			return all[i:]
		}
	}
	return nil
}

func byOrdinal(all []providers.Chapter, n int) (providers.Chapter, bool) {
	for _, ch := range all {
		if ch.Ordinal == n {
			return ch, true
		}
	}
	return providers.Chapter{}, false
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
