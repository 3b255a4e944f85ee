// Package book holds the durable results of a download and their plain-text
// renderings: the transcript and the failed-chapter report.
package book

import (
	"cmp"
	"slices"
)

// Chapter is one successfully extracted chapter.
type Chapter struct {
	Ordinal int
	Title   string
	Content string
	ID      string
}

// Failure records a chapter that could not be fetched or extracted.
type Failure struct {
	ID      string
	Title   string
	Ordinal int
	Err     string
}

type Book struct {
	Title       string
	Author      string
	Language    string
	Description string
	Chapters    []Chapter
	Failures    []Failure
}

// Sorted returns a copy of chapters ordered by ordinal.
func Sorted(chapters []Chapter) []Chapter {
	out := slices.Clone(chapters)
	slices.SortStableFunc(out, func(a, b Chapter) int {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})

	return out
}

// Chars sums the content length of all chapters in runes.
func Chars(chapters []Chapter) int64 {
	var n int64
	for _, c := range chapters {
		n += int64(len([]rune(c.Content)))
	}

	return n
}
