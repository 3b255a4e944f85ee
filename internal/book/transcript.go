package book

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	bookRule    = strings.Repeat("=", 80)
	chapterRule = strings.Repeat("=", 60)
	tocRule     = strings.Repeat("-", 40)
)

// TOCLine is the label used for a chapter in both the transcript and the
// EPUB table of contents.
func TOCLine(c Chapter) string {
	return fmt.Sprintf("Chapter %d: %s", c.Ordinal, c.Title)
}

// WriteTranscript renders b as the plain-text transcript: a header, a table
// of contents and every chapter in ordinal order.
func WriteTranscript(w io.Writer, b Book, now time.Time) error {
	chapters := Sorted(b.Chapters)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Title: %s\n", b.Title)
	if b.Author != "" {
		fmt.Fprintf(bw, "Author: %s\n", b.Author)
	}
	fmt.Fprintf(bw, "Downloaded: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "Chapters: %d\n", len(chapters))
	fmt.Fprintf(bw, "%s\n\n", bookRule)

	fmt.Fprintln(bw, "TABLE OF CONTENTS")
	fmt.Fprintln(bw, tocRule)
	for _, c := range chapters {
		fmt.Fprintln(bw, TOCLine(c))
	}
	fmt.Fprintf(bw, "\n%s\n\n", bookRule)

	for _, c := range chapters {
		fmt.Fprintf(bw, "CHAPTER %d: %s\n", c.Ordinal, c.Title)
		fmt.Fprintf(bw, "%s\n\n", chapterRule)
		fmt.Fprint(bw, c.Content)
		fmt.Fprintf(bw, "\n\n%s\n\n", bookRule)
	}

	return bw.Flush()
}

var (
	reHeading = regexp.MustCompile(`(?i)^(?:CHAPTER|CHƯƠNG)\s+(\d+)\s*:?\s*(.*)$`)
	reTitle   = regexp.MustCompile(`^(?:Title|Truyện):\s*(.*)$`)
	reAuthor  = regexp.MustCompile(`^Author:\s*(.*)$`)
)

// ParseTranscript reads a transcript back into a Book. It also accepts the
// Vietnamese headings written by older versions of the downloader. A heading
// only counts when the next line is the chapter rule, so table of contents
// lines are never mistaken for chapters.
func ParseTranscript(r io.Reader) (Book, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return Book{}, fmt.Errorf("read transcript: %w", err)
	}

	var b Book
	for i := 0; i < len(lines) && i < 10; i++ {
		if m := reTitle.FindStringSubmatch(lines[i]); m != nil && b.Title == "" {
			b.Title = strings.TrimSpace(m[1])
		}
		if m := reAuthor.FindStringSubmatch(lines[i]); m != nil && b.Author == "" {
			b.Author = strings.TrimSpace(m[1])
		}
	}

	for i := 0; i < len(lines); i++ {
		m := chapterHeading(lines, i)
		if m == nil {
			continue
		}

		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		j := i + 2
		var body []string
		for ; j < len(lines) && !chapterEnd(lines, j); j++ {
			body = append(body, lines[j])
		}

		b.Chapters = append(b.Chapters, Chapter{
			Ordinal: n,
			Title:   strings.TrimSpace(m[2]),
			Content: strings.Trim(strings.Join(body, "\n"), "\n"),
		})
		i = j
	}

	if len(b.Chapters) == 0 {
		return b, fmt.Errorf("no chapters found in transcript")
	}

	return b, nil
}

// chapterHeading matches lines[i] as a chapter heading followed by the
// chapter rule.
func chapterHeading(lines []string, i int) []string {
	if i+1 >= len(lines) || lines[i+1] != chapterRule {
		return nil
	}

	return reHeading.FindStringSubmatch(strings.TrimSpace(lines[i]))
}

// chapterEnd reports whether the book rule at lines[j] closes a chapter:
// after it only blank lines may come before the next heading or EOF. A rule
// inside the chapter text is kept as text.
func chapterEnd(lines []string, j int) bool {
	if lines[j] != bookRule {
		return false
	}

	k := j + 1
	for k < len(lines) && strings.TrimSpace(lines[k]) == "" {
		k++
	}

	return k == len(lines) || chapterHeading(lines, k) != nil
}
