// Package output decides where a finished book lands on disk and writes its
// artifacts: <dir>/<title>/<title>_<language>_<unix>.txt for the transcript,
// <dir>/<title>/<title>_<YYYYMMDD_HHMMSS>.epub for the book and
// <dir>/<title>/failed_chapters_<unix>.txt when chapters were lost.
package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/noveld/internal/book"
	"github.com/brogergvhs/noveld/internal/epub"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/util"
)

const fallbackName = "novel"

// Writer writes book artifacts below OutputDir.
type Writer struct {
	OutputDir string
	Packager  *epub.Packager
	Now       func() time.Time
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string, p *epub.Packager) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	if p == nil {
		p = epub.NewPackager()
	}

	return &Writer{OutputDir: outputDir, Packager: p, Now: time.Now}, nil
}

// BookDir is the per-book folder for title.
func (w *Writer) BookDir(title string) string {
	return filepath.Join(w.OutputDir, util.SafeName(title, fallbackName))
}

func (w *Writer) SaveTranscript(b book.Book) (string, error) {
	now := w.Now()
	lang := providers.Language(b.Language).Name()
	path := filepath.Join(w.BookDir(b.Title),
		fmt.Sprintf("%s_%s_%d.txt", util.SafeName(b.Title, fallbackName), lang, now.Unix()))

	err := util.WriteFileAtomic(path, func(bw *bufio.Writer) error {
		return book.WriteTranscript(bw, b, now)
	}, nil)
	if err != nil {
		return "", fmt.Errorf("writing transcript %s: %w", path, err)
	}

	return path, nil
}

func (w *Writer) SaveEPUB(b book.Book) (string, error) {
	return w.SaveEPUBAs(b, filepath.Join(w.BookDir(b.Title),
		fmt.Sprintf("%s_%s.epub", util.SafeName(b.Title, fallbackName), w.Now().Format("20060102_150405"))))
}

// SaveEPUBAs packages b into an explicit path.
func (w *Writer) SaveEPUBAs(b book.Book, path string) (string, error) {
	m := w.Packager.Manifest(b.Title, b.Author, b.Language, b.Chapters)
	m.Description = b.Description
	if err := w.Packager.Write(path, m); err != nil {
		return "", fmt.Errorf("writing epub %s: %w", path, err)
	}

	return path, nil
}

func (w *Writer) SaveFailureReport(b book.Book) (string, error) {
	path := filepath.Join(w.BookDir(b.Title), fmt.Sprintf("failed_chapters_%d.txt", w.Now().Unix()))

	err := util.WriteFileAtomic(path, func(bw *bufio.Writer) error {
		return book.WriteFailureReport(bw, b.Failures)
	}, nil)
	if err != nil {
		return "", fmt.Errorf("writing failure report %s: %w", path, err)
	}

	return path, nil
}
