// Package downloader drives one novel from URL to finished artifacts:
// resolve the book, fetch its chapter index, fetch and clean every selected
// chapter one at a time, then hand the result to a Persister.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/noveld/internal/book"
	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/sangtacviet"
	"github.com/brogergvhs/noveld/internal/util"
)

const DefaultRateLimitPause = 60 * time.Second

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Progress receives chapter counters while the loop runs.
type Progress interface {
	SetTotal(total int)
	Update(done, failed int)
	SetStatus(status string)
	MarkDone()
}

// Persister stores the artifacts of a finished run and returns their paths.
type Persister interface {
	SaveTranscript(b book.Book) (string, error)
	SaveEPUB(b book.Book) (string, error)
	SaveFailureReport(b book.Book) (string, error)
}

type Options struct {
	Language       providers.Language
	Credentials    []string
	RateLimitPause time.Duration
	Selection      chapters.Selection
	Author         string

	Progress Progress
	// Resolve and Extract default to the sangtacviet implementations.
	Resolve func(rawURL string) (providers.Locator, error)
	Extract func(markup string, lang providers.Language) string
	// Sleep waits out the rate-limit pause; util.Sleep when nil.
	Sleep func(ctx context.Context, d time.Duration) error
}

type Result struct {
	Locator   providers.Locator
	Book      book.Book
	Indexed   int
	Selected  int
	Cancelled bool
	Elapsed   time.Duration

	TranscriptPath string
	EPUBPath       string
	ReportPath     string
}

// Downloader runs the pipeline. A Downloader is meant for one Run at a time.
type Downloader struct {
	src   providers.Source
	out   Persister
	log   Logger
	opts  Options
	state atomic.Int32
}

func New(src providers.Source, out Persister, log Logger, opts Options) *Downloader {
	if opts.Language == "" {
		opts.Language = providers.LangTranslated
	}
	if opts.RateLimitPause <= 0 {
		opts.RateLimitPause = DefaultRateLimitPause
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	if opts.Resolve == nil {
		opts.Resolve = sangtacviet.ResolveURL
	}
	if opts.Extract == nil {
		opts.Extract = sangtacviet.ExtractText
	}
	if opts.Sleep == nil {
		opts.Sleep = util.Sleep
	}
	if log == nil {
		log = nopLogger{}
	}

	return &Downloader{src: src, out: out, log: log, opts: opts}
}

// State reports where the current or last run stopped.
func (d *Downloader) State() State {
	return State(d.state.Load())
}

func (d *Downloader) setState(s State) {
	d.state.Store(int32(s))
	d.opts.Progress.SetStatus(s.String())
	d.log.Debugf("state: %s\n", s)
}

// Run downloads the novel behind rawURL. Individual chapter failures are
// recorded in the result and never end the run; cancelling ctx stops the
// chapter loop and still persists what was fetched so far. The returned
// Result is non-nil whenever the chapter loop was reached.
func (d *Downloader) Run(ctx context.Context, rawURL string) (*Result, error) {
	start := time.Now()

	d.setState(StateResolving)
	loc, err := d.opts.Resolve(rawURL)
	if err != nil {
		d.setState(StateAborted)
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	d.setState(StateIndexFetching)
	info := d.lookupInfo(ctx, loc)

	index, err := d.src.ChapterIndex(ctx, loc)
	if err != nil {
		d.setState(StateAborted)
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if len(index) == 0 {
		d.setState(StateAborted)
		return nil, fmt.Errorf("%w: %s returned no chapters", ErrIndexUnavailable, loc)
	}

	selected := index
	if !d.opts.Selection.IsZero() {
		selected = chapters.Filter(index, d.opts.Selection)
	}
	d.log.Infof("Found %d chapters, %d selected\n", len(index), len(selected))
	if len(selected) == 0 {
		d.setState(StateAborted)
		return nil, fmt.Errorf("%w: selection matched none of %d chapters", ErrNoChapters, len(index))
	}

	res := &Result{
		Locator:  loc,
		Indexed:  len(index),
		Selected: len(selected),
		Book: book.Book{
			Author:      d.opts.Author,
			Language:    string(d.opts.Language),
			Description: info.Description,
		},
	}
	if res.Book.Author == "" {
		res.Book.Author = info.Author
	}

	d.setState(StateChapterLoop)
	res.Cancelled = d.loop(ctx, loc, selected, res)
	res.Elapsed = time.Since(start)

	if res.Book.Title == "" {
		res.Book.Title = info.Title
	}
	if res.Book.Title == "" {
		res.Book.Title = loc.BookID
	}

	d.setState(StateFinalizing)
	if err := d.finalize(res); err != nil {
		d.setState(StateAborted)
		return res, err
	}

	d.setState(StateDone)
	return res, nil
}

// lookupInfo asks the source for book page metadata when it offers it.
// The page is optional; failures only cost the extra metadata.
func (d *Downloader) lookupInfo(ctx context.Context, loc providers.Locator) providers.BookInfo {
	is, ok := d.src.(providers.InfoSource)
	if !ok {
		return providers.BookInfo{}
	}

	info, err := is.BookInfo(ctx, loc)
	if err != nil || info == nil {
		d.log.Debugf("No book page metadata for %s: %v\n", loc, err)
		return providers.BookInfo{}
	}

	return *info
}

func (d *Downloader) loop(ctx context.Context, loc providers.Locator, selected []providers.Chapter, res *Result) (cancelled bool) {
	p := d.opts.Progress
	p.SetTotal(len(selected))
	defer p.MarkDone()

	for _, ch := range selected {
		if ctx.Err() != nil {
			d.log.Warnf("Cancelled before chapter %d\n", ch.Ordinal)
			return true
		}

		text, err := d.fetch(ctx, loc, ch, res)
		if err != nil {
			// A cancelled pacing wait means the chapter was never requested.
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				d.log.Warnf("Cancelled before chapter %d\n", ch.Ordinal)
				return true
			}

			d.log.Warnf("Chapter %d (%s) failed: %v\n", ch.Ordinal, ch.ID, err)
			res.Book.Failures = append(res.Book.Failures, book.Failure{
				ID:      ch.ID,
				Title:   ch.Title,
				Ordinal: ch.Ordinal,
				Err:     err.Error(),
			})
			p.Update(len(res.Book.Chapters), len(res.Book.Failures))

			if errors.Is(err, providers.ErrRateLimited) {
				d.log.Warnf("Rate limited, pausing %s\n", d.opts.RateLimitPause)
				p.SetStatus("rate limited")
				if d.opts.Sleep(ctx, d.opts.RateLimitPause) != nil {
					return true
				}
				p.SetStatus(StateChapterLoop.String())
			}
			continue
		}

		res.Book.Chapters = append(res.Book.Chapters, text)
		d.log.Debugf("Chapter %d: %s (%d chars)\n", ch.Ordinal, text.Title, len([]rune(text.Content)))
		p.Update(len(res.Book.Chapters), len(res.Book.Failures))
	}

	return false
}

func (d *Downloader) fetch(ctx context.Context, loc providers.Locator, ch providers.Chapter, res *Result) (book.Chapter, error) {
	cred := RotateCredential(d.opts.Credentials, ch.Ordinal)

	payload, err := d.src.FetchChapter(ctx, loc, ch, cred)
	if err != nil {
		return book.Chapter{}, err
	}

	content := d.opts.Extract(payload.Content, d.opts.Language)
	if strings.TrimSpace(content) == "" {
		return book.Chapter{}, ErrEmptyChapter
	}

	if res.Book.Title == "" && payload.BookTitle != "" {
		res.Book.Title = payload.BookTitle
	}

	title := payload.ChapterTitle
	if title == "" {
		title = ch.Title
	}

	return book.Chapter{
		Ordinal: ch.Ordinal,
		Title:   title,
		Content: content,
		ID:      ch.ID,
	}, nil
}

func (d *Downloader) finalize(res *Result) error {
	if len(res.Book.Chapters) == 0 {
		if res.Cancelled {
			return fmt.Errorf("%w: cancelled before the first chapter", ErrNoChapters)
		}
		return fmt.Errorf("%w: all %d chapters failed", ErrNoChapters, len(res.Book.Failures))
	}

	var errs []error

	path, err := d.out.SaveTranscript(res.Book)
	if err != nil {
		errs = append(errs, &PackagingError{Artifact: "transcript", Err: err})
	}
	res.TranscriptPath = path

	path, err = d.out.SaveEPUB(res.Book)
	if err != nil {
		errs = append(errs, &PackagingError{Artifact: "epub", Err: err})
	}
	res.EPUBPath = path

	if len(res.Book.Failures) > 0 {
		path, err = d.out.SaveFailureReport(res.Book)
		if err != nil {
			errs = append(errs, &PackagingError{Artifact: "failure report", Err: err})
		}
		res.ReportPath = path
	}

	return errors.Join(errs...)
}

type nopProgress struct{}

func (nopProgress) SetTotal(int)     {}
func (nopProgress) Update(int, int)  {}
func (nopProgress) SetStatus(string) {}
func (nopProgress) MarkDone()        {}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
