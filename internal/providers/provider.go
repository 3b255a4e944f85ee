package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrRateLimited is matched by errors.Is on any source error that asks the
// caller to cool down before the next request.
var ErrRateLimited = errors.New("rate limited")

// Locator identifies one book on one origin host.
type Locator struct {
	Host   string
	BookID string
}

func (l Locator) String() string {
	return l.Host + "/" + l.BookID
}

// Chapter is one entry of a parsed chapter index.
type Chapter struct {
	ID         string
	Title      string
	Ordinal    int
	Restricted bool
}

// Payload is the decoded chapter response, before any text cleanup.
type Payload struct {
	Code         string
	BookTitle    string
	ChapterTitle string
	Content      string
	Prev         string
	Next         string
	BookID       string
	BookHost     string
	Owner        string
	Origin       string
}

// Language selects which rendering of a dual-language annotation is kept.
type Language string

const (
	// LangTranslated keeps the displayed (Vietnamese) rendering.
	LangTranslated Language = "vi"
	// LangOrigin keeps the attribute-carried (Chinese) rendering.
	LangOrigin Language = "zh"
)

// ParseLanguage accepts both the short codes and the long names used in
// config files.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vi", "vietnamese":
		return LangTranslated, nil
	case "zh", "chinese":
		return LangOrigin, nil
	}

	return "", fmt.Errorf("unsupported language %q (want vietnamese or chinese)", s)
}

// Name is the long form used in output file names.
func (l Language) Name() string {
	if l == LangOrigin {
		return "chinese"
	}

	return "vietnamese"
}

// BookInfo is metadata scraped from a book's landing page. Any field may be
// empty.
type BookInfo struct {
	Title       string
	Author      string
	Description string
}

// InfoSource is implemented by sources that can describe a book beyond its
// chapter list.
type InfoSource interface {
	BookInfo(ctx context.Context, loc Locator) (*BookInfo, error)
}

type Source interface {
	ChapterIndex(ctx context.Context, loc Locator) ([]Chapter, error)
	FetchChapter(ctx context.Context, loc Locator, ch Chapter, credential string) (*Payload, error)
}
