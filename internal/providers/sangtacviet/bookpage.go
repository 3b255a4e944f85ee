package sangtacviet

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/util"
)

// Generic site blurb used when a book has no summary of its own.
const boilerplateDescription = "Đọc truyện chữ"

var (
	reTitleSuffix = regexp.MustCompile(`\s*-\s*\d+\s*chương.*$`)
	reAuthorLine  = regexp.MustCompile(`(?i)Tác giả:[\s\x{a0}]*([^<\n]+)`)
	reSpaces      = regexp.MustCompile(`[\s\x{a0}]+`)
)

// BookInfo fetches the landing page of a book and scrapes its metadata. The
// page view takes a pacer slot like every other request of the client.
func (c *Client) BookInfo(ctx context.Context, loc providers.Locator) (*providers.BookInfo, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	doc, err := c.fetchDOM(ctx, c.bookURL(loc))
	if err != nil {
		return nil, fmt.Errorf("book page %s: %w", loc, err)
	}

	info := ParseBookPage(doc)
	return &info, nil
}

func (c *Client) fetchDOM(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := util.DoWithRetry(ctx, c.http, req, indexAttempts, indexBackoff)
	body, err := c.read(resp, err)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// ParseBookPage reads title, author and summary from a book page, trying
// Open Graph tags first and the visible page text after that.
func ParseBookPage(doc *goquery.Document) providers.BookInfo {
	var info providers.BookInfo

	info.Title = clean(doc.Find("h1").First().Text())
	if info.Title == "" {
		info.Title = reTitleSuffix.ReplaceAllString(clean(doc.Find("title").First().Text()), "")
	}

	info.Author = clean(doc.Find(`meta[property="og:novel:author"]`).AttrOr("content", ""))
	if info.Author == "" {
		if m := reAuthorLine.FindStringSubmatch(doc.Text()); m != nil {
			info.Author = clean(m[1])
		}
	}

	info.Description = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	if d := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")); len(d) > len(info.Description) &&
		!strings.HasPrefix(d, boilerplateDescription) {
		info.Description = d
	}
	if summary := doc.Find("#book-sumary .textzoom, #book-summary .textzoom").First(); summary.Length() > 0 {
		if d := summaryText(summary); len(d) > len(info.Description) {
			info.Description = d
		}
	}
	if strings.HasPrefix(info.Description, boilerplateDescription) {
		info.Description = ""
	}

	return info
}

func summaryText(s *goquery.Selection) string {
	s.Find("br").ReplaceWithHtml("\n")
	return joinLines(s.Text())
}

func clean(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}
