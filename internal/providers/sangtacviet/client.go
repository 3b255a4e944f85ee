package sangtacviet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/util"
)

const (
	indexAttempts = 3
	indexBackoff  = 2 * time.Second
)

type Client struct {
	http *http.Client
	// noJar sends credentialed requests so that cookies the site set for
	// one account never ride along with another account's Cookie header.
	noJar   *http.Client
	base    string
	pacer   *util.Pacer
	log     interface{ Debugf(string, ...any) }
	onBytes func(n int64)
}

type ClientOptions struct {
	BaseURL string
	// Delay is the minimum spacing between two requests of this client.
	Delay time.Duration
	// OnBytes receives the size of every response body read.
	OnBytes func(n int64)
	Logger  interface{ Debugf(string, ...any) }
}

func NewClient(c *http.Client, opts ClientOptions) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	noJar := *c
	noJar.Jar = nil

	return &Client{
		http:    c,
		noJar:   &noJar,
		base:    base,
		pacer:   util.NewPacer(opts.Delay),
		log:     opts.Logger,
		onBytes: opts.OnBytes,
	}
}

// flexString accepts both JSON strings and numbers; the site is not
// consistent about which one it sends for codes and ids.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())

	return nil
}

type indexResponse struct {
	Code flexString `json:"code"`
	Data string     `json:"data"`
}

type chapterResponse struct {
	Code        flexString `json:"code"`
	BookName    string     `json:"bookname"`
	ChapterName string     `json:"chaptername"`
	Data        string     `json:"data"`
	Next        flexString `json:"next"`
	Prev        flexString `json:"prev"`
	BookID      flexString `json:"bookid"`
	BookHost    string     `json:"bookhost"`
	Owner       flexString `json:"owner"`
	Origin      string     `json:"origin"`
}

// ChapterIndex requests the chapter list of a book. An unusable response
// is reported as an empty index, not as an error; only transport failures
// return an error.
func (c *Client) ChapterIndex(ctx context.Context, loc providers.Locator) ([]providers.Chapter, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("ngmar", "chapterlist")
	q.Set("h", loc.Host)
	q.Set("bookid", loc.BookID)
	q.Set("sajax", "getchapterlist")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/index.php?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", c.bookURL(loc))
	req.Header.Set("Accept", "*/*")

	resp, err := util.DoWithRetry(ctx, c.http, req, indexAttempts, indexBackoff)
	body, err := c.read(resp, err)
	if err != nil {
		return nil, fmt.Errorf("chapter index %s: %w", loc, err)
	}

	var env indexResponse
	if err := json.Unmarshal(body, &env); err != nil {
		// Some mirrors answer with the bare list.
		return ParseIndex(string(body)), nil
	}
	if env.Code != "1" {
		if c.log != nil {
			c.log.Debugf("chapter index %s: api code %q\n", loc, env.Code)
		}
		return nil, nil
	}

	return ParseIndex(env.Data), nil
}

// FetchChapter performs exactly one request for one chapter. The pacing
// wait honours ctx; the request itself does not, so a cancellation never
// cuts a response in half.
func (c *Client) FetchChapter(ctx context.Context, loc providers.Locator, ch providers.Chapter, credential string) (*providers.Payload, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("bookid", loc.BookID)
	q.Set("h", loc.Host)
	q.Set("c", ch.ID)
	q.Set("ngmar", "readc")
	q.Set("sajax", "readchapter")
	q.Set("sty", "1")
	q.Set("exts", "")

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, c.base+"/index.php?"+q.Encode(), strings.NewReader(""))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", c.base)
	req.Header.Set("Referer", c.bookURL(loc)+ch.ID+"/")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "*/*")
	hc := c.http
	if credential != "" {
		req.Header.Set("Cookie", credential)
		hc = c.noJar
	}

	body, err := c.read(hc.Do(req))
	if err != nil {
		return nil, err
	}

	var raw chapterResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := classify(string(raw.Code)); err != nil {
		return nil, err
	}

	return &providers.Payload{
		Code:         string(raw.Code),
		BookTitle:    strings.TrimSpace(raw.BookName),
		ChapterTitle: strings.TrimSpace(raw.ChapterName),
		Content:      raw.Data,
		Prev:         string(raw.Prev),
		Next:         string(raw.Next),
		BookID:       string(raw.BookID),
		BookHost:     raw.BookHost,
		Owner:        string(raw.Owner),
		Origin:       raw.Origin,
	}, nil
}

func (c *Client) bookURL(loc providers.Locator) string {
	return fmt.Sprintf("%s/truyen/%s/1/%s/", c.base, loc.Host, loc.BookID)
}

func (c *Client) read(resp *http.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &StatusError{Code: "http 429", Kind: ErrRateLimited}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var last int64
	return util.ReadAllProgress(resp.Body, func(done int64) {
		if c.onBytes != nil {
			c.onBytes(done - last)
		}
		last = done
	})
}
