package sangtacviet

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/util"
)

var testLoc = providers.Locator{Host: "sfacg", BookID: "754010"}

type recorded struct {
	method  string
	query   map[string]string
	referer string
	origin  string
	cookie  string
}

type fakeSite struct {
	mu       sync.Mutex
	requests []recorded
	index    func(w http.ResponseWriter)
	chapter  func(w http.ResponseWriter, r *http.Request)
	page     func(w http.ResponseWriter, r *http.Request)
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := map[string]string{}
	for k := range r.URL.Query() {
		q[k] = r.URL.Query().Get(k)
	}

	s.mu.Lock()
	s.requests = append(s.requests, recorded{
		method:  r.Method,
		query:   q,
		referer: r.Header.Get("Referer"),
		origin:  r.Header.Get("Origin"),
		cookie:  r.Header.Get("Cookie"),
	})
	s.mu.Unlock()

	switch q["sajax"] {
	case "":
		if s.page != nil && strings.HasPrefix(r.URL.Path, "/truyen/") {
			s.page(w, r)
			return
		}
		http.NotFound(w, r)
	case "getchapterlist":
		s.index(w)
	case "readchapter":
		s.chapter(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeSite) last() recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func newTestClient(t *testing.T, site *fakeSite, opts ClientOptions) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)

	hc, err := util.NewHTTPClient(util.HTTPClientOptions{Timeout: 5 * time.Second, UserAgent: "noveld-test"})
	if err != nil {
		t.Fatalf("http client: %v", err)
	}

	opts.BaseURL = srv.URL
	return NewClient(hc, opts), srv
}

func writeString(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		_, _ = io.WriteString(w, body)
	}
}

func TestClientChapterIndex(t *testing.T) {
	site := &fakeSite{index: writeString(`{"code":1,"data":"1-/-11-/- One-//-unvip-/-12-/- Two"}`)}
	c, srv := newTestClient(t, site, ClientOptions{})

	got, err := c.ChapterIndex(context.Background(), testLoc)
	if err != nil {
		t.Fatalf("ChapterIndex: %v", err)
	}

	want := []providers.Chapter{
		{ID: "11", Title: "One", Ordinal: 1},
		{ID: "12", Title: "Two", Ordinal: 2, Restricted: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("index = %+v", got)
	}

	r := site.last()
	if r.method != http.MethodGet || r.query["ngmar"] != "chapterlist" || r.query["h"] != "sfacg" || r.query["bookid"] != "754010" {
		t.Fatalf("request = %+v", r)
	}
	if r.referer != srv.URL+"/truyen/sfacg/1/754010/" {
		t.Fatalf("referer = %q", r.referer)
	}
}

func TestClientChapterIndexUnusable(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"api refusal", `{"code":0,"data":""}`, 0},
		{"html page", `<html>blocked</html>`, 0},
		{"bare list", `1-/-7-/- Only`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, &fakeSite{index: writeString(tt.body)}, ClientOptions{})
			got, err := c.ChapterIndex(context.Background(), testLoc)
			if err != nil {
				t.Fatalf("ChapterIndex: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestClientFetchChapter(t *testing.T) {
	site := &fakeSite{chapter: func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"code":0,"bookname":" Thế giới ","chaptername":"Chương 1","data":"<i t=\"你好\">Xin chào</i>","next":1002,"prev":null,"bookid":754010,"bookhost":"sfacg","owner":"","origin":"sfacg"}`)
	}}
	var bytes atomic.Int64
	c, srv := newTestClient(t, site, ClientOptions{OnBytes: func(n int64) { bytes.Add(n) }})

	ch := providers.Chapter{ID: "1001", Ordinal: 1}
	p, err := c.FetchChapter(context.Background(), testLoc, ch, "PHPSESSID=abc")
	if err != nil {
		t.Fatalf("FetchChapter: %v", err)
	}

	want := &providers.Payload{
		Code:         "0",
		BookTitle:    "Thế giới",
		ChapterTitle: "Chương 1",
		Content:      `<i t="你好">Xin chào</i>`,
		Next:         "1002",
		BookID:       "754010",
		BookHost:     "sfacg",
		Origin:       "sfacg",
	}
	if !reflect.DeepEqual(p, want) {
		t.Fatalf("payload = %+v", p)
	}

	r := site.last()
	if r.method != http.MethodPost || r.query["c"] != "1001" || r.query["ngmar"] != "readc" || r.query["sty"] != "1" {
		t.Fatalf("request = %+v", r)
	}
	if r.cookie != "PHPSESSID=abc" || r.origin != srv.URL || r.referer != srv.URL+"/truyen/sfacg/1/754010/1001/" {
		t.Fatalf("headers = %+v", r)
	}
	if bytes.Load() <= 0 {
		t.Fatal("OnBytes never reported")
	}
}

func TestClientFetchChapterKeepsAccountsApart(t *testing.T) {
	site := &fakeSite{chapter: func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "from-" + strings.ReplaceAll(r.Header.Get("Cookie"), "=", "-"), Path: "/"})
		_, _ = io.WriteString(w, `{"code":0,"data":"x"}`)
	}}
	c, _ := newTestClient(t, site, ClientOptions{})

	for i, cred := range []string{"user=A", "user=B"} {
		ch := providers.Chapter{ID: "100" + strconv.Itoa(i), Ordinal: i + 1}
		if _, err := c.FetchChapter(context.Background(), testLoc, ch, cred); err != nil {
			t.Fatalf("FetchChapter %s: %v", cred, err)
		}
		if got := site.last().cookie; got != cred {
			t.Fatalf("cookie header = %q, want only %q", got, cred)
		}
	}
}

func TestClientFetchChapterErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, r *http.Request)
		want    error
	}{
		{
			name:    "rate limited code",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{"code":"6"}`) },
			want:    providers.ErrRateLimited,
		},
		{
			name:    "http 429",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			want:    providers.ErrRateLimited,
		},
		{
			name:    "auth required",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{"code":7}`) },
			want:    ErrAuthRequired,
		},
		{
			name:    "unknown code",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{"code":"42"}`) },
			want:    ErrUnknownStatus,
		},
		{
			name:    "malformed",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `<html>oops</html>`) },
			want:    ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, &fakeSite{chapter: tt.handler}, ClientOptions{})
			_, err := c.FetchChapter(context.Background(), testLoc, providers.Chapter{ID: "1"}, "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	c, _ := newTestClient(t, &fakeSite{chapter: func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}}, ClientOptions{})
	if _, err := c.FetchChapter(context.Background(), testLoc, providers.Chapter{ID: "1"}, ""); err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v, want HTTP 502", err)
	}
}

func TestClientDecodesBrotli(t *testing.T) {
	site := &fakeSite{chapter: func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
			t.Errorf("Accept-Encoding = %q", r.Header.Get("Accept-Encoding"))
		}
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		_, _ = io.WriteString(bw, `{"code":"0","bookname":"B","chaptername":"C","data":"text"}`)
		_ = bw.Close()
	}}
	c, _ := newTestClient(t, site, ClientOptions{})

	p, err := c.FetchChapter(context.Background(), testLoc, providers.Chapter{ID: "1"}, "")
	if err != nil {
		t.Fatalf("FetchChapter: %v", err)
	}
	if p.Content != "text" || p.BookTitle != "B" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestClientPacing(t *testing.T) {
	site := &fakeSite{chapter: func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"code":"0","data":"x"}`)
	}}
	delay := 80 * time.Millisecond
	c, _ := newTestClient(t, site, ClientOptions{Delay: delay})

	start := time.Now()
	for range 2 {
		if _, err := c.FetchChapter(context.Background(), testLoc, providers.Chapter{ID: "1"}, ""); err != nil {
			t.Fatalf("FetchChapter: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Fatalf("two requests took %s, want at least %s", elapsed, delay)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FetchChapter(ctx, testLoc, providers.Chapter{ID: "1"}, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	site.mu.Lock()
	n := len(site.requests)
	site.mu.Unlock()
	if n != 2 {
		t.Fatalf("server saw %d requests, want 2", n)
	}
}
