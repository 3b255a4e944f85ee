package util

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/andybalholm/brotli"
)

type HTTPClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
	// CFBypass wraps the transport with browser-like TLS and headers.
	CFBypass    bool
	DebugLogger interface {
		Debugf(string, ...any)
	}
}

func NewHTTPClient(opts HTTPClientOptions) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	var baseTransport http.RoundTripper
	if opts.Transport != nil {
		baseTransport = opts.Transport
	} else {
		baseTransport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}

	if opts.CFBypass {
		baseTransport = cloudflarebp.AddCloudFlareByPass(baseTransport)
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: roundTripper{
			base: baseTransport,
			ua:   opts.UserAgent,
			log:  opts.DebugLogger,
		},
		Jar: jar,
	}

	if opts.DebugLogger != nil {
		opts.DebugLogger.Debugf("HTTP client initialized (timeout=%s, ua=%q, cf_bypass=%t)\n",
			opts.Timeout, opts.UserAgent, opts.CFBypass)
	}

	return client, nil
}

type roundTripper struct {
	base http.RoundTripper
	ua   string
	log  interface{ Debugf(string, ...any) }
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.ua != "" {
		req.Header.Set("User-Agent", rt.ua)
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "vi-VN,vi;q=0.9,en-US;q=0.6,en;q=0.5")
	}

	// Asking for encodings explicitly turns off the transport's own gzip
	// handling, so decoding happens here.
	manual := req.Header.Get("Accept-Encoding") == ""
	if manual {
		req.Header.Set("Accept-Encoding", "gzip, br")
	}

	if rt.log != nil {
		rt.log.Debugf("HTTP %s %s\n", req.Method, req.URL.String())
	}

	resp, err := rt.base.RoundTrip(req)
	if err != nil || !manual {
		return resp, err
	}

	if err := decodeBody(resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

func decodeBody(resp *http.Response) error {
	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("gzip body: %w", err)
		}
		r = gz
	case "br":
		r = brotli.NewReader(resp.Body)
	default:
		return nil
	}

	resp.Body = decodedBody{Reader: r, closer: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true

	return nil
}

type decodedBody struct {
	io.Reader
	closer io.Closer
}

func (d decodedBody) Close() error {
	return d.closer.Close()
}

// LoadCredentials collects cookie strings from inline values and from a file
// holding one credential per line. Blank lines and # comments are skipped.
func LoadCredentials(inline []string, file string) ([]string, error) {
	var out []string
	for _, c := range inline {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}

	if file == "" {
		return out, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cookie file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cookie file: %w", err)
	}

	return out, nil
}

// DoWithRetry executes req up to attempts times, backing off linearly on
// transport errors and 5xx answers. The request must be replayable.
func DoWithRetry(ctx context.Context, c *http.Client, req *http.Request, attempts int, backoff time.Duration) (*http.Response, error) {
	var resp *http.Response
	var err error

	for i := 1; i <= attempts; i++ {
		resp, err = c.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil && resp.Body != nil && i < attempts {
			_ = resp.Body.Close()
		}
		if i == attempts {
			break
		}

		if serr := Sleep(ctx, backoff*time.Duration(i)); serr != nil {
			return nil, serr
		}
	}

	if err == nil && resp != nil {
		return resp, nil
	}

	return nil, err
}

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"
}
