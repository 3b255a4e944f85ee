package cmd

import (
	"fmt"
	"strings"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/providers/sangtacviet"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/spf13/cobra"
)

// siteFlags are shared by every command that talks to the site.
type siteFlags struct {
	url        string
	language   string
	delay      float64
	timeout    float64
	baseURL    string
	cookies    []string
	cookieFile string
	userAgent  string
	cfBypass   bool

	chapter string
	rng     string
	list    string
	start   int
	max     int
}

func (f *siteFlags) register(c *cobra.Command) {
	fl := c.Flags()

	// selection
	fl.StringVar(&f.url, "url", "", "novel page URL, e.g. https://sangtacviet.app/truyen/qidian/1/123456/")
	fl.StringVar(&f.chapter, "chapter", "", "single chapter by position or chapter id")
	fl.StringVar(&f.rng, "range", "", "range of chapter positions (e.g. 5-12)")
	fl.StringVar(&f.list, "list", "", "specific chapter positions (e.g. 1,3,5)")
	fl.IntVar(&f.start, "start", 0, "first chapter position to fetch")
	fl.IntVar(&f.max, "max", 0, "maximum number of chapters to fetch")

	// runtime
	fl.StringVarP(&f.language, "language", "l", "", "output language: vietnamese (vi) or chinese (zh)")
	fl.Float64Var(&f.delay, "delay", 0, "seconds between chapter requests")
	fl.Float64Var(&f.timeout, "timeout", 0, "per request timeout in seconds")
	fl.StringVar(&f.baseURL, "base-url", "", "site base URL (defaults to the host of --url)")

	// headers/auth
	fl.StringArrayVar(&f.cookies, "cookie", nil, "cookie header for one account; repeat to rotate accounts")
	fl.StringVar(&f.cookieFile, "cookie-file", "", "text file with one cookie header per line")
	fl.StringVar(&f.userAgent, "user-agent", "", "override User-Agent")
	fl.BoolVar(&f.cfBypass, "cf-bypass", false, "use a browser-like TLS fingerprint against Cloudflare")
}

func (f *siteFlags) options() config.Options {
	return config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Language:     f.language,
		Delay:        f.delay,
		Timeout:      f.timeout,
		StartChapter: f.start,
		MaxChapters:  f.max,
		DefaultURL:   f.url,
		DefaultRange: f.rng,
		DefaultList:  f.list,
		BaseURL:      f.baseURL,
		Cookies:      f.cookies,
		CookieFile:   f.cookieFile,
		UserAgent:    f.userAgent,
		CFBypass:     f.cfBypass,
	}
}

// novelURL prefers a positional argument over --url and default_url.
func novelURL(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	if cfg.DefaultURL != "" {
		return cfg.DefaultURL, nil
	}

	return "", fmt.Errorf("missing novel URL: pass it as an argument, with --url or as default_url in the config")
}

func (f *siteFlags) selection(cfg *config.Config) chapters.Selection {
	return chapters.Selection{
		Chapter: f.chapter,
		Range:   cfg.DefaultRange,
		List:    cfg.DefaultList,
		Start:   cfg.StartChapter,
		Max:     cfg.MaxChapters,
	}
}

func newSiteClient(cfg *config.Config, rawURL string, log *ui.Logger, onBytes func(int64)) (*sangtacviet.Client, error) {
	hc, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     cfg.TimeoutDuration(),
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		CFBypass:    cfg.CFBypass,
		DebugLogger: log,
	})
	if err != nil {
		return nil, err
	}

	base := cfg.BaseURL
	if base == "" {
		base = sangtacviet.SiteBase(rawURL)
	}

	return sangtacviet.NewClient(hc, sangtacviet.ClientOptions{
		BaseURL: base,
		Delay:   cfg.DelayDuration(),
		OnBytes: onBytes,
		Logger:  log,
	}), nil
}
