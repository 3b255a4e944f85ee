// Package config holds noveld's YAML profiles and merges them with CLI
// flags. Durations are stored as seconds so profiles stay hand-editable.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/brogergvhs/noveld/internal/providers"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDelay          = 8.0
	DefaultRateLimitPause = 60.0
	DefaultTimeout        = 30.0
)

type Config struct {
	Output   string `yaml:"output"`
	Language string `yaml:"language"`
	Author   string `yaml:"author,omitempty"`
	Debug    bool   `yaml:"debug"`

	Delay          float64 `yaml:"delay"`
	RateLimitPause float64 `yaml:"rate_limit_pause"`
	Timeout        float64 `yaml:"timeout"`

	StartChapter int    `yaml:"start_chapter"`
	MaxChapters  int    `yaml:"max_chapters"`
	DefaultURL   string `yaml:"default_url"`
	DefaultRange string `yaml:"default_range"`
	DefaultList  string `yaml:"default_list"`

	BaseURL    string   `yaml:"base_url,omitempty"`
	Cookies    []string `yaml:"cookies"`
	CookieFile string   `yaml:"cookie_file"`
	UserAgent  string   `yaml:"user_agent"`
	CFBypass   bool     `yaml:"cf_bypass"`
}

// Options carries CLI overrides; zero values leave the profile untouched.
type Options struct {
	IgnoreConfig   bool
	Debug          bool
	Output         string
	Language       string
	Author         string
	Delay          float64
	RateLimitPause float64
	Timeout        float64
	StartChapter   int
	MaxChapters    int
	DefaultURL     string
	DefaultRange   string
	DefaultList    string
	BaseURL        string
	Cookies        []string
	CookieFile     string
	UserAgent      string
	CFBypass       bool
}

func DefaultConfig() *Config {
	return &Config{
		Output:         ".",
		Language:       string(providers.LangTranslated),
		Delay:          DefaultDelay,
		RateLimitPause: DefaultRateLimitPause,
		Timeout:        DefaultTimeout,
		StartChapter:   1,
		Cookies:        []string{},
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged returns the active profile (or defaults) with opts applied on
// top, plus a description of where the profile came from.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", cfg.Validate()
	}

	activePath, err := ActiveConfigPath()
	if errors.Is(err, ErrNoConfig) || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `noveld config init` to create an actual config\n", cfg.Validate()
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, cfg.Validate()
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Language != "" {
		c.Language = o.Language
	}
	if o.Author != "" {
		c.Author = o.Author
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Delay > 0 {
		c.Delay = o.Delay
	}
	if o.RateLimitPause > 0 {
		c.RateLimitPause = o.RateLimitPause
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.StartChapter > 0 {
		c.StartChapter = o.StartChapter
	}
	if o.MaxChapters > 0 {
		c.MaxChapters = o.MaxChapters
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	if o.DefaultRange != "" {
		c.DefaultRange = o.DefaultRange
	}
	if o.DefaultList != "" {
		c.DefaultList = o.DefaultList
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if len(o.Cookies) > 0 {
		c.Cookies = o.Cookies
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.CFBypass {
		c.CFBypass = true
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Language == "" {
		c.Language = string(providers.LangTranslated)
	}
	if c.Delay == 0 {
		c.Delay = DefaultDelay
	}
	if c.RateLimitPause == 0 {
		c.RateLimitPause = DefaultRateLimitPause
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.StartChapter == 0 {
		c.StartChapter = 1
	}
}

// Validate rejects values the downloader cannot work with.
func (c *Config) Validate() error {
	if _, err := providers.ParseLanguage(c.Language); err != nil {
		return err
	}
	if c.Delay < 0 || c.RateLimitPause < 0 || c.Timeout < 0 {
		return errors.New("delay, rate_limit_pause and timeout must not be negative")
	}
	if c.StartChapter < 1 {
		return fmt.Errorf("start_chapter must be at least 1, got %d", c.StartChapter)
	}
	if c.MaxChapters < 0 {
		return fmt.Errorf("max_chapters must not be negative, got %d", c.MaxChapters)
	}

	return nil
}

// Lang is the validated output language.
func (c *Config) Lang() providers.Language {
	l, err := providers.ParseLanguage(c.Language)
	if err != nil {
		return providers.LangTranslated
	}
	return l
}

func (c *Config) DelayDuration() time.Duration {
	return seconds(c.Delay)
}

func (c *Config) RateLimitPauseDuration() time.Duration {
	return seconds(c.RateLimitPause)
}

func (c *Config) TimeoutDuration() time.Duration {
	return seconds(c.Timeout)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Print lists the effective settings. Cookie values are never shown.
func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -output: %s\n", c.Output)
	fmt.Fprintf(w, " -language: %s\n", c.Lang().Name())
	if c.Author != "" {
		fmt.Fprintf(w, " -author: %s\n", c.Author)
	}
	fmt.Fprintf(w, " -delay: %gs\n", c.Delay)
	fmt.Fprintf(w, " -rate_limit_pause: %gs\n", c.RateLimitPause)
	fmt.Fprintf(w, " -timeout: %gs\n", c.Timeout)
	if c.StartChapter > 1 {
		fmt.Fprintf(w, " -start_chapter: %d\n", c.StartChapter)
	}
	if c.MaxChapters > 0 {
		fmt.Fprintf(w, " -max_chapters: %d\n", c.MaxChapters)
	}
	if c.DefaultURL != "" {
		fmt.Fprintf(w, " -url: %s\n", c.DefaultURL)
	}
	if c.DefaultRange != "" {
		fmt.Fprintf(w, " -range: %s\n", c.DefaultRange)
	}
	if c.DefaultList != "" {
		fmt.Fprintf(w, " -list: %s\n", c.DefaultList)
	}
	if c.BaseURL != "" {
		fmt.Fprintf(w, " -base_url: %s\n", c.BaseURL)
	}
	if len(c.Cookies) > 0 {
		fmt.Fprintf(w, " -cookies: %d configured\n", len(c.Cookies))
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", strings.TrimSpace(c.UserAgent))
	}
	if c.CFBypass {
		fmt.Fprintf(w, " -cf_bypass: %t\n", c.CFBypass)
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
}
