package sangtacviet

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/brogergvhs/noveld/internal/providers"
)

// DefaultBaseURL is used when neither the config nor the book URL supplies one.
const DefaultBaseURL = "https://sangtacviet.app"

var reBookPath = regexp.MustCompile(`/truyen/([^/]+)/\d+/(\d+)/?`)

// ResolveURL extracts the host key and book id from a book page URL such as
// https://sangtacviet.app/truyen/sfacg/1/754010/.
func ResolveURL(raw string) (providers.Locator, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return providers.Locator{}, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return providers.Locator{}, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	m := reBookPath.FindStringSubmatch(u.Path)
	if m == nil || m[1] == "" || m[2] == "" {
		return providers.Locator{}, fmt.Errorf("no /truyen/<host>/<n>/<book> path in %q", raw)
	}

	return providers.Locator{Host: m[1], BookID: m[2]}, nil
}

// SiteBase returns scheme://host of a book URL, so mirrors are queried on
// the domain the user pasted.
func SiteBase(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return DefaultBaseURL
	}

	return u.Scheme + "://" + u.Host
}
