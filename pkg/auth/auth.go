// Package auth provides the LinkedIn session cookies used to load recommendation pages.
package auth

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
)

// Platform is the cookie platform key for LinkedIn.
const Platform = "linkedin"

// Domain is the cookie domain for LinkedIn.
const Domain = "linkedin.com"

// NewCookieJar creates an http.CookieJar populated with the given cookies for a domain.
func NewCookieJar(domain string, cookies map[string]string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse("https://" + domain)
	if err != nil {
		return nil, err
	}

	jar.SetCookies(u, HTTPCookies(domain, cookies))
	return jar, nil
}

// HTTPCookies converts a name/value map into cookies scoped to domain and its
// subdomains. Empty values are skipped. The result is sorted by name.
func HTTPCookies(domain string, cookies map[string]string) []*http.Cookie {
	names := make([]string, 0, len(cookies))
	for name, value := range cookies {
		if value != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	httpCookies := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		httpCookies = append(httpCookies, &http.Cookie{
			Name:   name,
			Value:  cookies[name],
			Domain: "." + domain,
			Path:   "/",
		})
	}
	return httpCookies
}

// Source represents a source of authentication cookies.
type Source interface {
	// Cookies returns cookies for the given platform, or nil if unavailable.
	Cookies(ctx context.Context, platform string) (map[string]string, error)
}

// ChainSources returns cookies from the first source that provides them.
func ChainSources(ctx context.Context, platform string, sources ...Source) (map[string]string, error) {
	for _, src := range sources {
		cookies, err := src.Cookies(ctx, platform)
		if err != nil {
			return nil, err
		}
		if len(cookies) > 0 {
			return cookies, nil
		}
	}
	return nil, nil //nolint:nilnil // no source had cookies, but this is not an error
}
