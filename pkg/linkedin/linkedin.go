// Package linkedin holds the LinkedIn URL conventions used by the extractor.
package linkedin

import (
	"net/url"
	"regexp"
	"strings"
)

// BaseURL is the origin prefixed to relative profile links found on pages.
const BaseURL = "https://www.linkedin.com"

const overlayPath = "/overlay/browsemap-recommendations/"

var publicIDPattern = regexp.MustCompile(`(?i)linkedin\.com/in/([^/?#]+)`)

// Match returns true if the URL is a LinkedIn profile URL.
func Match(urlStr string) bool {
	return strings.Contains(strings.ToLower(urlStr), "linkedin.com/in/")
}

// Username returns the public identifier in a profile URL, or "" if there is none.
func Username(urlStr string) string {
	m := publicIDPattern.FindStringSubmatch(urlStr)
	if len(m) < 2 {
		return ""
	}
	slug := m[1]
	if strings.Contains(slug, "%") {
		if decoded, err := url.PathUnescape(slug); err == nil {
			return decoded
		}
	}
	return slug
}

// OverlayURL returns the browsemap recommendations overlay for a profile.
func OverlayURL(username string) string {
	return BaseURL + "/in/" + url.PathEscape(username) + overlayPath
}

// ResolveLink makes href absolute against base and drops its query string,
// fragment and trailing slash. It returns "" for empty or unparseable input.
func ResolveLink(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if base == "" {
		base = BaseURL
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u := b.ResolveReference(ref)
	if u.Host == "" {
		return ""
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return strings.TrimRight(u.String(), "/")
}

// SearchURL returns a web search for a person's profile, used when a card has no link.
func SearchURL(name, company string) string {
	q := `site:linkedin.com/in/ "` + name + `"`
	if company != "" {
		q += ` "` + company + `"`
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}
