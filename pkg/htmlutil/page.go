package htmlutil

import (
	"html"
	"regexp"
	"strings"
)

var (
	titlePattern   = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	ogTitlePattern = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']+)["']`)
)

// Title extracts the title from HTML content.
func Title(htmlContent string) string {
	if matches := titlePattern.FindStringSubmatch(htmlContent); len(matches) > 1 {
		return CleanSpace(html.UnescapeString(matches[1]))
	}
	if matches := ogTitlePattern.FindStringSubmatch(htmlContent); len(matches) > 1 {
		return CleanSpace(html.UnescapeString(matches[1]))
	}
	return ""
}

// IsNotFound detects LinkedIn's "page not found" and unavailable-profile pages.
func IsNotFound(text string) bool {
	lower := strings.ToLower(text)
	patterns := []string{
		"page not found",
		"404 not found",
		"this page doesn't exist",
		"this profile is not available",
		"profile not found",
		"member not found",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsLoginWall detects the sign-in page LinkedIn serves instead of content
// when the session cookies are missing or expired.
func IsLoginWall(htmlContent string) bool {
	title := strings.ToLower(Title(htmlContent))
	switch {
	case strings.Contains(title, "sign in"), strings.Contains(title, "log in"),
		strings.Contains(title, "sign up"), strings.Contains(title, "security verification"):
		return true
	case strings.Contains(htmlContent, `action="/checkpoint/lg/login-submit"`),
		strings.Contains(htmlContent, `id="session_key"`):
		return true
	}
	return false
}
