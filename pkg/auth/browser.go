package auth

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // Import all browser cookie stores
	"github.com/browserutils/kooky/browser/chrome"
	"github.com/browserutils/kooky/browser/firefox"
)

// essentialCookies are the LinkedIn cookies a logged-in page load needs.
var essentialCookies = []string{"li_at", "JSESSIONID", "lidc", "bcookie"}

// firefoxProfileGlobs are Firefox-family cookie stores kooky does not find on its own,
// relative to $HOME.
var firefoxProfileGlobs = []string{
	filepath.Join("Library", "Application Support", "zen", "Profiles", "*", "cookies.sqlite"),
	filepath.Join("Library", "Application Support", "Firefox", "Profiles", "*", "cookies.sqlite"),
	filepath.Join(".zen", "*", "cookies.sqlite"),
	filepath.Join(".mozilla", "firefox", "*", "cookies.sqlite"),
}

// BrowserSource reads cookies from browser cookie stores.
type BrowserSource struct {
	logger *slog.Logger
	home   string
}

// NewBrowserSource creates a new browser cookie source.
func NewBrowserSource(logger *slog.Logger) *BrowserSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserSource{logger: logger, home: os.Getenv("HOME")}
}

// Cookies returns LinkedIn cookies from browser stores.
func (s *BrowserSource) Cookies(ctx context.Context, platform string) (map[string]string, error) {
	if platform != Platform {
		return nil, nil //nolint:nilnil // no cookies for unknown platform is not an error
	}

	s.logger.DebugContext(ctx, "reading browser cookies", "platform", platform, "domain", Domain)

	if cookies := s.tryFirefoxProfiles(ctx); len(cookies) > 0 {
		return cookies, nil
	}

	// Chrome Canary is not auto-detected by kooky.
	if cookies := s.tryChromeCanary(ctx); len(cookies) > 0 {
		return cookies, nil
	}

	kookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix(Domain))
	if err != nil {
		s.logger.DebugContext(ctx, "failed to read browser cookies", "platform", platform, "error", err)
		return nil, nil //nolint:nilnil // failed browser read is not a fatal error
	}

	if len(kookies) == 0 {
		return nil, nil //nolint:nilnil // no browser cookies is not an error
	}

	return s.filterEssentialCookies(ctx, kookies), nil
}

// tryFirefoxProfiles reads Firefox-family profiles, including Zen Browser.
func (s *BrowserSource) tryFirefoxProfiles(ctx context.Context) map[string]string {
	if s.home == "" {
		return nil
	}

	for _, glob := range firefoxProfileGlobs {
		matches, err := filepath.Glob(filepath.Join(s.home, glob))
		if err != nil || len(matches) == 0 {
			continue
		}
		for _, f := range matches {
			kookies, err := firefox.ReadCookies(ctx, f, kooky.Valid, kooky.DomainHasSuffix(Domain))
			if err != nil {
				s.logger.DebugContext(ctx, "failed to read firefox cookies",
					"profile", filepath.Base(filepath.Dir(f)), "error", err)
				continue
			}
			if len(kookies) > 0 {
				s.logger.DebugContext(ctx, "found firefox cookies",
					"profile", filepath.Base(filepath.Dir(f)), "count", len(kookies))
				return s.filterEssentialCookies(ctx, kookies)
			}
		}
	}

	return nil
}

// tryChromeCanary attempts to read cookies from Chrome Canary profiles.
func (s *BrowserSource) tryChromeCanary(ctx context.Context) map[string]string {
	if s.home == "" {
		return nil
	}

	canaryDir := filepath.Join(s.home, "Library", "Application Support", "Google", "Chrome Canary")
	profiles := []string{"Default", "Profile 1", "Profile 2", "Profile 3", "Profile 4", "Profile 5"}

	for _, profile := range profiles {
		cookiesFile := filepath.Join(canaryDir, profile, "Cookies")
		if _, err := os.Stat(cookiesFile); err != nil {
			continue
		}

		kookies, err := chrome.ReadCookies(ctx, cookiesFile, kooky.Valid, kooky.DomainHasSuffix(Domain))
		if err != nil {
			if strings.Contains(err.Error(), "encryption") || strings.Contains(err.Error(), "decrypt") {
				s.logger.WarnContext(ctx, "Chrome Canary cookies exist but cannot be decrypted",
					"profile", profile,
					"hint", "try Firefox, Zen Browser, or set LINKEDIN_LI_AT")
			} else {
				s.logger.DebugContext(ctx, "failed to read Chrome Canary cookies", "profile", profile, "error", err)
			}
			continue
		}

		if len(kookies) > 0 {
			s.logger.DebugContext(ctx, "found Chrome Canary cookies", "profile", profile, "count", len(kookies))
			return s.filterEssentialCookies(ctx, kookies)
		}
	}

	return nil
}

// filterEssentialCookies keeps only the cookies LinkedIn needs for a session.
func (s *BrowserSource) filterEssentialCookies(ctx context.Context, kookies []*kooky.Cookie) map[string]string {
	cookies := FilterEssential(kookies)

	var found, missing []string
	for _, name := range essentialCookies {
		if _, ok := cookies[name]; ok {
			found = append(found, name)
		} else {
			missing = append(missing, name)
		}
	}

	if len(found) > 0 {
		s.logger.InfoContext(ctx, "browser cookies found", "platform", Platform, "keys", found)
	}
	if len(missing) > 0 {
		s.logger.InfoContext(ctx, "browser cookies missing", "platform", Platform, "keys", missing)
	}

	return cookies
}

// FilterEssential returns the essential LinkedIn cookies present in kookies.
func FilterEssential(kookies []*kooky.Cookie) map[string]string {
	essentialSet := make(map[string]bool, len(essentialCookies))
	for _, name := range essentialCookies {
		essentialSet[name] = true
	}

	cookies := make(map[string]string)
	for _, c := range kookies {
		if essentialSet[c.Name] {
			cookies[c.Name] = c.Value
		}
	}
	return cookies
}
