// Package lix extracts the people LinkedIn recommends next to a profile who work at a given company.
//
// Basic usage:
//
//	res, err := lix.Extract(ctx, "https://www.linkedin.com/in/johndoe", "Acme Inc",
//	    lix.WithCookies(map[string]string{"li_at": "...", "JSESSIONID": "..."}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range res.Records {
//	    fmt.Println(r.Name, r.URL())
//	}
//
// The pieces are also usable on their own: pkg/scan loads and scans pages,
// pkg/extract turns fragments into records.
package lix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ethan4582/linkedin-extractor/pkg/auth"
	"github.com/Ethan4582/linkedin-extractor/pkg/company"
	"github.com/Ethan4582/linkedin-extractor/pkg/extract"
	"github.com/Ethan4582/linkedin-extractor/pkg/htmlutil"
	"github.com/Ethan4582/linkedin-extractor/pkg/httpcache"
	"github.com/Ethan4582/linkedin-extractor/pkg/linkedin"
	"github.com/Ethan4582/linkedin-extractor/pkg/names"
	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
	"github.com/Ethan4582/linkedin-extractor/pkg/scan"
)

type (
	// Record re-exports profile.Record for convenience.
	Record = profile.Record
	// Stats re-exports extract.Stats for convenience.
	Stats = extract.Stats
)

// Re-export common errors.
var (
	ErrEmptyCompany    = profile.ErrEmptyCompany
	ErrNotProfileURL   = profile.ErrNotProfileURL
	ErrProfileNotFound = profile.ErrProfileNotFound
	ErrNoCookies       = profile.ErrNoCookies
	ErrNoFragments     = profile.ErrNoFragments
	ErrLoginRequired   = profile.ErrLoginRequired
	ErrRateLimited     = profile.ErrRateLimited
)

// Result is the outcome of one extraction.
type Result struct {
	Username   string
	OverlayURL string
	Company    string
	Records    []Record
	Stats      Stats
}

// Option configures an Extract call.
type Option func(*config)

//nolint:govet // fieldalignment: intentional layout for readability
type config struct {
	cache          httpcache.Cacher
	cookies        map[string]string
	logger         *slog.Logger
	fetcher        scan.Fetcher
	extractor      *names.Extractor
	browserBin     string
	wait           time.Duration
	browserCookies bool
	headless       bool
	plainHTTP      bool
}

// WithCookies sets explicit LinkedIn cookie values.
func WithCookies(cookies map[string]string) Option {
	return func(c *config) { c.cookies = cookies }
}

// WithBrowserCookies enables reading cookies from browser stores.
func WithBrowserCookies() Option {
	return func(c *config) { c.browserCookies = true }
}

// WithHTTPCache sets the cache for fetched pages.
func WithHTTPCache(httpCache httpcache.Cacher) Option {
	return func(c *config) { c.cache = httpCache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithFetcher replaces page loading entirely; cookies are then not looked up.
func WithFetcher(f scan.Fetcher) Option {
	return func(c *config) { c.fetcher = f }
}

// WithPlainHTTP loads the overlay without a browser.
// LinkedIn builds the overlay with script, so this mostly suits cached or saved pages.
func WithPlainHTTP() Option {
	return func(c *config) { c.plainHTTP = true }
}

// WithWait sets how long the browser lets the overlay render.
func WithWait(d time.Duration) Option {
	return func(c *config) { c.wait = d }
}

// WithHeadless toggles headless browser mode.
func WithHeadless(headless bool) Option {
	return func(c *config) { c.headless = headless }
}

// WithBrowserBin sets the Chromium executable.
func WithBrowserBin(path string) Option {
	return func(c *config) { c.browserBin = path }
}

// WithExtractor tunes name extraction.
func WithExtractor(e *names.Extractor) Option {
	return func(c *config) { c.extractor = e }
}

// Extract loads the browsemap overlay of profileURL and returns the recommended
// people who mention companyName, deduplicated, in page order.
func Extract(ctx context.Context, profileURL, companyName string, opts ...Option) (*Result, error) {
	cfg := &config{logger: slog.Default(), wait: scan.DefaultWait, headless: true}
	for _, opt := range opts {
		opt(cfg)
	}

	vs, err := company.Variants(companyName)
	if err != nil {
		return nil, err
	}
	if !linkedin.Match(profileURL) {
		return nil, fmt.Errorf("%w: %s", profile.ErrNotProfileURL, profileURL)
	}
	username := linkedin.Username(profileURL)
	if username == "" {
		return nil, fmt.Errorf("%w: %s", profile.ErrNotProfileURL, profileURL)
	}
	overlay := linkedin.OverlayURL(username)

	fetcher := cfg.fetcher
	if fetcher == nil {
		fetcher, err = newFetcher(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	cfg.logger.InfoContext(ctx, "loading recommendations", "username", username, "company", vs.Original())
	body, err := fetcher.Fetch(ctx, overlay)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", overlay, err)
	}

	frags, err := scan.FindFragments(bytes.NewReader(body), vs.Original())
	if errors.Is(err, profile.ErrNoFragments) {
		title := htmlutil.Title(string(body))
		cfg.logger.DebugContext(ctx, "no candidate fragments", "url", overlay, "title", title)
		if htmlutil.IsNotFound(title) {
			return nil, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, username)
		}
	}
	if err != nil {
		return nil, err
	}

	runOpts := []extract.Option{extract.WithLogger(cfg.logger)}
	if cfg.extractor != nil {
		runOpts = append(runOpts, extract.WithExtractor(cfg.extractor))
	}
	recs, stats, err := extract.RunWithStats(ctx, vs.Original(), frags, runOpts...)
	if err != nil {
		return nil, err
	}

	return &Result{
		Username:   username,
		OverlayURL: overlay,
		Company:    vs.Original(),
		Records:    recs,
		Stats:      stats,
	}, nil
}

// Cookies resolves LinkedIn cookies from, in order: explicit values, the
// environment, and browser stores when enabled.
func Cookies(ctx context.Context, explicit map[string]string, browser bool, logger *slog.Logger) (map[string]string, error) {
	var sources []auth.Source
	if len(explicit) > 0 {
		sources = append(sources, auth.NewStaticSource(explicit))
	}
	sources = append(sources, auth.EnvSource{})
	if browser {
		sources = append(sources, auth.NewBrowserSource(logger))
	}

	cookies, err := auth.ChainSources(ctx, auth.Platform, sources...)
	if err != nil {
		return nil, fmt.Errorf("cookie retrieval failed: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: set %v or use WithCookies/WithBrowserCookies",
			profile.ErrNoCookies, auth.EnvVarsForPlatform(auth.Platform))
	}
	return cookies, nil
}

func newFetcher(ctx context.Context, cfg *config) (scan.Fetcher, error) {
	cookies, err := Cookies(ctx, cfg.cookies, cfg.browserCookies, cfg.logger)
	if err != nil {
		return nil, err
	}

	if cfg.plainHTTP {
		opts := []scan.HTTPOption{scan.WithHTTPLogger(cfg.logger)}
		if cfg.cache != nil {
			opts = append(opts, scan.WithHTTPCache(cfg.cache))
		}
		return scan.NewHTTPFetcher(cookies, opts...)
	}

	browser := scan.NewBrowserFetcher(cookies,
		scan.WithBrowserLogger(cfg.logger),
		scan.WithWait(cfg.wait),
		scan.WithHeadless(cfg.headless),
		scan.WithBrowserBin(cfg.browserBin))
	return scan.NewCachedFetcher(browser, cfg.cache, cfg.logger), nil
}
