package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ethan4582/linkedin-extractor/pkg/auth"
	"github.com/Ethan4582/linkedin-extractor/pkg/htmlutil"
	"github.com/Ethan4582/linkedin-extractor/pkg/httpcache"
	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

// Fetcher loads the HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher loads pages with a plain HTTP client carrying session cookies.
// It only sees server-rendered markup; use BrowserFetcher for script-built overlays.
type HTTPFetcher struct {
	fetcher *httpcache.Fetcher
	logger  *slog.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	cache   httpcache.Cacher
	logger  *slog.Logger
	limiter *httpcache.DomainRateLimiter
	timeout time.Duration
	client  *http.Client
}

// WithHTTPCache enables response caching.
func WithHTTPCache(cache httpcache.Cacher) HTTPOption {
	return func(c *httpConfig) { c.cache = cache }
}

// WithHTTPLogger sets a custom logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(c *httpConfig) { c.logger = logger }
}

// WithRateLimiter replaces the shared per-domain rate limiter.
func WithRateLimiter(l *httpcache.DomainRateLimiter) HTTPOption {
	return func(c *httpConfig) { c.limiter = l }
}

// WithHTTPTimeout bounds each fetch, retries included.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(c *httpConfig) { c.timeout = d }
}

// WithHTTPClient replaces the client; its Jar is overwritten with the session cookies.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *httpConfig) { c.client = client }
}

// NewHTTPFetcher creates a fetcher authenticated with the given LinkedIn cookies.
func NewHTTPFetcher(cookies map[string]string, opts ...HTTPOption) (*HTTPFetcher, error) {
	cfg := &httpConfig{logger: slog.Default(), timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	jar, err := auth.NewCookieJar(auth.Domain, cookies)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := cfg.client
	if client == nil {
		client = &http.Client{Timeout: cfg.timeout}
	}
	client.Jar = jar

	return &HTTPFetcher{
		fetcher: &httpcache.Fetcher{
			Cache:   cfg.cache,
			Client:  client,
			Logger:  cfg.logger,
			Limiter: cfg.limiter,
			Timeout: cfg.timeout,
			// Login walls come back 200; never cache them.
			Validator: func(body []byte) bool { return !htmlutil.IsLoginWall(string(body)) },
		},
		logger: cfg.logger,
	}, nil
}

// Fetch returns the page body. A login wall yields profile.ErrLoginRequired
// and a 429 yields profile.ErrRateLimited.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.logger.InfoContext(ctx, "fetching page", "url", url, "via", "http")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setHeaders(req)

	body, err := f.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	if htmlutil.IsLoginWall(string(body)) {
		return nil, fmt.Errorf("%w: %s", profile.ErrLoginRequired, url)
	}
	return body, nil
}

func classify(err error) error {
	var httpErr *httpcache.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	switch httpErr.StatusCode {
	case http.StatusTooManyRequests, 999: // LinkedIn answers scrapers with 999
		return fmt.Errorf("%w: %w", profile.ErrRateLimited, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", profile.ErrLoginRequired, err)
	default:
		return err
	}
}

func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", httpcache.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")
	req.Header.Set("Sec-GPC", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
}
