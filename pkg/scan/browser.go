package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/Ethan4582/linkedin-extractor/pkg/auth"
	"github.com/Ethan4582/linkedin-extractor/pkg/htmlutil"
	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

// DefaultWait is how long the overlay gets to render after the page loads.
const DefaultWait = 3 * time.Second

// BrowserFetcher renders pages in a headless Chromium so script-built overlays are populated.
type BrowserFetcher struct {
	cookies  map[string]string
	logger   *slog.Logger
	wait     time.Duration
	headless bool
	bin      string
	timeout  time.Duration
}

// BrowserOption configures a BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithBrowserLogger sets a custom logger.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(b *BrowserFetcher) { b.logger = logger }
}

// WithWait sets the settle time between page load and reading the DOM.
func WithWait(d time.Duration) BrowserOption {
	return func(b *BrowserFetcher) { b.wait = d }
}

// WithHeadless toggles headless mode. Headful mode helps debug login walls.
func WithHeadless(headless bool) BrowserOption {
	return func(b *BrowserFetcher) { b.headless = headless }
}

// WithBrowserBin sets the browser executable; empty lets rod find or download one.
func WithBrowserBin(path string) BrowserOption {
	return func(b *BrowserFetcher) { b.bin = path }
}

// WithPageTimeout bounds navigation and load of a single page.
func WithPageTimeout(d time.Duration) BrowserOption {
	return func(b *BrowserFetcher) { b.timeout = d }
}

// NewBrowserFetcher creates a browser-backed fetcher with the given LinkedIn cookies.
func NewBrowserFetcher(cookies map[string]string, opts ...BrowserOption) *BrowserFetcher {
	b := &BrowserFetcher{
		cookies:  cookies,
		logger:   slog.Default(),
		wait:     DefaultWait,
		headless: true,
		timeout:  45 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fetch launches a browser, loads url with the session cookies and returns the rendered HTML.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	b.logger.InfoContext(ctx, "fetching page", "url", url, "via", "browser", "headless", b.headless)

	l := launcher.New().Context(ctx).Headless(b.headless).Leakless(false)
	if b.bin != "" {
		l = l.Bin(b.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			b.logger.DebugContext(ctx, "failed to close browser", "error", err)
		}
	}()

	if err := browser.SetCookies(cookieParams(b.cookies)); err != nil {
		return nil, fmt.Errorf("set cookies: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	loading := page.Timeout(b.timeout)
	if err := loading.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := loading.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for load: %w", err)
	}
	loading.CancelTimeout()

	if err := sleep(ctx, b.wait); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	if htmlutil.IsLoginWall(html) {
		return nil, fmt.Errorf("%w: %s", profile.ErrLoginRequired, url)
	}

	b.logger.DebugContext(ctx, "page rendered", "url", url, "bytes", len(html))
	return []byte(html), nil
}

// cookieParams turns a cookie map into CDP cookie parameters for the LinkedIn domain.
func cookieParams(cookies map[string]string) []*proto.NetworkCookieParam {
	httpCookies := auth.HTTPCookies(auth.Domain, cookies)
	params := make([]*proto.NetworkCookieParam, 0, len(httpCookies))
	for _, c := range httpCookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   true,
			HTTPOnly: c.Name == "li_at",
		})
	}
	return params
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
