package scan

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Ethan4582/linkedin-extractor/pkg/httpcache"
)

var errEmptyPage = errors.New("empty page")

// CachedFetcher memoizes another Fetcher's pages. Failed fetches are not cached.
type CachedFetcher struct {
	next   Fetcher
	cache  httpcache.Cacher
	logger *slog.Logger
}

// NewCachedFetcher wraps next with cache. A nil cache makes it a pass-through.
func NewCachedFetcher(next Fetcher, cache httpcache.Cacher, logger *slog.Logger) *CachedFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedFetcher{next: next, cache: cache, logger: logger}
}

// Fetch returns the cached page for url, fetching it on a miss.
func (c *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.cache == nil {
		return c.fetch(ctx, url)
	}

	hit := true
	body, err := c.cache.GetSet(ctx, httpcache.URLToKey("page|"+url), func(ctx context.Context) ([]byte, error) {
		hit = false
		return c.fetch(ctx, url)
	}, c.cache.TTL())
	httpcache.Observe(hit)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "page fetched", "url", url, "cached", hit)
	return body, nil
}

// fetch fails on an empty body so GetSet never stores one.
func (c *CachedFetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := c.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errEmptyPage
	}
	return body, nil
}
