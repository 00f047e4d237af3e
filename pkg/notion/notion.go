// Package notion pushes collected records into a Notion database.
package notion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/jomei/notionapi"

	"github.com/Ethan4582/linkedin-extractor/pkg/httpcache"
	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

const (
	// DefaultBaseURL is the Notion API origin.
	DefaultBaseURL = "https://api.notion.com"
	// APIVersion is the Notion-Version header value the payloads follow.
	APIVersion = "2022-06-28"
	// DefaultDelay spaces page creations to stay under Notion's rate limit.
	DefaultDelay = 350 * time.Millisecond

	pageSize = 100
)

// ErrNotConfigured is returned when the token or database ID is missing.
var ErrNotConfigured = errors.New("notion token and database id are required")

// Client talks to one Notion database.
type Client struct {
	api        *notionapi.Client
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *httpcache.DomainRateLimiter
	databaseID notionapi.DatabaseID
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithBaseURL points the client at another API origin.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithDelay sets the pause between page creations.
func WithDelay(d time.Duration) Option {
	return func(c *Client) { c.limiter = httpcache.NewDomainRateLimiter(d) }
}

// New creates a client for databaseID authenticated with token.
func New(token, databaseID string, opts ...Option) (*Client, error) {
	token, databaseID = strings.TrimSpace(token), strings.TrimSpace(databaseID)
	if token == "" || databaseID == "" {
		return nil, ErrNotConfigured
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		limiter:    httpcache.NewDomainRateLimiter(DefaultDelay),
		databaseID: notionapi.DatabaseID(databaseID),
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc, err := rebase(c.httpClient, c.baseURL)
	if err != nil {
		return nil, err
	}
	// notionapi makes one attempt; call decides what to repeat.
	c.api = notionapi.NewClient(notionapi.Token(token),
		notionapi.WithHTTPClient(hc),
		notionapi.WithVersion(APIVersion),
		notionapi.WithRetry(1))
	return c, nil
}

// SyncResult counts what Sync did.
type SyncResult struct {
	Created int
	Skipped int // already in the database
	Failed  int
}

// Sync creates a page for every record whose URL is not yet in the database.
// Creations run one at a time, spaced by the configured delay. A failed record
// is logged and counted; only a failure to list existing pages aborts.
func (c *Client) Sync(ctx context.Context, recs []profile.Record) (SyncResult, error) {
	var res SyncResult

	existing, err := c.ExistingURLs(ctx)
	if err != nil {
		return res, err
	}

	for _, r := range recs {
		u := r.URL()
		if existing[u] {
			res.Skipped++
			continue
		}
		if err := c.CreatePage(ctx, r); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			c.logger.WarnContext(ctx, "notion page creation failed", "name", r.Name, "error", err)
			res.Failed++
			continue
		}
		existing[u] = true
		res.Created++
	}

	c.logger.InfoContext(ctx, "notion sync complete",
		"created", res.Created, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// ExistingURLs returns the URL property of every page in the database.
func (c *Client) ExistingURLs(ctx context.Context) (map[string]bool, error) {
	urls := make(map[string]bool)
	var cursor notionapi.Cursor
	for {
		req := &notionapi.DatabaseQueryRequest{StartCursor: cursor, PageSize: pageSize}
		resp, err := call(ctx, c, "query", retryableRead, func() (*notionapi.DatabaseQueryResponse, error) {
			return c.api.Database.Query(ctx, c.databaseID, req)
		})
		if err != nil {
			return nil, fmt.Errorf("query database: %w", err)
		}
		for i := range resp.Results {
			if u := urlProperty(resp.Results[i].Properties["URL"]); u != "" {
				urls[u] = true
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	c.logger.DebugContext(ctx, "existing notion pages", "count", len(urls))
	return urls, nil
}

func urlProperty(p notionapi.Property) string {
	switch v := p.(type) {
	case *notionapi.URLProperty:
		return v.URL
	case notionapi.URLProperty:
		return v.URL
	}
	return ""
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{Text: &notionapi.Text{Content: s}}}
}

// CreatePage adds one record to the database. It waits out the creation delay first.
func (c *Client) CreatePage(ctx context.Context, r profile.Record) error {
	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return err
	}

	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: c.databaseID,
		},
		Properties: notionapi.Properties{
			"Name":    notionapi.TitleProperty{Title: richText(r.Name)},
			"Company": notionapi.RichTextProperty{RichText: richText(r.Company)},
			"URL":     notionapi.URLProperty{URL: r.URL()},
		},
	}
	if _, err := call(ctx, c, "create", retryableCreate, func() (*notionapi.Page, error) {
		return c.api.Page.Create(ctx, req)
	}); err != nil {
		return fmt.Errorf("create page for %q: %w", r.Name, err)
	}
	return nil
}

func call[T any](ctx context.Context, c *Client, op string, retryable func(error) bool, fn func() (T, error)) (T, error) {
	return retry.DoWithData(
		fn,
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxJitter(250*time.Millisecond),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.DebugContext(ctx, "retrying notion request", "attempt", n+1, "op", op, "error", err)
		}),
	)
}

// retryableRead reports whether a query may be repeated: rate limits,
// server errors and failures before any response.
func retryableRead(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if status, ok := apiStatus(err); ok {
		return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
	}
	return isRateLimited(err) || isTransport(err)
}

// retryableCreate is narrower: a 5xx may come after Notion wrote the page, so
// only rate limits and failures before any response are repeated.
func retryableCreate(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if status, ok := apiStatus(err); ok {
		return status == http.StatusTooManyRequests
	}
	return isRateLimited(err) || isTransport(err)
}

func apiStatus(err error) (int, bool) {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, true
	}
	return 0, false
}

func isRateLimited(err error) bool {
	var rl *notionapi.RateLimitedError
	return errors.As(err, &rl)
}

func isTransport(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// rebase returns client unchanged for the public API, or a copy whose requests
// are sent to base instead.
func rebase(client *http.Client, base string) (*http.Client, error) {
	if base == DefaultBaseURL {
		return client, nil
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid notion base url %q", base)
	}
	next := client.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	rebased := *client
	rebased.Transport = rebaseTransport{base: u, next: next}
	return &rebased, nil
}

type rebaseTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t rebaseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme, r.URL.Host = t.base.Scheme, t.base.Host
	r.Host = ""
	return t.next.RoundTrip(r)
}
