package httpcache

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// globalRateLimiter paces page fetches that do not bring their own limiter.
var globalRateLimiter = NewDomainRateLimiter(1100 * time.Millisecond)

// DomainRateLimiter enforces a minimum delay between requests to the same domain.
// It is safe for concurrent use from multiple goroutines.
type DomainRateLimiter struct {
	logger      *slog.Logger
	overrides   map[string]time.Duration // per-domain minimum delays
	lastRequest sync.Map                 // map[string]time.Time
	mu          sync.Map                 // map[string]*sync.Mutex - per-domain locks
	minDelay    time.Duration
}

// NewDomainRateLimiter creates a rate limiter that enforces minDelay between
// requests to the same domain. Domain-specific overrides can be set with SetDomainDelay.
func NewDomainRateLimiter(minDelay time.Duration) *DomainRateLimiter {
	return &DomainRateLimiter{
		logger:    slog.Default(),
		minDelay:  minDelay,
		overrides: make(map[string]time.Duration),
	}
}

// SetDomainDelay sets a custom minimum delay for a specific domain.
// Call it before the limiter is shared.
func (r *DomainRateLimiter) SetDomainDelay(domain string, delay time.Duration) {
	r.overrides[domain] = delay
}

// SetLogger sets the logger used for pause messages.
func (r *DomainRateLimiter) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Wait blocks until it's safe to make a request to the given URL's domain.
// It returns ctx.Err() if ctx ends first; the slot is not consumed then.
func (r *DomainRateLimiter) Wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	domain := u.Host

	muI, _ := r.mu.LoadOrStore(domain, &sync.Mutex{})
	mu, ok := muI.(*sync.Mutex)
	if !ok {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	delay := r.minDelay
	if override, ok := r.overrides[domain]; ok {
		delay = override
	}

	if lastI, ok := r.lastRequest.Load(domain); ok {
		if last, ok := lastI.(time.Time); ok {
			if elapsed := time.Since(last); elapsed < delay {
				waitTime := delay - elapsed
				r.logger.DebugContext(ctx, "rate limit pause", "domain", domain, "wait", waitTime.Round(time.Millisecond))
				t := time.NewTimer(waitTime)
				select {
				case <-ctx.Done():
					t.Stop()
					return ctx.Err()
				case <-t.C:
				}
			}
		}
	}

	r.lastRequest.Store(domain, time.Now())
	return nil
}
