package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jomei/notionapi"

	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeNotion serves a two-page database query and records created pages.
type fakeNotion struct {
	mu       sync.Mutex
	created  []map[string]any
	failNext atomic.Int32 // requests answered with failWith before serving
	failWith int
	creates  atomic.Int32
	cursors  []string
}

func writeError(w http.ResponseWriter, status int) {
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "0")
	}
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"object":"error","status":%d,"code":"test_error","message":"failed"}`, status)
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer tok" || r.Header.Get("Notion-Version") != APIVersion {
		writeError(w, http.StatusUnauthorized)
		return
	}
	if r.URL.Path == "/v1/pages" {
		f.creates.Add(1)
	}
	if f.failNext.Load() > 0 {
		f.failNext.Add(-1)
		status := f.failWith
		if status == 0 {
			status = http.StatusTooManyRequests
		}
		writeError(w, status)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	switch r.URL.Path {
	case "/v1/databases/db1/query":
		cursor, _ := body["start_cursor"].(string) //nolint:errcheck // absent on first page
		f.mu.Lock()
		f.cursors = append(f.cursors, cursor)
		f.mu.Unlock()
		if cursor == "" {
			fmt.Fprint(w, `{"object":"list","results":[`+page("p1", `"https://www.linkedin.com/in/janedoe"`)+`],"has_more":true,"next_cursor":"c2"}`)
			return
		}
		fmt.Fprint(w, `{"object":"list","results":[`+page("p2", "null")+`,`+page("p3", `"https://www.linkedin.com/in/old"`)+`],"has_more":false,"next_cursor":null}`)
	case "/v1/pages":
		f.mu.Lock()
		f.created = append(f.created, body)
		f.mu.Unlock()
		fmt.Fprint(w, `{"object":"page","id":"new"}`)
	default:
		writeError(w, http.StatusNotFound)
	}
}

// page renders a database row whose URL property holds urlJSON.
func page(id, urlJSON string) string {
	return `{"object":"page","id":"` + id + `","properties":{"URL":{"id":"u","type":"url","url":` + urlJSON + `}}}`
}

// dig walks nested JSON objects and arrays.
func dig(v any, path ...any) any {
	for _, p := range path {
		switch k := p.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				return nil
			}
			v = m[k]
		case int:
			a, ok := v.([]any)
			if !ok || k >= len(a) {
				return nil
			}
			v = a[k]
		}
	}
	return v
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New("tok", "db1", WithBaseURL(srv.URL), WithLogger(quietLogger()), WithDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNewNotConfigured(t *testing.T) {
	for _, tc := range [][2]string{{"", "db"}, {"tok", ""}, {" ", " "}} {
		if _, err := New(tc[0], tc[1]); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("New(%q, %q) error = %v, want %v", tc[0], tc[1], err, ErrNotConfigured)
		}
	}
}

func TestExistingURLs(t *testing.T) {
	fake := &fakeNotion{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	got, err := newTestClient(t, srv).ExistingURLs(context.Background())
	if err != nil {
		t.Fatalf("ExistingURLs failed: %v", err)
	}
	want := map[string]bool{
		"https://www.linkedin.com/in/janedoe": true,
		"https://www.linkedin.com/in/old":     true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExistingURLs() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "c2"}, fake.cursors); diff != "" {
		t.Errorf("cursors mismatch (-want +got):\n%s", diff)
	}
}

func TestSync(t *testing.T) {
	fake := &fakeNotion{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	recs := []profile.Record{
		{Name: "Jane Doe", Company: "Acme", Link: "https://www.linkedin.com/in/janedoe"},
		{Name: "Bob Lee", Company: "Acme", Link: "https://www.linkedin.com/in/boblee"},
		{Name: "Amy Alpha", Company: "Acme", SearchURL: "https://www.google.com/search?q=amy"},
	}
	res, err := newTestClient(t, srv).Sync(context.Background(), recs)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if diff := cmp.Diff(SyncResult{Created: 2, Skipped: 1}, res); diff != "" {
		t.Errorf("SyncResult mismatch (-want +got):\n%s", diff)
	}

	if len(fake.created) != 2 {
		t.Fatalf("created %d pages, want 2", len(fake.created))
	}
	got := fake.created[0]
	tests := []struct {
		path []any
		want string
	}{
		{[]any{"parent", "database_id"}, "db1"},
		{[]any{"properties", "Name", "title", 0, "text", "content"}, "Bob Lee"},
		{[]any{"properties", "Company", "rich_text", 0, "text", "content"}, "Acme"},
		{[]any{"properties", "URL", "url"}, "https://www.linkedin.com/in/boblee"},
	}
	for _, tt := range tests {
		if v, _ := dig(got, tt.path...).(string); v != tt.want {
			t.Errorf("created page %v = %q, want %q", tt.path, v, tt.want)
		}
	}
}

func TestSyncRetriesRateLimit(t *testing.T) {
	fake := &fakeNotion{}
	fake.failNext.Store(1)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	res, err := newTestClient(t, srv).Sync(context.Background(), []profile.Record{
		{Name: "Bob Lee", Company: "Acme", Link: "https://www.linkedin.com/in/boblee"},
	})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.Created != 1 {
		t.Errorf("Created = %d, want 1", res.Created)
	}
}

func TestSyncCountsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/query") {
			fmt.Fprint(w, `{"object":"list","results":[],"has_more":false}`)
			return
		}
		writeError(w, http.StatusBadRequest)
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv).Sync(context.Background(), []profile.Record{
		{Name: "A B", Company: "Acme", Link: "https://www.linkedin.com/in/ab"},
		{Name: "C D", Company: "Acme", Link: "https://www.linkedin.com/in/cd"},
	})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if diff := cmp.Diff(SyncResult{Failed: 2}, res); diff != "" {
		t.Errorf("SyncResult mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatePageDelay(t *testing.T) {
	fake := &fakeNotion{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c, err := New("tok", "db1", WithBaseURL(srv.URL), WithLogger(quietLogger()), WithDelay(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	start := time.Now()
	for _, name := range []string{"A B", "C D", "E F"} {
		if err := c.CreatePage(context.Background(), profile.Record{Name: name, Company: "Acme"}); err != nil {
			t.Fatalf("CreatePage failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("3 creations took %v, want at least 200ms", elapsed)
	}
}

func TestCreateNotRetriedAfterServerError(t *testing.T) {
	fake := &fakeNotion{failWith: http.StatusBadGateway}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	c := newTestClient(t, srv)

	fake.failNext.Store(1)
	if err := c.CreatePage(context.Background(), profile.Record{Name: "Bob Lee", Company: "Acme"}); err == nil {
		t.Fatal("CreatePage succeeded, want the 502")
	}
	if got := fake.creates.Load(); got != 1 {
		t.Errorf("create attempts = %d, want 1", got)
	}

	fake.failNext.Store(1)
	if _, err := c.ExistingURLs(context.Background()); err != nil {
		t.Errorf("ExistingURLs failed after one 502: %v", err)
	}
}

func TestRetryable(t *testing.T) {
	transport := &url.Error{Op: "Post", URL: "https://api.notion.com/v1/pages", Err: errors.New("connection refused")}
	tests := []struct {
		name       string
		err        error
		wantRead   bool
		wantCreate bool
	}{
		{"rate limited", &notionapi.RateLimitedError{Message: "slow down"}, true, true},
		{"429", &notionapi.Error{Status: http.StatusTooManyRequests}, true, true},
		{"502", &notionapi.Error{Status: http.StatusBadGateway}, true, false},
		{"400", &notionapi.Error{Status: http.StatusBadRequest}, false, false},
		{"no response", transport, true, true},
		{"canceled", fmt.Errorf("post: %w", context.Canceled), false, false},
		{"decode", errors.New("unexpected EOF"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableRead(tt.err); got != tt.wantRead {
				t.Errorf("retryableRead(%v) = %v, want %v", tt.err, got, tt.wantRead)
			}
			if got := retryableCreate(tt.err); got != tt.wantCreate {
				t.Errorf("retryableCreate(%v) = %v, want %v", tt.err, got, tt.wantCreate)
			}
		})
	}
}
