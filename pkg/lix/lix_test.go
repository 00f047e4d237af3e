package lix

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const overlayPage = `<html><body>
<div class="artdeco-modal__content"><ul>
  <li><a href="/in/janedoe?x=1"><span aria-hidden="true">Jane Doe</span></a> • 2nd Engineer at Acme Inc <button>Connect</button></li>
  <li><a href="/in/boblee">Bob Lee Bob Lee</a> Acme Inc <button>Message</button></li>
  <li><a href="/in/zed">Zed Zulu</a> Globex <button>Follow</button></li>
  <li><a href="/in/janedoe">Jane Doe</a> Acme Inc</li>
</ul></div></body></html>`

type pageFetcher struct {
	gotURL string
	body   string
	err    error
}

func (f *pageFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.gotURL = url
	return []byte(f.body), f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract(t *testing.T) {
	f := &pageFetcher{body: overlayPage}
	res, err := Extract(context.Background(), "https://www.linkedin.com/in/someone/?trk=x", "Acme Inc",
		WithFetcher(f), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if want := "https://www.linkedin.com/in/someone/overlay/browsemap-recommendations/"; f.gotURL != want {
		t.Errorf("fetched %q, want %q", f.gotURL, want)
	}

	want := []Record{
		{Name: "Jane Doe", Company: "Acme Inc", Link: "https://www.linkedin.com/in/janedoe"},
		{Name: "Bob Lee", Company: "Acme Inc", Link: "https://www.linkedin.com/in/boblee"},
	}
	if diff := cmp.Diff(want, res.Records); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
	if res.Username != "someone" {
		t.Errorf("Username = %q, want %q", res.Username, "someone")
	}
	if res.Stats.Scanned != 4 || res.Stats.Duplicates != 1 {
		t.Errorf("Stats = %+v, want 4 scanned and 1 duplicate", res.Stats)
	}
}

func TestExtractErrors(t *testing.T) {
	fetchErr := errors.New("boom")
	tests := []struct {
		name    string
		url     string
		company string
		fetcher *pageFetcher
		want    error
	}{
		{"empty company", "https://www.linkedin.com/in/x", " ", &pageFetcher{}, ErrEmptyCompany},
		{"not a profile", "https://example.com/in/x", "Acme", &pageFetcher{}, ErrNotProfileURL},
		{"no username", "https://www.linkedin.com/in/", "Acme", &pageFetcher{}, ErrNotProfileURL},
		{"fetch error", "https://www.linkedin.com/in/x", "Acme", &pageFetcher{err: fetchErr}, fetchErr},
		{"no cards", "https://www.linkedin.com/in/x", "Acme", &pageFetcher{body: "<p>hi</p>"}, ErrNoFragments},
		{"profile gone", "https://www.linkedin.com/in/x", "Acme",
			&pageFetcher{body: "<html><head><title>Page Not Found | LinkedIn</title></head><body><p>hi</p></body></html>"},
			ErrProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(context.Background(), tt.url, tt.company,
				WithFetcher(tt.fetcher), WithLogger(quietLogger()))
			if !errors.Is(err, tt.want) {
				t.Errorf("Extract() error = %v, want %v", err, tt.want)
			}
			if res != nil {
				t.Errorf("Extract() = %+v, want nil", res)
			}
		})
	}
}

func TestCookies(t *testing.T) {
	t.Setenv("LINKEDIN_LI_AT", "")
	t.Setenv("LINKEDIN_JSESSIONID", "")
	t.Setenv("LINKEDIN_LIDC", "")
	t.Setenv("LINKEDIN_BCOOKIE", "")

	if _, err := Cookies(context.Background(), nil, false, quietLogger()); !errors.Is(err, ErrNoCookies) {
		t.Errorf("Cookies() error = %v, want %v", err, ErrNoCookies)
	}

	t.Setenv("LINKEDIN_LI_AT", "from-env")
	got, err := Cookies(context.Background(), nil, false, quietLogger())
	if err != nil {
		t.Fatalf("Cookies failed: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"li_at": "from-env"}, got); diff != "" {
		t.Errorf("env cookies mismatch (-want +got):\n%s", diff)
	}

	got, err = Cookies(context.Background(), map[string]string{"li_at": "explicit"}, false, quietLogger())
	if err != nil {
		t.Fatalf("Cookies failed: %v", err)
	}
	if got["li_at"] != "explicit" {
		t.Errorf("li_at = %q, want explicit value to win", got["li_at"])
	}
}

func TestExtractNoCookies(t *testing.T) {
	for _, v := range []string{"LINKEDIN_LI_AT", "LINKEDIN_JSESSIONID", "LINKEDIN_LIDC", "LINKEDIN_BCOOKIE"} {
		t.Setenv(v, "")
	}
	_, err := Extract(context.Background(), "https://www.linkedin.com/in/x", "Acme", WithLogger(quietLogger()))
	if !errors.Is(err, ErrNoCookies) {
		t.Errorf("Extract() error = %v, want %v", err, ErrNoCookies)
	}
}
