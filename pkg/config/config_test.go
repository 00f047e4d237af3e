package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate runs the test in an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	return dir
}

func TestDefaults(t *testing.T) {
	isolate(t)

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if cfg.Fetcher != FetcherBrowser {
		t.Errorf("Fetcher = %q, want %q", cfg.Fetcher, FetcherBrowser)
	}
	if cfg.Wait != 3*time.Second {
		t.Errorf("Wait = %v, want 3s", cfg.Wait)
	}
	if cfg.NotionDelay != 350*time.Millisecond {
		t.Errorf("NotionDelay = %v, want 350ms", cfg.NotionDelay)
	}
	if !cfg.Headless {
		t.Error("Headless = false, want true")
	}
	if cfg.DBPath == "" {
		t.Error("DBPath is empty")
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("LIX_COMPANY", " Acme Inc ")
	t.Setenv("LIX_FETCHER", "HTTP")
	t.Setenv("LIX_NOTION_TOKEN", "secret")
	t.Setenv("LIX_NOTION_DELAY", "1s")
	t.Setenv("LIX_NO_CACHE", "true")

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if cfg.Company != "Acme Inc" {
		t.Errorf("Company = %q, want %q", cfg.Company, "Acme Inc")
	}
	if cfg.Fetcher != FetcherHTTP {
		t.Errorf("Fetcher = %q, want %q", cfg.Fetcher, FetcherHTTP)
	}
	if cfg.NotionToken != "secret" {
		t.Errorf("NotionToken = %q, want %q", cfg.NotionToken, "secret")
	}
	if cfg.NotionDelay != time.Second {
		t.Errorf("NotionDelay = %v, want 1s", cfg.NotionDelay)
	}
	if !cfg.NoCache {
		t.Error("NoCache = false, want true")
	}
}

func TestConfigFileAndDotEnv(t *testing.T) {
	dir := isolate(t)

	yaml := "company: Globex\nwait: 5s\nnotion:\n  database: db42\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LIX_HEADLESS=false\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("LIX_HEADLESS") }) //nolint:errcheck // set by godotenv

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if cfg.Company != "Globex" || cfg.Wait != 5*time.Second || cfg.NotionDatabase != "db42" {
		t.Errorf("Decode() = company %q wait %v database %q", cfg.Company, cfg.Wait, cfg.NotionDatabase)
	}
	if cfg.Headless {
		t.Error("Headless = true, want false from .env")
	}
}

func TestDecodeInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("LIX_FETCHER", "carrier-pigeon")

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := Decode(v); err == nil {
		t.Error("Decode() error = nil, want an error for an unknown fetcher")
	}
}

func TestMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := New(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("New() error = nil, want an error for a missing config file")
	}
}
