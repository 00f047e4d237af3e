// Package config loads settings from flags, LIX_* environment variables,
// an optional .env file and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Ethan4582/linkedin-extractor/pkg/notion"
	"github.com/Ethan4582/linkedin-extractor/pkg/persistence"
	"github.com/Ethan4582/linkedin-extractor/pkg/scan"
)

// EnvPrefix prefixes every environment variable read by viper.
const EnvPrefix = "LIX"

// Fetcher kinds.
const (
	FetcherBrowser = "browser"
	FetcherHTTP    = "http"
)

// Config is the resolved configuration.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Config struct {
	Company        string
	DBPath         string
	Fetcher        string
	Wait           time.Duration
	Headless       bool
	BrowserBin     string
	BrowserCookies bool
	CacheTTL       time.Duration
	NoCache        bool
	NotionToken    string
	NotionDatabase string
	NotionDelay    time.Duration
	LogFile        string
}

// New returns a viper instance with defaults, environment binding and, when
// found, the config file. configFile overrides the lookup.
// A .env file in the working directory is loaded into the environment first.
func New(configFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("company", "")
	v.SetDefault("db", defaultDBPath())
	v.SetDefault("fetcher", FetcherBrowser)
	v.SetDefault("wait", scan.DefaultWait.String())
	v.SetDefault("headless", true)
	v.SetDefault("browser-bin", "")
	v.SetDefault("browser-cookies", true)
	v.SetDefault("cache-ttl", "24h")
	v.SetDefault("no-cache", false)
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database", "")
	v.SetDefault("notion.delay", notion.DefaultDelay.String())
	v.SetDefault("log-file", "")

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Decode resolves v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Company:        strings.TrimSpace(v.GetString("company")),
		DBPath:         v.GetString("db"),
		Fetcher:        strings.ToLower(v.GetString("fetcher")),
		Wait:           v.GetDuration("wait"),
		Headless:       v.GetBool("headless"),
		BrowserBin:     v.GetString("browser-bin"),
		BrowserCookies: v.GetBool("browser-cookies"),
		CacheTTL:       v.GetDuration("cache-ttl"),
		NoCache:        v.GetBool("no-cache"),
		NotionToken:    v.GetString("notion.token"),
		NotionDatabase: v.GetString("notion.database"),
		NotionDelay:    v.GetDuration("notion.delay"),
		LogFile:        v.GetString("log-file"),
	}

	switch cfg.Fetcher {
	case FetcherBrowser, FetcherHTTP:
	default:
		return nil, fmt.Errorf("fetcher must be %q or %q, got %q", FetcherBrowser, FetcherHTTP, cfg.Fetcher)
	}
	if cfg.Wait < 0 || cfg.NotionDelay < 0 || cfg.CacheTTL < 0 {
		return nil, errors.New("durations must not be negative")
	}
	return cfg, nil
}

// findConfigFile returns ./config.yaml or <user config dir>/lix/config.yaml, whichever exists first.
func findConfigFile() string {
	candidates := []string{"config.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "lix", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return persistence.DefaultDBPath
	}
	return filepath.Join(dir, "lix", persistence.DefaultDBPath)
}
