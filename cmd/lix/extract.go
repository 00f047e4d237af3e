package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ethan4582/linkedin-extractor/pkg/config"
	"github.com/Ethan4582/linkedin-extractor/pkg/httpcache"
	"github.com/Ethan4582/linkedin-extractor/pkg/lix"
	"github.com/Ethan4582/linkedin-extractor/pkg/scan"
)

var extractCmd = &cobra.Command{
	Use:   "extract <profile-url>",
	Short: "Collect recommended people who work at a company",
	Long: `Collect recommended people who work at a company.

The profile's browsemap overlay is loaded, every card mentioning the company
is kept, and new people are added to the session. The session stays locked
to its company until 'lix clear'.

Examples:
  lix extract --company "Acme Inc" https://www.linkedin.com/in/johndoe
  lix extract https://www.linkedin.com/in/janedoe   # reuses the locked company`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringP("company", "c", "", "company to filter for (default: the session's company)")
	f.String("fetcher", config.FetcherBrowser, "page loader: browser or http")
	f.Duration("wait", scan.DefaultWait, "time the overlay gets to render after load")
	f.Bool("headless", true, "run the browser headless")
	f.String("browser-bin", "", "Chromium executable (default: found or downloaded by rod)")
	f.Bool("browser-cookies", true, "read LinkedIn cookies from browser stores")
	f.StringToString("cookie", nil, "explicit cookie, e.g. --cookie li_at=...")
	f.Bool("no-cache", false, "disable the page cache")
	f.Duration("cache-ttl", 24*time.Hour, "page cache time-to-live")
	f.Bool("json", false, "print new records as JSON")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, store, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	companyName := cfg.Company
	if companyName == "" {
		companyName = s.Company
	}
	if companyName == "" {
		return errors.New("no company given: use --company or LIX_COMPANY")
	}
	if err := s.Lock(companyName); err != nil {
		return err
	}

	opts := []lix.Option{
		lix.WithLogger(logger),
		lix.WithWait(cfg.Wait),
		lix.WithHeadless(cfg.Headless),
		lix.WithBrowserBin(cfg.BrowserBin),
	}
	if cookies, _ := cmd.Flags().GetStringToString("cookie"); len(cookies) > 0 { //nolint:errcheck // flag is defined above
		opts = append(opts, lix.WithCookies(cookies))
	}
	if cfg.BrowserCookies {
		opts = append(opts, lix.WithBrowserCookies())
	}
	if cfg.Fetcher == config.FetcherHTTP {
		opts = append(opts, lix.WithPlainHTTP())
	}
	if !cfg.NoCache {
		cache, err := httpcache.New(cfg.CacheTTL)
		if err != nil {
			logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		} else {
			defer func() {
				if err := cache.Close(); err != nil {
					logger.Warn("failed to close cache", "error", err)
				}
			}()
			opts = append(opts, lix.WithHTTPCache(cache))
		}
	}

	res, err := lix.Extract(ctx, args[0], s.Company, opts...)
	if err != nil {
		return err
	}
	if st := httpcache.CacheStats(); st.Hits+st.Misses > 0 {
		logger.DebugContext(ctx, "page cache", "hits", st.Hits, "misses", st.Misses, "hit_rate", st.HitRate())
	}

	before := len(s.Records)
	added := s.Add(res.Records)
	if err := s.Save(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fresh := s.Records[before:]

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON { //nolint:errcheck // flag is defined above
		return outputJSON(out, fresh)
	}
	fmt.Fprintf(out, "Found %d at %s on %s's page, %d new (%d in session).\n",
		len(res.Records), s.Company, res.Username, added, len(s.Records))
	printRecords(out, fresh, before)
	return nil
}
