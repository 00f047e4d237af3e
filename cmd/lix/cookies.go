package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ethan4582/linkedin-extractor/pkg/linkedin"
	"github.com/Ethan4582/linkedin-extractor/pkg/lix"
	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
	"github.com/Ethan4582/linkedin-extractor/pkg/scan"
)

var cookiesCmd = &cobra.Command{
	Use:   "cookies [profile-url]",
	Short: "Show which LinkedIn cookies are available and which ones a page load needs",
	Long: `Show which LinkedIn cookies are available.

With a profile URL, the overlay is requested once per cookie combination to
find the smallest set LinkedIn accepts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCookies,
}

func init() {
	cookiesCmd.Flags().StringToString("cookie", nil, "explicit cookie, e.g. --cookie li_at=...")
	cookiesCmd.Flags().Bool("browser-cookies", true, "read LinkedIn cookies from browser stores")
	rootCmd.AddCommand(cookiesCmd)
}

type cookieCombo struct {
	name    string
	cookies []string
}

// combinations are tried from the smallest plausible set up to all four.
var combinations = []cookieCombo{
	{"li_at only", []string{"li_at"}},
	{"li_at + JSESSIONID", []string{"li_at", "JSESSIONID"}},
	{"li_at + JSESSIONID + lidc", []string{"li_at", "JSESSIONID", "lidc"}},
	{"li_at + JSESSIONID + lidc + bcookie", []string{"li_at", "JSESSIONID", "lidc", "bcookie"}},
}

func runCookies(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	explicit, _ := cmd.Flags().GetStringToString("cookie") //nolint:errcheck // flag is defined above
	all, err := lix.Cookies(ctx, explicit, cfg.BrowserCookies, logger)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(out, "Found %d LinkedIn cookies:\n", len(all))
	for _, name := range names {
		fmt.Fprintf(out, "  %-12s %s\n", name, mask(all[name]))
	}

	if len(args) == 0 {
		return nil
	}
	if !linkedin.Match(args[0]) {
		return fmt.Errorf("%w: %s", profile.ErrNotProfileURL, args[0])
	}
	target := linkedin.OverlayURL(linkedin.Username(args[0]))

	fmt.Fprint(out, "\nTesting cookie combinations...\n")
	var working []string
	for _, combo := range combinations {
		cookies, missing := pick(all, combo.cookies)
		if missing != "" {
			fmt.Fprintf(out, "⚠️  %s: missing cookie %q\n", combo.name, missing)
			continue
		}
		if err := tryCookies(ctx, cookies, target); err != nil {
			fmt.Fprintf(out, "❌ %s: %v\n", combo.name, err)
			continue
		}
		fmt.Fprintf(out, "✅ %s\n", combo.name)
		if working == nil {
			working = combo.cookies
		}
	}
	summarize(out, working)
	return nil
}

func tryCookies(ctx context.Context, cookies map[string]string, url string) error {
	f, err := scan.NewHTTPFetcher(cookies, scan.WithHTTPLogger(logger))
	if err != nil {
		return err
	}
	_, err = f.Fetch(ctx, url)
	return err
}

// pick returns the named cookies, or the first name that is absent.
func pick(all map[string]string, names []string) (map[string]string, string) {
	cookies := make(map[string]string, len(names))
	for _, name := range names {
		v, ok := all[name]
		if !ok || v == "" {
			return nil, name
		}
		cookies[name] = v
	}
	return cookies, ""
}

func summarize(w io.Writer, working []string) {
	fmt.Fprint(w, "\n=== Summary ===\n")
	if working == nil {
		fmt.Fprint(w, "Unable to determine minimum cookies (all combinations failed)\n")
		return
	}
	fmt.Fprint(w, "Minimum required cookies:\n")
	for _, name := range working {
		fmt.Fprintf(w, "  - %s\n", name)
	}
}

// mask hides all but the first and last four characters of a cookie value.
func mask(v string) string {
	if len(v) <= 10 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + strings.Repeat("*", len(v)-8) + v[len(v)-4:]
}
