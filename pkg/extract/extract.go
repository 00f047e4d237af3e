// Package extract turns scanned page fragments into deduplicated person records.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Ethan4582/linkedin-extractor/pkg/company"
	"github.com/Ethan4582/linkedin-extractor/pkg/htmlutil"
	"github.com/Ethan4582/linkedin-extractor/pkg/linkedin"
	"github.com/Ethan4582/linkedin-extractor/pkg/names"
	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

// Stats counts what happened to the fragments of one run.
type Stats struct {
	Scanned       int // fragments looked at
	Matched       int // fragments mentioning the company
	Unextractable int // matched fragments with no usable name
	Duplicates    int // fragments skipped for a repeated link or name
	Emitted       int // records returned
}

// Option configures a run.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	extractor *names.Extractor
	baseURL   string
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithExtractor replaces the default name extractor, e.g. to tune its thresholds.
func WithExtractor(e *names.Extractor) Option {
	return func(c *config) { c.extractor = e }
}

// WithBaseURL sets the origin used to resolve relative profile links.
func WithBaseURL(base string) Option {
	return func(c *config) { c.baseURL = base }
}

// Run filters frags to the people who mention companyName and returns one record
// per distinct person, in fragment order.
func Run(ctx context.Context, companyName string, frags []profile.Fragment, opts ...Option) ([]profile.Record, error) {
	recs, _, err := RunWithStats(ctx, companyName, frags, opts...)
	return recs, err
}

// RunWithStats is Run, also reporting per-run counters.
// The only error is profile.ErrEmptyCompany; bad fragments are skipped, never fatal.
func RunWithStats(ctx context.Context, companyName string, frags []profile.Fragment, opts ...Option) ([]profile.Record, Stats, error) {
	cfg := &config{
		logger:    slog.Default(),
		extractor: names.New(),
		baseURL:   linkedin.BaseURL,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var stats Stats
	vs, err := company.Variants(companyName)
	if err != nil {
		return nil, stats, err
	}
	companyName = vs.Original()

	cfg.logger.DebugContext(ctx, "extracting records",
		"company", companyName, "fragments", len(frags), "variants", len(vs.List()))

	seen := make(map[string]bool)
	var recs []profile.Record
	for _, f := range frags {
		stats.Scanned++

		link := linkedin.ResolveLink(cfg.baseURL, f.Link)
		linkKey := strings.ToLower(link)
		if link != "" && seen["link:"+linkKey] {
			stats.Duplicates++
			continue
		}

		if !vs.Matches(f.Text) {
			continue
		}
		stats.Matched++

		var name string
		if f.Title != "" {
			name = cfg.extractor.Extract(f.Title)
		}
		if name == "" {
			name = firstName(cfg.extractor, nameRegions(vs, f.Text))
		}
		if name == "" {
			stats.Unextractable++
			cfg.logger.DebugContext(ctx, "no name in fragment", "text", f.Text)
			continue
		}

		nameKey := "name:" + strings.ToLower(name)
		if seen[nameKey] {
			stats.Duplicates++
			continue
		}

		seen[nameKey] = true
		if link != "" {
			seen["link:"+linkKey] = true
		}

		rec := profile.Record{Name: name, Company: companyName, Link: link}
		if link == "" {
			rec.SearchURL = linkedin.SearchURL(name, companyName)
		}
		recs = append(recs, rec)
	}
	stats.Emitted = len(recs)

	cfg.logger.InfoContext(ctx, "extraction complete",
		"company", companyName,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"unextractable", stats.Unextractable,
		"duplicates", stats.Duplicates,
		"emitted", stats.Emitted)

	return recs, stats, nil
}

// nameRegions returns the lines of a card's text that may hold the name, best
// first: those before the company mention, then those after it for cards that
// lead with the company or the headline. Without a mention, every line.
func nameRegions(vs *company.VariantSet, text string) []string {
	start, end := vs.Span(text)
	if start < 0 {
		return lines(text)
	}
	return append(lines(text[:start]), lines(text[end:])...)
}

// lines splits s into trimmed, non-blank lines with leading dividers removed.
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimLeft(htmlutil.RepairMojibake(l), dividers)
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

const dividers = htmlutil.Bullets + "|–—-,:;@ \t\r\u00a0"

// firstName returns the first name e extracts from regions, skipping headline
// fragments such as "Engineer at" left over in front of the company.
func firstName(e *names.Extractor, regions []string) string {
	for _, r := range regions {
		name := e.Extract(r)
		if name != "" && !isHeadline(name) {
			return name
		}
	}
	return ""
}

func isHeadline(name string) bool {
	words := strings.Fields(strings.ToLower(name))
	switch words[len(words)-1] {
	case "at", "@":
		return true
	}
	return false
}
