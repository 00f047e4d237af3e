// Package company matches free-text company names against noisy page text.
//
// A company typed as "Acme, Inc." shows up on cards as "Acme Inc", "AcmeInc",
// "acme-inc" or "acme.inc". Variants expands the typed name into every spelling
// class once per run, and VariantSet.Matches tests page text against all of them.
package company

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Ethan4582/linkedin-extractor/pkg/htmlutil"
	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

// VariantSet is the immutable set of spellings generated from one company name.
// Entries are match-normalized and lower-cased, and never empty.
type VariantSet struct {
	index    *regexp.Regexp
	loose    *regexp.Regexp
	original string
	variants []string
	cleanest []string
}

// Variants generates the spelling variants of name.
// A blank name is a caller error and returns profile.ErrEmptyCompany.
func Variants(name string) (*VariantSet, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, profile.ErrEmptyCompany
	}

	stripped := htmlutil.StripPunctuation(trimmed)
	candidates := []string{
		trimmed,
		stripped,
		removeSpace(trimmed),
		removeSpace(stripped),
		htmlutil.CollapseSpace(trimmed),
		strings.ReplaceAll(trimmed, ".", " "),
		strings.ReplaceAll(htmlutil.CollapseSpace(trimmed), " ", "-"),
		strings.ReplaceAll(trimmed, "-", " "),
		strings.ReplaceAll(trimmed, "_", " "),
		htmlutil.Cleanest(trimmed),
	}

	seen := make(map[string]bool, len(candidates))
	vs := &VariantSet{original: trimmed}
	for _, c := range candidates {
		v := htmlutil.MatchKey(c)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		vs.variants = append(vs.variants, v)
	}
	if len(vs.variants) == 0 {
		vs.variants = []string{strings.ToLower(trimmed)}
	}

	cleanSeen := make(map[string]bool, len(vs.variants))
	for _, v := range vs.variants {
		c := htmlutil.Cleanest(v)
		if c == "" || cleanSeen[c] {
			continue
		}
		cleanSeen[c] = true
		vs.cleanest = append(vs.cleanest, c)
	}

	vs.index = indexPattern(vs.variants)
	vs.loose = loosePattern(vs.cleanest)
	return vs, nil
}

// Original returns the trimmed company name the set was built from.
func (vs *VariantSet) Original() string { return vs.original }

// List returns a copy of the variants, longest first.
func (vs *VariantSet) List() []string {
	out := make([]string, len(vs.variants))
	copy(out, vs.variants)
	sortLongestFirst(out)
	return out
}

// Matches reports whether text plausibly mentions the company under any variant.
func (vs *VariantSet) Matches(text string) bool {
	key := htmlutil.MatchKey(text)
	if key == "" {
		return false
	}
	for _, v := range vs.variants {
		if strings.Contains(key, v) {
			return true
		}
	}

	// "acme.inc" on the page against "Acme, Inc." typed by the user.
	clean := htmlutil.Cleanest(key)
	if clean == "" {
		return false
	}
	for _, c := range vs.cleanest {
		if strings.Contains(clean, c) {
			return true
		}
	}
	return false
}

// Span returns the byte range in text of the leftmost case-insensitive
// occurrence of any variant, or -1, -1. Offsets refer to the original text.
// When no variant occurs verbatim, the cleanest forms are tried with any
// punctuation or spacing between their characters, the way Matches does.
func (vs *VariantSet) Span(text string) (start, end int) {
	if text == "" {
		return -1, -1
	}
	for _, re := range []*regexp.Regexp{vs.index, vs.loose} {
		if re == nil {
			continue
		}
		if loc := re.FindStringIndex(text); loc != nil {
			return loc[0], loc[1]
		}
	}
	return -1, -1
}

// indexPattern builds a case-insensitive alternation over the variants.
// Spaces in a variant match any whitespace run so raw page text lines up.
func indexPattern(variants []string) *regexp.Regexp {
	alts := make([]string, 0, len(variants))
	for _, v := range variants {
		if utf8.RuneCountInString(v) < 2 {
			continue
		}
		words := strings.Fields(v)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `[\s\p{Zs}]+`))
	}
	if len(alts) == 0 {
		return nil
	}
	sortLongestFirst(alts)
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

// loosePattern matches the cleanest forms with any run of non-alphanumerics
// between characters, so "acmeinc" finds "Acme.Inc" and "acme - inc".
func loosePattern(cleanest []string) *regexp.Regexp {
	alts := make([]string, 0, len(cleanest))
	for _, c := range cleanest {
		if utf8.RuneCountInString(c) < 2 {
			continue
		}
		chars := make([]string, 0, len(c))
		for _, r := range c {
			chars = append(chars, regexp.QuoteMeta(string(r)))
		}
		alts = append(alts, strings.Join(chars, `[^\p{L}\p{N}]*`))
	}
	if len(alts) == 0 {
		return nil
	}
	sortLongestFirst(alts)
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

func removeSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func sortLongestFirst(ss []string) {
	sort.SliceStable(ss, func(i, j int) bool { return len(ss[i]) > len(ss[j]) })
}
