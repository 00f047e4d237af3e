// Package htmlutil provides text cleanup helpers for content scraped from rendered pages.
package htmlutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Punctuation is the set of characters dropped when comparing company names.
const Punctuation = ".,/#!$%^&*;:{}=-_`~()"

// Bullets separate a display name from the metadata that follows it on a card.
const Bullets = "•·∙‧⋅●◦‣"

// separators are glyphs that only ever act as visual dividers in page text.
const separators = Bullets + "|–—"

var (
	multiSpacePattern = regexp.MustCompile(`\s+`)
	strayCapAPattern  = regexp.MustCompile(`Â([\x{0080}-\x{00BF}\s])`)

	// Windows-1252 readings of UTF-8 punctuation.
	mojibake = strings.NewReplacer(
		"â€¢", "•",
		"â€™", "'",
		"â€˜", "'",
		"â€œ", `"`,
		"â€\u009d", `"`,
		"â€“", "–",
		"â€”", "—",
		"â€¦", "…",
	)
)

// RepairMojibake undoes the encoding artifacts LinkedIn text picks up when UTF-8
// bytes are decoded as Latin-1: the stray "Â" before a non-breaking space or
// middle dot, and the "â€" family of punctuation sequences.
func RepairMojibake(s string) string {
	if !strings.ContainsAny(s, "Ââ") {
		return s
	}
	s = mojibake.Replace(s)
	return strayCapAPattern.ReplaceAllString(s, "$1")
}

// CleanSpace repairs mojibake, turns every kind of Unicode whitespace into a plain
// space, drops zero-width characters, collapses runs and trims.
func CleanSpace(s string) string {
	if s == "" {
		return ""
	}
	s = RepairMojibake(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case isZeroWidth(r):
			return -1
		case unicode.IsSpace(r), unicode.In(r, unicode.Zs):
			return ' '
		default:
			return r
		}
	}, s)
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

// MatchKey normalizes free page text for case-insensitive substring matching:
// NFKC folding, mojibake repair, separator glyphs and exotic whitespace mapped to
// spaces, whitespace collapsed, lower-cased and trimmed.
func MatchKey(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(RepairMojibake(s))
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(separators, r) {
			return ' '
		}
		return r
	}, s)
	return strings.ToLower(CleanSpace(s))
}

// Cleanest strips punctuation, separator glyphs and all whitespace from s.
// Two spellings of the same company ("Acme, Inc." and "acme-inc") share a cleanest form.
func Cleanest(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || isZeroWidth(r) ||
			strings.ContainsRune(Punctuation, r) || strings.ContainsRune(separators, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StripPunctuation removes the Punctuation characters from s.
func StripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(Punctuation, r) {
			return -1
		}
		return r
	}, s)
}

// CollapseSpace reduces whitespace runs to a single space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}
