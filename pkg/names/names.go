// Package names turns the raw text of a recommendation card into a clean display name.
//
// Cards render the name twice (a screen-reader copy and a visual copy), so the
// concatenated text reads "Jane DoeJane Doe" or "Jane Doe Jane Doe", usually
// followed by the connection degree and an action button label. Extract strips
// that noise and collapses the duplicate.
package names

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Ethan4582/linkedin-extractor/pkg/htmlutil"
)

// Heuristic bounds for the character-offset duplicate scan. Window is how far
// from the midpoint a split is tried; MinHalf is the length a half must exceed.
const (
	DefaultWindow  = 3
	DefaultMinHalf = 2
)

// Valid names are between MinLength and MaxLength runes.
const (
	MinLength = 2
	MaxLength = 60
)

// maxPasses bounds the cleanup loop; each pass only ever shortens the string.
const maxPasses = 8

// denylist holds residual UI labels that are never names (exact, case-insensitive).
var denylist = map[string]bool{
	"connect":  true,
	"message":  true,
	"follow":   true,
	"view":     true,
	"more":     true,
	"see all":  true,
	"show":     true,
	"hide":     true,
	"settings": true,
	"chapters": true,
	"captions": true,
	"off":      true,
	"on":       true,
}

var (
	actionWordPattern = regexp.MustCompile(`(?i)\b(?:view\s+profile|connect|follow|message|pending)\b`)
	actionGluedStart  = regexp.MustCompile(`^(?:Connect|Follow|Message|Pending|CONNECT|FOLLOW|MESSAGE|PENDING)(\p{Lu})`)
	actionGluedEnd    = regexp.MustCompile(`(\p{Ll})(?:Connect|Follow|Message|Pending)$`)
	degreePattern     = regexp.MustCompile(`(?i)\b\d+(?:st|nd|rd|th)\+?(?:\s+degree(?:\s+connection)?)?(?:\b|$)`)
	numericPattern    = regexp.MustCompile(`^[\d\s.,+]+$`)
)

// Extractor holds the tunable thresholds for the duplicate scan.
// The zero value is not usable; start from New.
type Extractor struct {
	Window  int
	MinHalf int
}

// New returns an Extractor with the default thresholds.
func New() *Extractor {
	return &Extractor{Window: DefaultWindow, MinHalf: DefaultMinHalf}
}

var defaultExtractor = New()

// Extract returns the clean display name in raw, or "" if none survives.
func Extract(raw string) string {
	return defaultExtractor.Extract(raw)
}

// Valid reports whether name is acceptable as a display name.
func Valid(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < MinLength || n > MaxLength {
		return false
	}
	lower := strings.ToLower(name)
	if denylist[lower] {
		return false
	}
	return !numericPattern.MatchString(name)
}

// Extract returns the clean display name in raw, or "" if none survives.
// The cleanup runs until the text stops changing, so Extract(Extract(s)) == Extract(s).
func (e *Extractor) Extract(raw string) string {
	s := raw
	for range maxPasses {
		next := e.clean(s)
		if next == s {
			break
		}
		s = next
	}
	if !Valid(s) {
		return ""
	}
	return s
}

func (e *Extractor) clean(s string) string {
	s = htmlutil.CleanSpace(s)
	s = firstSegment(s)
	s = StripNoise(s)
	s = htmlutil.CollapseSpace(s)
	return e.Collapse(s)
}

// firstSegment keeps the text before the first bullet; the rest is card metadata.
func firstSegment(s string) string {
	if i := strings.IndexAny(s, htmlutil.Bullets); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// StripNoise removes action-button labels and connection-degree markers.
func StripNoise(s string) string {
	s = actionGluedStart.ReplaceAllString(s, "$1")
	s = actionGluedEnd.ReplaceAllString(s, "$1")
	s = actionWordPattern.ReplaceAllString(s, " ")
	s = degreePattern.ReplaceAllString(s, " ")
	return s
}

// Collapse returns the first copy of a name that was repeated back to back,
// or s unchanged when no repetition is found.
func (e *Extractor) Collapse(s string) string {
	if half, ok := e.splitScan(s); ok {
		return half
	}
	if half, ok := wordHalves(s); ok {
		return half
	}
	return s
}

// splitScan tries split points around the middle of s and returns the left
// part when both sides read the same.
func (e *Extractor) splitScan(s string) (string, bool) {
	runes := []rune(s)
	n := len(runes)
	if n < 2*(e.MinHalf+1) {
		return "", false
	}

	lo := n/2 - e.Window
	hi := (n+1)/2 + e.Window
	lo = max(lo, e.MinHalf)
	hi = min(hi, n-e.MinHalf)

	for i := lo; i <= hi; i++ {
		left := strings.TrimSpace(string(runes[:i]))
		right := strings.TrimSpace(string(runes[i:]))
		if utf8.RuneCountInString(left) <= e.MinHalf {
			continue
		}
		if strings.EqualFold(left, right) {
			return left, true
		}
	}
	return "", false
}

// wordHalves handles repeats that the split scan misses because of spacing differences.
func wordHalves(s string) (string, bool) {
	words := strings.FieldsFunc(s, unicode.IsSpace)
	if len(words) < 4 || len(words)%2 != 0 {
		return "", false
	}
	first := strings.Join(words[:len(words)/2], " ")
	second := strings.Join(words[len(words)/2:], " ")
	if strings.EqualFold(first, second) {
		return first, true
	}
	return "", false
}
