// Package scan finds the recommendation cards on a rendered overlay page and
// fetches that page from LinkedIn.
package scan

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Ethan4582/linkedin-extractor/pkg/company"
	"github.com/Ethan4582/linkedin-extractor/pkg/htmlutil"
	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

// cardSelectors are tried in order; the first that matches anything wins.
// LinkedIn has shipped each of these layouts for the browsemap overlay.
var cardSelectors = []string{
	".artdeco-modal__content li",
	"[data-test-modal] li",
	".browsemap-recommendations li",
	".artdeco-list__item",
	".pvs-list__item--line-separated",
	".scaffold-finite-scroll__content li",
}

const (
	modalSelector     = `.artdeco-modal__content, [role="dialog"]`
	modalCardSelector = "li, .entity-result"
	looseCardSelector = "li, div"
	linkSelector      = `a[href*="/in/"]`
	titleSelector     = `a[href*="/in/"] span[aria-hidden="true"], .entity-result__title-text a, .artdeco-entity-lockup__title, a[href*="/in/"] span`
	nonContent        = "script, style, noscript, template"
)

// actionKeywords mark a node as a person card in the loosest fallback.
var actionKeywords = []string{"connect", "follow", "message", "pending"}

// FindFragments parses an overlay page and returns one fragment per candidate card,
// in document order. companyName is used only by the last-resort fallback,
// which keeps any list item or div that mentions the company or an action button.
// It returns profile.ErrNoFragments when no candidate node exists at all.
func FindFragments(r io.Reader, companyName string) ([]profile.Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find(nonContent).Remove()

	cards, err := findCards(doc, companyName)
	if err != nil {
		return nil, err
	}
	if cards.Length() == 0 {
		return nil, profile.ErrNoFragments
	}

	var frags []profile.Fragment
	cards.Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if strings.TrimSpace(text) == "" {
			return
		}
		f := profile.Fragment{Text: text}
		if href, ok := s.Find(linkSelector).First().Attr("href"); ok {
			f.Link = strings.TrimSpace(href)
		} else if href, ok := s.Filter(linkSelector).Attr("href"); ok {
			f.Link = strings.TrimSpace(href)
		}
		f.Title = htmlutil.CleanSpace(s.Find(titleSelector).First().Text())
		frags = append(frags, f)
	})
	if len(frags) == 0 {
		return nil, profile.ErrNoFragments
	}
	return frags, nil
}

func findCards(doc *goquery.Document, companyName string) (*goquery.Selection, error) {
	for _, sel := range cardSelectors {
		if cards := doc.Find(sel); cards.Length() > 0 {
			return cards, nil
		}
	}

	if modal := doc.Find(modalSelector).First(); modal.Length() > 0 {
		if cards := modal.Find(modalCardSelector); cards.Length() > 0 {
			return cards, nil
		}
	}

	vs, err := company.Variants(companyName)
	if err != nil {
		return nil, err
	}
	return looseCards(doc, vs), nil
}

// looseCards returns the innermost li/div nodes that look like a person card.
// Nodes holding a profile link are preferred over bare text matches.
func looseCards(doc *goquery.Document, vs *company.VariantSet) *goquery.Selection {
	qualifies := func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if vs.Matches(text) {
			return true
		}
		lower := strings.ToLower(text)
		for _, k := range actionKeywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	}
	withLink := func(_ int, s *goquery.Selection) bool {
		return s.Find(linkSelector).Length() > 0 && qualifies(0, s)
	}

	if linked := innermost(doc.Find(looseCardSelector), withLink); linked.Length() > 0 {
		return linked
	}
	return innermost(doc.Find(looseCardSelector), qualifies)
}

// innermost keeps the nodes accepted by keep that have no accepted descendant.
func innermost(nodes *goquery.Selection, keep func(int, *goquery.Selection) bool) *goquery.Selection {
	accepted := nodes.FilterFunction(keep)
	return accepted.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(looseCardSelector).FilterFunction(keep).Length() == 0
	})
}
