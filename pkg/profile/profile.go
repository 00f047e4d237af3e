// Package profile defines the common types shared by the extraction pipeline and its collaborators.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the extraction packages.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyCompany    = fmt.Errorf("%w: company name is empty", ErrInvalidArgument)
	ErrNotProfileURL   = fmt.Errorf("%w: not a linkedin profile url", ErrInvalidArgument)
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoFragments     = errors.New("no candidate fragments found on page")
	ErrNoCookies       = errors.New("no cookies available")
	ErrLoginRequired   = errors.New("linkedin served a login page")
	ErrRateLimited     = errors.New("rate limited")
)

// Fragment is the text of one scanned page node, plus the profile link found inside it.
type Fragment struct {
	Text  string `json:"text"`
	Link  string `json:"link,omitempty"`  // May be relative ("/in/janedoe?x=1").
	Title string `json:"title,omitempty"` // Text of the card's name element, when the page has one.
}

// Record is one accepted person.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Record struct {
	Name      string `json:"name"`
	Company   string `json:"company"`
	Link      string `json:"link,omitempty"`       // Absolute profile URL without query string
	SearchURL string `json:"search_url,omitempty"` // Web search for the person when no link is known
}

// URL returns the best link for the record: its profile link, else its search URL.
func (r Record) URL() string {
	if r.Link != "" {
		return r.Link
	}
	return r.SearchURL
}

// Key identifies the person behind r across runs: the lower-cased profile
// link when known, else the lower-cased name.
func (r Record) Key() string {
	if r.Link != "" {
		return "link:" + strings.ToLower(r.Link)
	}
	return "name:" + strings.ToLower(r.Name)
}
