// Package session holds the records accumulated across extraction runs,
// the company they were collected for, and the note-service credentials.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ethan4582/linkedin-extractor/pkg/profile"
)

// ErrCompanyLocked is returned when a run targets a different company than
// the records already collected.
var ErrCompanyLocked = errors.New("session is locked to another company")

// Setting keys.
const (
	keyCompany        = "company"
	keyNotionToken    = "notion.token"
	keyNotionDatabase = "notion.database"
)

// Store persists a session.
type Store interface {
	LoadRecords(ctx context.Context) ([]profile.Record, error)
	SaveRecords(ctx context.Context, recs []profile.Record) error
	ClearRecords(ctx context.Context) error
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Session is the state carried between runs.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Session struct {
	Company        string
	Records        []profile.Record
	NotionToken    string
	NotionDatabase string

	store  Store
	logger *slog.Logger
	seen   map[string]bool
}

// Load reads the session from store.
func Load(ctx context.Context, store Store, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{store: store, logger: logger}

	recs, err := store.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{keyCompany, &s.Company},
		{keyNotionToken, &s.NotionToken},
		{keyNotionDatabase, &s.NotionDatabase},
	} {
		v, _, err := store.GetSetting(ctx, f.key)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		*f.dst = v
	}

	s.Add(recs)
	logger.DebugContext(ctx, "session loaded", "company", s.Company, "records", len(s.Records))
	return s, nil
}

// Save writes the session back to its store.
func (s *Session) Save(ctx context.Context) error {
	if err := s.store.SaveRecords(ctx, s.Records); err != nil {
		return err
	}
	for key, v := range map[string]string{
		keyCompany:        s.Company,
		keyNotionToken:    s.NotionToken,
		keyNotionDatabase: s.NotionDatabase,
	} {
		var err error
		if v == "" {
			err = s.store.DeleteSetting(ctx, key)
		} else {
			err = s.store.SetSetting(ctx, key, v)
		}
		if err != nil {
			return err
		}
	}
	s.logger.DebugContext(ctx, "session saved", "company", s.Company, "records", len(s.Records))
	return nil
}

// Lock ties the session to companyName. Re-locking to the same company
// (ignoring case and surrounding space) is a no-op; another company is
// refused until the session is cleared.
func (s *Session) Lock(companyName string) error {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return profile.ErrEmptyCompany
	}
	if s.Company != "" && !strings.EqualFold(s.Company, companyName) {
		return fmt.Errorf("%w: %q (clear the session to switch)", ErrCompanyLocked, s.Company)
	}
	if s.Company == "" {
		s.Company = companyName
	}
	return nil
}

// Add appends the records not already in the session and returns how many were new.
func (s *Session) Add(recs []profile.Record) int {
	if s.seen == nil {
		s.seen = make(map[string]bool, len(s.Records)+len(recs))
		for _, r := range s.Records {
			s.seen[r.Key()] = true
		}
	}

	added := 0
	for _, r := range recs {
		key := r.Key()
		if s.seen[key] {
			continue
		}
		s.seen[key] = true
		s.Records = append(s.Records, r)
		added++
	}
	return added
}

// Clear drops the records and the company lock and persists that.
// Note-service credentials are kept.
func (s *Session) Clear(ctx context.Context) error {
	s.Records = nil
	s.Company = ""
	s.seen = nil
	if err := s.store.ClearRecords(ctx); err != nil {
		return err
	}
	return s.store.DeleteSetting(ctx, keyCompany)
}
