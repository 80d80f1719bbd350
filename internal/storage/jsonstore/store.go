// Package jsonstore is the read-only data store over the per-city JSON
// documents and the resolver used by page lookups.
package jsonstore

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"appraiser_directory/internal/adapters/observability"
	"appraiser_directory/internal/domain"
)

// Store keeps locations in file-name order. It is never mutated after New.
type Store struct {
	locs []domain.Location
}

func New(locs []domain.Location) *Store {
	return &Store{locs: locs}
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeSlug lower-cases s, trims it and collapses whitespace runs to "-".
func NormalizeSlug(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
}

// GetLocation resolves a city slug to its location. For each location, in
// order, the SEO area-served name, then the city field, then the first
// appraiser's city are compared after normalization; the first match wins.
// It returns nil for empty input or when nothing matches.
func (s *Store) GetLocation(citySlug string) *domain.Location {
	want := NormalizeSlug(citySlug)
	if want == "" {
		log.Error().Str("reason", "empty_slug").Msg("location lookup without slug")
		observability.ObserveLookupMiss("location", "empty_slug")
		return nil
	}
	for i := range s.locs {
		l := &s.locs[i]
		for _, candidate := range []string{l.AreaServedName(), l.City, l.FirstAppraiserCity()} {
			if candidate != "" && NormalizeSlug(candidate) == want {
				return l
			}
		}
	}
	log.Error().Str("reason", "no_match").Str("slug", want).Msg("location not found")
	observability.ObserveLookupMiss("location", "no_match")
	return nil
}

// GetAppraiser scans every location for an exact id match.
func (s *Store) GetAppraiser(appraiserID string) *domain.Appraiser {
	if appraiserID == "" {
		log.Error().Str("reason", "empty_id").Msg("appraiser lookup without id")
		observability.ObserveLookupMiss("appraiser", "empty_id")
		return nil
	}
	for i := range s.locs {
		as := s.locs[i].Appraisers
		for j := range as {
			if as[j].ID == appraiserID {
				return &as[j]
			}
		}
	}
	log.Error().Str("reason", "no_match").Str("id", appraiserID).Msg("appraiser not found")
	observability.ObserveLookupMiss("appraiser", "no_match")
	return nil
}

// Locations returns the documents in file-name order. Callers must not
// modify the returned records.
func (s *Store) Locations() []domain.Location { return s.locs }

func (s *Store) Keys() []string {
	out := make([]string, len(s.locs))
	for i, l := range s.locs {
		out[i] = l.Key
	}
	return out
}
