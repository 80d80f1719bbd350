package app

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"appraiser_directory/internal/domain"
)

func ptrStr(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func ptrRating(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func mapLocation(l domain.Location) domain.LocationRow {
	seo, err := json.Marshal(l.SEO)
	if err != nil {
		log.Error().Err(err).Str("location", l.Key).Msg("failed to marshal seo block")
	}
	return domain.LocationRow{
		Key:         l.Key,
		City:        ptrStr(l.City),
		State:       ptrStr(l.State),
		DisplayName: l.Name(),
		AreaServed:  ptrStr(l.AreaServedName()),
		SEO:         seo,
	}
}

func mapAppraiser(locationKey string, a domain.Appraiser) domain.AppraiserRow {
	raw, err := json.Marshal(a)
	if err != nil {
		log.Error().Err(err).Str("id", a.ID).Msg("failed to marshal appraiser")
	}
	return domain.AppraiserRow{
		ID:          a.ID,
		LocationKey: locationKey,
		Slug:        a.Slug,
		Name:        a.Name,
		City:        ptrStr(a.Address.City),
		State:       ptrStr(a.Address.State),
		Phone:       ptrStr(a.Contact.Phone),
		Website:     ptrStr(a.Contact.Website),
		ImageURL:    ptrStr(a.ImageURL),
		Rating:      ptrRating(a.Business.Rating),
		ReviewCount: a.Business.ReviewCount,
		InService:   a.Metadata.InService,
		Raw:         raw,
	}
}
