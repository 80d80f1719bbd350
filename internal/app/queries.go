package app

import (
	"context"
	"fmt"
	"time"

	"appraiser_directory/internal/domain"
	"appraiser_directory/internal/storage/jsonstore"
)

func locationKey(normalized string) string { return "location:" + normalized }
func appraiserKey(id string) string        { return "appraiser:" + id }

// QueryService serves resolver lookups to the API through the cache.
type QueryService struct {
	store    domain.LocationStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(s domain.LocationStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetLocation(ctx context.Context, citySlug string) (domain.Location, error) {
	norm := jsonstore.NormalizeSlug(citySlug)
	if norm == "" {
		return domain.Location{}, domain.ErrNotFound
	}
	key := locationKey(norm)
	var l domain.Location
	if ok, _ := s.cache.Get(ctx, key, &l); ok {
		return l, nil
	}
	found := s.store.GetLocation(norm)
	if found == nil {
		return domain.Location{}, domain.ErrNotFound
	}
	out := copyLocation(*found)
	_ = s.cache.Set(ctx, key, copyLocation(out), int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) GetAppraiser(ctx context.Context, id string) (domain.Appraiser, error) {
	if id == "" {
		return domain.Appraiser{}, domain.ErrNotFound
	}
	key := appraiserKey(id)
	var a domain.Appraiser
	if ok, _ := s.cache.Get(ctx, key, &a); ok {
		return a, nil
	}
	found := s.store.GetAppraiser(id)
	if found == nil {
		return domain.Appraiser{}, domain.ErrNotFound
	}
	out := copyAppraiser(*found)
	_ = s.cache.Set(ctx, key, copyAppraiser(out), int(s.cacheTTL.Seconds()))
	return out, nil
}

// GetAppraiserBySlug resolves a slug inside one city. Slugs are only unique
// per city, so the city is resolved first.
func (s *QueryService) GetAppraiserBySlug(ctx context.Context, citySlug, slug string) (domain.Appraiser, error) {
	l, err := s.GetLocation(ctx, citySlug)
	if err != nil {
		return domain.Appraiser{}, err
	}
	for _, a := range l.Appraisers {
		if a.Slug == slug {
			return a, nil
		}
	}
	return domain.Appraiser{}, fmt.Errorf("appraiser %q in %s: %w", slug, l.Key, domain.ErrNotFound)
}

// copy slices so callers, cache and store never share backing arrays
func copyLocation(in domain.Location) domain.Location {
	out := in
	if n := len(in.Appraisers); n > 0 {
		out.Appraisers = make([]domain.Appraiser, n)
		for i, a := range in.Appraisers {
			out.Appraisers[i] = copyAppraiser(a)
		}
	}
	return out
}

func copyAppraiser(in domain.Appraiser) domain.Appraiser {
	out := in
	if in.Business.Rating != nil {
		r := *in.Business.Rating
		out.Business.Rating = &r
	}
	if n := len(in.Reviews); n > 0 {
		out.Reviews = make([]domain.Review, n)
		copy(out.Reviews, in.Reviews)
	}
	return out
}
