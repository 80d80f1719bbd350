package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"appraiser_directory/internal/domain"
	"appraiser_directory/internal/storage/jsonstore"
)

// IngestionService mirrors the data store into the relational repository.
type IngestionService struct {
	repo  domain.DirectoryRepository
	cache domain.Cache // optional
}

func NewIngestionService(r domain.DirectoryRepository, c domain.Cache) *IngestionService {
	return &IngestionService{repo: r, cache: c}
}

// IngestLocation upserts one location, its appraisers and their reviews.
// The location row goes first to satisfy the appraisers' foreign key.
// Reviews carry no identity, so each appraiser's set is replaced wholesale.
func (s *IngestionService) IngestLocation(ctx context.Context, l domain.Location) error {
	if err := s.repo.UpsertLocation(ctx, mapLocation(l)); err != nil {
		return fmt.Errorf("upsert location %s: %w", l.Key, err)
	}
	for _, a := range l.Appraisers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.repo.UpsertAppraiser(ctx, mapAppraiser(l.Key, a)); err != nil {
			return fmt.Errorf("upsert appraiser %s: %w", a.ID, err)
		}
		if err := s.repo.ReplaceReviews(ctx, a.ID, a.Reviews); err != nil {
			return fmt.Errorf("replace reviews for %s: %w", a.ID, err)
		}
		s.invalidate(ctx, appraiserKey(a.ID))
		log.Debug().Str("location", l.Key).Str("id", a.ID).Int("reviews", len(a.Reviews)).Msg("appraiser ingested")
	}
	// every name the resolver can match this location by
	for _, name := range []string{l.AreaServedName(), l.City, l.FirstAppraiserCity()} {
		if norm := jsonstore.NormalizeSlug(name); norm != "" {
			s.invalidate(ctx, locationKey(norm))
		}
	}
	return nil
}

func (s *IngestionService) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}
