package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid record")
)

// LocationStore is the read-only data resolver. Lookups return nil when
// nothing matches; they never fail.
type LocationStore interface {
	GetLocation(citySlug string) *Location
	GetAppraiser(appraiserID string) *Appraiser
	Locations() []Location
}

type DirectoryRepository interface {
	// Write paths
	UpsertLocation(ctx context.Context, l LocationRow) error
	UpsertAppraiser(ctx context.Context, row AppraiserRow) error
	ReplaceReviews(ctx context.Context, appraiserID string, rs []Review) error

	// Read paths
	GetAppraiser(ctx context.Context, id string) (AppraiserRow, error)
	ListAppraisers(ctx context.Context, locationKey string, limit int) ([]AppraiserRow, error)
}

// ImageProber answers whether an image URL is reachable.
type ImageProber interface {
	Exists(ctx context.Context, url string) (bool, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// LocationRow is the relational projection of a Location.
type LocationRow struct {
	Key         string
	City        *string
	State       *string
	DisplayName string
	AreaServed  *string
	SEO         []byte // seo block as JSON
}

// AppraiserRow is the relational projection of an Appraiser.
type AppraiserRow struct {
	ID          string
	LocationKey string
	Slug        string
	Name        string
	City        *string
	State       *string
	Phone       *string
	Website     *string
	ImageURL    *string
	Rating      *float64
	ReviewCount int
	InService   bool
	Raw         []byte // full JSON document
}
