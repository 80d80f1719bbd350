package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"appraiser_directory/internal/data"
	"appraiser_directory/internal/domain"
)

var (
	ErrDuplicateID   = errors.New("duplicate appraiser id")
	ErrDuplicateSlug = errors.New("duplicate appraiser slug")
	ErrNoDocuments   = errors.New("no location documents")
)

var validate = validator.New()

// Embedded loads the documents compiled into the binary.
func Embedded() (*Store, error) {
	return Load(data.Locations, data.Dir)
}

// Open loads the documents from dir on disk, or the embedded set when dir is "".
func Open(dir string) (*Store, error) {
	if dir == "" {
		return Embedded()
	}
	return Load(os.DirFS(dir), ".")
}

// Load reads every *.json document in dir of fsys, sorted by file name.
// Malformed JSON, missing required fields and duplicate ids or slugs fail the
// whole load; review ratings off the half-point grid are only logged.
func Load(fsys fs.FS, dir string) (*Store, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}
	sort.Strings(names)

	locs := make([]domain.Location, 0, len(names))
	owner := make(map[string]string) // appraiser id -> location key
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		var l domain.Location
		if err := json.Unmarshal(b, &l); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		l.Key = strings.TrimSuffix(path.Base(name), ".json")
		if err := check(l, owner); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		locs = append(locs, l)
	}
	log.Debug().Int("locations", len(locs)).Int("appraisers", len(owner)).Msg("data store loaded")
	return New(locs), nil
}

func check(l domain.Location, owner map[string]string) error {
	if err := validate.Struct(l); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("%w: %s failed %q", domain.ErrInvalid, ve[0].Namespace(), ve[0].Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	slugs := make(map[string]bool, len(l.Appraisers))
	for _, a := range l.Appraisers {
		if prev, ok := owner[a.ID]; ok {
			return fmt.Errorf("%w: %q already in %s", ErrDuplicateID, a.ID, prev)
		}
		owner[a.ID] = l.Key
		if slugs[a.Slug] {
			return fmt.Errorf("%w: %q", ErrDuplicateSlug, a.Slug)
		}
		slugs[a.Slug] = true

		for _, r := range a.Reviews {
			if !domain.OnHalfPointGrid(r.Rating) {
				log.Warn().Str("location", l.Key).Str("id", a.ID).Str("author", r.Author).
					Float64("rating", r.Rating).Msg("review rating not on half-point grid")
			}
		}
	}
	return nil
}
