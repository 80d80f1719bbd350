package report

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"appraiser_directory/internal/adapters/observability"
	"appraiser_directory/internal/domain"
)

const DefaultImageReport = "image-coverage-report.json"

// PlaceholderMarkers mark image URLs that are invalid without a request.
var PlaceholderMarkers = []string{"placeholder", "default-image", "no-image"}

type ImageOptions struct {
	Prober    domain.ImageProber
	BatchSize int           // default 5
	Timeout   time.Duration // per check; default 10s
	Now       func() time.Time
}

type MissingImage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Reason   string `json:"reason"`
}

type CityCoverage struct {
	City     string         `json:"city"`
	Name     string         `json:"name"`
	Total    int            `json:"total"`
	Valid    int            `json:"valid"`
	Invalid  int            `json:"invalid"`
	Coverage float64        `json:"coveragePercent"`
	Missing  []MissingImage `json:"missing,omitempty"`
}

type ImageReport struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Total       int            `json:"total"`
	Valid       int            `json:"valid"`
	Invalid     int            `json:"invalid"`
	Coverage    float64        `json:"coveragePercent"`
	Cities      []CityCoverage `json:"cities"`
}

// placeholderReason is "" for URLs that need a network check.
func placeholderReason(url string) string {
	u := strings.TrimSpace(url)
	if u == "" {
		return "empty"
	}
	low := strings.ToLower(u)
	for _, m := range PlaceholderMarkers {
		if strings.Contains(low, m) {
			return "placeholder"
		}
	}
	return ""
}

type imageJob struct {
	city int
	a    *domain.Appraiser
	ok   bool
	why  string
}

// ImageCoverage checks every appraiser image. Checks run concurrently inside
// fixed-size batches and each batch completes before the next starts. A
// failed or timed out check counts as invalid and is never retried.
func ImageCoverage(ctx context.Context, locs []domain.Location, opts ImageOptions) (ImageReport, error) {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 5
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	var jobs []*imageJob
	for ci := range locs {
		for ai := range locs[ci].Appraisers {
			j := &imageJob{city: ci, a: &locs[ci].Appraisers[ai]}
			if why := placeholderReason(j.a.ImageURL); why != "" {
				j.why = why
				observability.ObserveImageCheck("placeholder")
			}
			jobs = append(jobs, j)
		}
	}

	for start := 0; start < len(jobs); start += batch {
		if err := ctx.Err(); err != nil {
			return ImageReport{}, err
		}
		end := min(start+batch, len(jobs))
		var g errgroup.Group
		for _, j := range jobs[start:end] {
			if j.why != "" {
				continue
			}
			g.Go(func() error {
				cctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				ok, err := opts.Prober.Exists(cctx, j.a.ImageURL)
				switch {
				case err != nil:
					j.why = err.Error()
				case !ok:
					j.why = "not found"
				default:
					j.ok = true
				}
				if j.ok {
					observability.ObserveImageCheck("valid")
				} else {
					observability.ObserveImageCheck("invalid")
					log.Debug().Str("id", j.a.ID).Str("url", j.a.ImageURL).Str("reason", j.why).Msg("image check failed")
				}
				return nil
			})
		}
		_ = g.Wait()
		log.Debug().Int("checked", end).Int("total", len(jobs)).Msg("image batch done")
	}

	rep := ImageReport{GeneratedAt: now().UTC(), Cities: make([]CityCoverage, len(locs))}
	for ci, l := range locs {
		rep.Cities[ci] = CityCoverage{City: l.Key, Name: l.Name()}
	}
	for _, j := range jobs {
		c := &rep.Cities[j.city]
		c.Total++
		if j.ok {
			c.Valid++
			continue
		}
		c.Invalid++
		c.Missing = append(c.Missing, MissingImage{ID: j.a.ID, Name: j.a.Name, ImageURL: j.a.ImageURL, Reason: j.why})
	}
	for i := range rep.Cities {
		c := &rep.Cities[i]
		c.Coverage = percent(c.Valid, c.Total)
		rep.Total += c.Total
		rep.Valid += c.Valid
		rep.Invalid += c.Invalid
	}
	rep.Coverage = percent(rep.Valid, rep.Total)
	sort.SliceStable(rep.Cities, func(i, k int) bool {
		if rep.Cities[i].Coverage != rep.Cities[k].Coverage {
			return rep.Cities[i].Coverage < rep.Cities[k].Coverage
		}
		return rep.Cities[i].City < rep.Cities[k].City
	})

	log.Info().
		Int("total", rep.Total).
		Int("valid", rep.Valid).
		Int("invalid", rep.Invalid).
		Float64("coverage", rep.Coverage).
		Msg("image coverage computed")
	return rep, nil
}
