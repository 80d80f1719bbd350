package fixup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"appraiser_directory/internal/domain"
)

const htaccessRules = `# Generated by sitetool fix-appraiser-dirs. Do not edit.
RewriteEngine On
RewriteBase /

# Directory-style appraiser and location URLs serve their index.html.
RewriteCond %{REQUEST_FILENAME} !-f
RewriteRule ^(appraiser|location)/([^/]+)/?$ /$1/$2/index.html [L]

# Everything else that is not a file or directory falls back to the app shell.
RewriteCond %{REQUEST_FILENAME} !-f
RewriteCond %{REQUEST_FILENAME} !-d
RewriteRule . /index.html [L]
`

const deployRedirect = `
[[redirects]]
  from = "/appraiser/:id"
  to = "/appraiser/:id/index.html"
  status = 200
`

type DirOptions struct {
	PublicDir string
	Store     domain.LocationStore
	// DeployConfig is the deploy config file that receives the redirect
	// block (netlify.toml); "" skips it.
	DeployConfig string
	DryRun       bool
}

// DuplicateAppraiserDirs makes every appraiser servable under both
// appraiser/<slug>/ and appraiser/<id>/, then writes the .htaccess rewrite
// rules and the deploy redirect.
func DuplicateAppraiserDirs(ctx context.Context, opts DirOptions) (Result, error) {
	var res Result
	if !isDir(opts.PublicDir) {
		return res, fmt.Errorf("public dir %q: not a directory", opts.PublicDir)
	}
	base := filepath.Join(opts.PublicDir, "appraiser")

	// appraiser/<slug>/ is one namespace for every city
	owners := map[string]int{}
	for _, loc := range opts.Store.Locations() {
		for _, a := range loc.Appraisers {
			owners[a.Slug]++
		}
	}

	for _, loc := range opts.Store.Locations() {
		for _, a := range loc.Appraisers {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			res.Scanned++
			if a.Slug == a.ID {
				continue
			}
			if n := owners[a.Slug]; n > 1 {
				log.Warn().Str("location", loc.Key).Str("id", a.ID).Str("slug", a.Slug).Int("owners", n).Msg("slug shared across cities")
				res.warn(fmt.Sprintf("slug %s of appraiser %s is shared by %d appraisers; not duplicated", a.Slug, a.ID, n))
				res.Skipped++
				continue
			}
			bySlug := filepath.Join(base, a.Slug)
			byID := filepath.Join(base, a.ID)
			hasSlug, hasID := isDir(bySlug), isDir(byID)

			var src, dst string
			switch {
			case hasSlug && hasID:
				continue
			case hasSlug:
				src, dst = bySlug, byID
			case hasID:
				src, dst = byID, bySlug
			default:
				msg := fmt.Sprintf("no output directory for appraiser %s (slug %s) in %s", a.ID, a.Slug, loc.Key)
				log.Warn().Str("location", loc.Key).Str("id", a.ID).Str("slug", a.Slug).Msg("appraiser directory missing")
				res.warn(msg)
				res.Skipped++
				continue
			}

			res.Changed++
			if opts.DryRun {
				log.Info().Str("from", src).Str("to", dst).Msg("would copy appraiser directory")
				continue
			}
			if err := copyDir(src, dst); err != nil {
				return res, fmt.Errorf("copy %s -> %s: %w", src, dst, err)
			}
			log.Debug().Str("from", src).Str("to", dst).Msg("appraiser directory copied")
		}
	}

	if err := writeHtaccess(filepath.Join(opts.PublicDir, ".htaccess"), opts.DryRun); err != nil {
		return res, err
	}
	if opts.DeployConfig != "" {
		if err := appendDeployRedirect(opts.DeployConfig, opts.DryRun); err != nil {
			return res, err
		}
	}
	return res.observe("appraiser_dirs"), nil
}

func writeHtaccess(p string, dryRun bool) error {
	cur, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if string(cur) == htaccessRules || dryRun {
		return nil
	}
	log.Info().Str("path", p).Msg("writing rewrite rules")
	return os.WriteFile(p, []byte(htaccessRules), 0o644)
}

// appendDeployRedirect appends the redirect block unless it is already there.
// A missing config file is created.
func appendDeployRedirect(p string, dryRun bool) error {
	cur, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if strings.Contains(string(cur), strings.TrimSpace(deployRedirect)) {
		log.Debug().Str("path", p).Msg("deploy redirect already present")
		return nil
	}
	if dryRun {
		log.Info().Str("path", p).Msg("would append deploy redirect")
		return nil
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(deployRedirect); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
