package fixup

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

type AssetOptions struct {
	PublicDir   string
	StalePrefix string // e.g. "/directory"; "" rewrites relative forms only
	DryRun      bool
}

// assetPattern matches a stale or relative prefix in front of assets/ when it
// starts an attribute value, a quoted string or a CSS url().
func assetPattern(stale string) *regexp.Regexp {
	alts := []string{`(?:\.{1,2}/)+`}
	if s := strings.TrimRight(stale, "/"); s != "" {
		alts = append([]string{regexp.QuoteMeta(s) + `/`}, alts...)
	}
	return regexp.MustCompile(`(["'(=])(?:` + strings.Join(alts, "|") + `)assets/`)
}

// FixAssetPaths rewrites stale asset prefixes in every HTML file to the
// root-relative /assets/.
func FixAssetPaths(ctx context.Context, opts AssetOptions) (Result, error) {
	var res Result
	if !isDir(opts.PublicDir) {
		return res, fmt.Errorf("public dir %q: not a directory", opts.PublicDir)
	}
	files, err := htmlFiles(opts.PublicDir)
	if err != nil {
		return res, err
	}
	re := assetPattern(opts.StalePrefix)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Scanned++
		changed, err := rewriteFile(f, opts.DryRun, func(b []byte) []byte {
			return re.ReplaceAll(b, []byte("${1}/assets/"))
		})
		if err != nil {
			return res, fmt.Errorf("rewrite %s: %w", f, err)
		}
		if changed {
			res.Changed++
			log.Debug().Str("file", f).Bool("dry_run", opts.DryRun).Msg("asset paths fixed")
		}
	}
	return res.observe("asset_paths"), nil
}
