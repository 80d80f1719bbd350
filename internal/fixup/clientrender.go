package fixup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMarker = "__APPRAISILY_CLIENT_RENDER_ONLY__"

	// HydrationLog is logged by the bootstrap right before it hydrates; the
	// line after it reports completion.
	HydrationLog     = "Hydrating app"
	HydrationDoneLog = "Hydration complete"

	clientRenderLog     = "Rendering app (client-only)"
	clientRenderDoneLog = "Client render complete"
)

var (
	DefaultBundlePattern = regexp.MustCompile(`^(?:index|main|entry-client)(?:[-.][\w-]+)?\.js$`)

	ident       = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
	rootElement = regexp.MustCompile(`(?:\b(?:const|let|var)\s+|[,;{(]\s*)([A-Za-z_$][\w$]*)\s*=\s*document\.getElementById\(\s*["'][\w-]+["']\s*\)`)
	createOwner = regexp.MustCompile(`([A-Za-z_$][\w$]*)\.createRoot\b`)
)

type ClientRenderOptions struct {
	PublicDir string
	// AssetsDir is relative to PublicDir; "" means "assets".
	AssetsDir     string
	BundlePattern *regexp.Regexp
	Marker        string
	DryRun        bool
}

// PatchClientRender turns hydrating entry bundles into client-render-only
// ones. Bundles whose shape cannot be recognised are skipped and reported,
// never failed.
func PatchClientRender(ctx context.Context, opts ClientRenderOptions) (Result, error) {
	var res Result
	marker := opts.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	if !ident.MatchString(marker) {
		return res, fmt.Errorf("marker %q is not a valid identifier", marker)
	}
	pattern := opts.BundlePattern
	if pattern == nil {
		pattern = DefaultBundlePattern
	}
	assets := opts.AssetsDir
	if assets == "" {
		assets = "assets"
	}
	dir := filepath.Join(opts.PublicDir, assets)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return res, fmt.Errorf("read bundles: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if e.IsDir() || !pattern.MatchString(e.Name()) {
			continue
		}
		res.Scanned++
		p := filepath.Join(dir, e.Name())
		var reason string
		changed, err := rewriteFile(p, opts.DryRun, func(b []byte) []byte {
			out, why := patchBundle(string(b), marker)
			reason = why
			return []byte(out)
		})
		if err != nil {
			return res, fmt.Errorf("patch %s: %w", p, err)
		}
		switch {
		case reason != "":
			res.Skipped++
			res.warn(fmt.Sprintf("%s: %s", e.Name(), reason))
			log.Warn().Str("bundle", e.Name()).Str("reason", reason).Msg("bundle skipped")
		case changed:
			res.Changed++
			log.Info().Str("bundle", e.Name()).Bool("dry_run", opts.DryRun).Msg("bundle patched for client render")
		default:
			log.Debug().Str("bundle", e.Name()).Msg("no hydration marker")
		}
	}
	return res.observe("client_render"), nil
}

func markerDecl(marker string) string { return "const " + marker + "=!0;\n" }

// patchBundle returns the rewritten source, or src and a reason when the
// bundle hydrates but cannot be patched. A bundle without the hydration log
// is returned unchanged with no reason.
func patchBundle(src, marker string) (string, string) {
	if !strings.Contains(src, HydrationLog) || strings.HasPrefix(src, markerDecl(marker)) {
		return src, ""
	}
	rm := rootElement.FindStringSubmatch(src)
	if rm == nil {
		return src, "root element variable not found"
	}
	root := rm[1]
	cm := createOwner.FindStringSubmatch(src)
	if cm == nil {
		return src, "createRoot function not found"
	}
	hydrateCall := regexp.MustCompile(`([A-Za-z_$][\w$]*)\.hydrateRoot\(\s*` + regexp.QuoteMeta(root) + `\s*,\s*`)
	loc := hydrateCall.FindStringIndex(src)
	if loc == nil {
		return src, "hydrateRoot call not found"
	}

	var b strings.Builder
	b.Grow(len(src) + 128)
	b.WriteString(src[:loc[0]])
	fmt.Fprintf(&b, `(%s.innerHTML="",%s.createRoot(%s)).render(`, root, cm[1], root)
	b.WriteString(src[loc[1]:])
	out := b.String()

	out = strings.ReplaceAll(out, HydrationLog, clientRenderLog)
	out = strings.ReplaceAll(out, HydrationDoneLog, clientRenderDoneLog)
	if !strings.Contains(out, marker) {
		out = markerDecl(marker) + out
	}
	return out, ""
}
