package fixup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

var (
	ErrNoEntryScript = errors.New("no module script in entry html")
	ErrMarkerMissing = errors.New("client-render-only marker missing from entry bundle")
)

type VerifyOptions struct {
	PublicDir string
	// EntryHTML is relative to PublicDir; "" means index.html.
	EntryHTML string
	Marker    string
}

// VerifyClientEntry checks that the bundle loaded by the entry page carries
// the client-render-only marker. It is a release gate: any error must fail
// the build.
func VerifyClientEntry(ctx context.Context, opts VerifyOptions) (string, error) {
	entry := opts.EntryHTML
	if entry == "" {
		entry = "index.html"
	}
	marker := opts.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	page, err := os.ReadFile(filepath.Join(opts.PublicDir, entry))
	if err != nil {
		return "", fmt.Errorf("read entry html: %w", err)
	}
	src, err := firstModuleScript(bytes.NewReader(page))
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	bundle := filepath.Join(opts.PublicDir, filepath.FromSlash(bundlePath(src)))
	b, err := os.ReadFile(bundle)
	if err != nil {
		return "", fmt.Errorf("read entry bundle: %w", err)
	}
	if !bytes.Contains(b, []byte(marker)) {
		return bundle, fmt.Errorf("%w: %s", ErrMarkerMissing, bundle)
	}
	log.Info().Str("bundle", bundle).Str("marker", marker).Msg("client entry verified")
	return bundle, nil
}

// bundlePath strips query, fragment and an origin-relative leading slash.
func bundlePath(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	return strings.TrimPrefix(src, "/")
}

func firstModuleScript(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return "", ErrNoEntryScript
			}
			return "", z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			if t.Data != "script" {
				continue
			}
			var typ, src string
			for _, a := range t.Attr {
				switch a.Key {
				case "type":
					typ = strings.ToLower(strings.TrimSpace(a.Val))
				case "src":
					src = strings.TrimSpace(a.Val)
				}
			}
			if typ == "module" && src != "" {
				return src, nil
			}
		}
	}
}
