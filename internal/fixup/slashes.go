package fixup

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var DefaultRoutePrefixes = []string{"/appraiser/", "/location/"}

type SlashOptions struct {
	PublicDir string
	// Domain is the canonical origin, e.g. https://example.com.
	Domain        string
	RoutePrefixes []string
	DryRun        bool
}

var (
	linkTag      = regexp.MustCompile(`(?is)<link\b[^>]*>`)
	metaTag      = regexp.MustCompile(`(?is)<meta\b[^>]*>`)
	anchorTag    = regexp.MustCompile(`(?is)<a\b[^>]*>`)
	relCanonical = regexp.MustCompile(`(?i)\srel\s*=\s*["']?canonical["'\s/>]`)
	urlMetaName  = regexp.MustCompile(`(?i)\s(?:property|name)\s*=\s*["']?(?:og:url|twitter:url)["'\s/>]`)
	hrefAttr     = attrPattern("href")
	contentAttr  = attrPattern("content")
	ldJSONBlock  = regexp.MustCompile(`(?is)(<script\b[^>]*type\s*=\s*["']?application/ld\+json["']?[^>]*>)(.*?)(</script>)`)
	ldURLField   = regexp.MustCompile(`("(?:url|item)"\s*:\s*")([^"]*)(")`)
)

// attrPattern captures an attribute value in group 2 (double quoted),
// 3 (single quoted) or 4 (bare).
func attrPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(\s` + name + `\s*=\s*)(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
}

func rewriteAttr(tag string, re *regexp.Regexp, fn func(string) string) string {
	m := re.FindStringSubmatchIndex(tag)
	if m == nil {
		return tag
	}
	for g := 2; g <= 4; g++ {
		if s, e := m[2*g], m[2*g+1]; s >= 0 {
			return tag[:s] + fn(tag[s:e]) + tag[e:]
		}
	}
	return tag
}

// slashRewriter appends trailing slashes to directory-style URLs and pins
// URLs on the canonical host to the canonical origin.
type slashRewriter struct {
	origin   string // scheme://host[:port] without trailing slash
	host     string // hostname only
	prefixes []string
}

func newSlashRewriter(domain string, prefixes []string) (slashRewriter, error) {
	u, err := url.Parse(strings.TrimSpace(domain))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return slashRewriter{}, fmt.Errorf("domain %q: want an absolute URL like https://example.com", domain)
	}
	if len(prefixes) == 0 {
		prefixes = DefaultRoutePrefixes
	}
	return slashRewriter{
		origin:   strings.ToLower(u.Scheme) + "://" + u.Host,
		host:     u.Hostname(),
		prefixes: prefixes,
	}, nil
}

// URL rewrites one URL value. Relative paths that are not root-relative and
// absolute URLs on other hosts come back unchanged.
func (w slashRewriter) URL(raw string) string {
	for _, scheme := range []string{"https://", "http://", "//"} {
		if len(raw) < len(scheme) || !strings.EqualFold(raw[:len(scheme)], scheme) {
			continue
		}
		rest := raw[len(scheme):]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		host := rest[:end]
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if !strings.EqualFold(host, w.host) {
			return raw
		}
		return w.origin + withTrailingSlash(rest[end:])
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return withTrailingSlash(raw)
	}
	return raw
}

func (w slashRewriter) internalRoute(href string) bool {
	for _, p := range w.prefixes {
		if strings.HasPrefix(href, p) {
			return true
		}
	}
	return false
}

// withTrailingSlash appends "/" to a directory-style path, keeping any query
// or fragment after it. An empty path becomes "/".
func withTrailingSlash(s string) string {
	cut := strings.IndexAny(s, "?#")
	if cut < 0 {
		cut = len(s)
	}
	p, suffix := s[:cut], s[cut:]
	switch {
	case p == "":
		return "/" + suffix
	case strings.HasSuffix(p, "/"), path.Ext(p) != "":
		return s
	}
	return p + "/" + suffix
}

func (w slashRewriter) Rewrite(doc string) string {
	doc = linkTag.ReplaceAllStringFunc(doc, func(tag string) string {
		if !relCanonical.MatchString(tag) {
			return tag
		}
		return rewriteAttr(tag, hrefAttr, w.URL)
	})
	doc = metaTag.ReplaceAllStringFunc(doc, func(tag string) string {
		if !urlMetaName.MatchString(tag) {
			return tag
		}
		return rewriteAttr(tag, contentAttr, w.URL)
	})
	doc = anchorTag.ReplaceAllStringFunc(doc, func(tag string) string {
		return rewriteAttr(tag, hrefAttr, func(v string) string {
			if !w.internalRoute(v) {
				return v
			}
			return w.URL(v)
		})
	})
	return ldJSONBlock.ReplaceAllStringFunc(doc, func(block string) string {
		m := ldJSONBlock.FindStringSubmatch(block)
		body := ldURLField.ReplaceAllStringFunc(m[2], func(field string) string {
			f := ldURLField.FindStringSubmatch(field)
			return f[1] + w.URL(f[2]) + f[3]
		})
		return m[1] + body + m[3]
	})
}

// NormalizeTrailingSlashes rewrites canonical links, og:url and twitter:url
// metas, internal route anchors and JSON-LD url fields in every HTML file.
func NormalizeTrailingSlashes(ctx context.Context, opts SlashOptions) (Result, error) {
	var res Result
	w, err := newSlashRewriter(opts.Domain, opts.RoutePrefixes)
	if err != nil {
		return res, err
	}
	if !isDir(opts.PublicDir) {
		return res, fmt.Errorf("public dir %q: not a directory", opts.PublicDir)
	}
	files, err := htmlFiles(opts.PublicDir)
	if err != nil {
		return res, err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Scanned++
		changed, err := rewriteFile(f, opts.DryRun, func(b []byte) []byte {
			return []byte(w.Rewrite(string(b)))
		})
		if err != nil {
			return res, fmt.Errorf("rewrite %s: %w", f, err)
		}
		if changed {
			res.Changed++
			log.Debug().Str("file", f).Bool("dry_run", opts.DryRun).Msg("trailing slashes normalized")
		}
	}
	return res.observe("trailing_slash"), nil
}
