// Package fixup post-processes a built static site. Every transform is
// idempotent: it compares before writing and only touches changed files.
package fixup

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"appraiser_directory/internal/adapters/observability"
)

// Result counts what one fixup run did.
type Result struct {
	Scanned  int      `json:"scanned"`
	Changed  int      `json:"changed"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *Result) warn(msg string) { r.Warnings = append(r.Warnings, msg) }

func (r Result) observe(name string) Result {
	observability.ObserveFixup(name, r.Scanned, r.Changed, r.Skipped)
	log.Info().
		Str("fixup", name).
		Int("scanned", r.Scanned).
		Int("changed", r.Changed).
		Int("skipped", r.Skipped).
		Int("warnings", len(r.Warnings)).
		Msg("fixup finished")
	return r
}

// htmlFiles lists every *.html file under root in lexical order.
func htmlFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".html") {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// rewriteFile applies fn to the file at p and writes the result back when it
// differs. It reports whether the content changed.
func rewriteFile(p string, dryRun bool, fn func([]byte) []byte) (bool, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return false, err
	}
	out := fn(b)
	if bytes.Equal(b, out) {
		return false, nil
	}
	if dryRun {
		return true, nil
	}
	st, err := os.Stat(p)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(p, out, st.Mode().Perm())
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

// copyDir copies the tree at src to dst, which must not exist yet. The copy
// is staged in a sibling and renamed into place, so a failed copy leaves no
// partial dst behind for the next run to mistake as complete.
func copyDir(src, dst string) error {
	tmp := dst + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return err
	}
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(tmp, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
	if err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	st, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
