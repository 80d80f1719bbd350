package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"appraiser_directory/internal/cli"
	"appraiser_directory/internal/shared"
)

func testConfig() shared.Config {
	return shared.Config{
		AppEnv:             "test",
		LogLevel:           "error",
		SiteURL:            "https://directory.example.com",
		StaleAssetPrefix:   "/directory",
		ClientRenderMarker: "__CLIENT_ONLY__",
		ImageBatchSize:     2,
		ImageTimeout:       time.Second,
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCmd(testConfig())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func write(t *testing.T, p, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

func TestFixAssets_DryRunLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	orig := `<script src="./assets/index-abc.js"></script>`
	write(t, page, orig)

	out, err := run(t, "fix-assets", "--public-dir", dir, "--dry-run")
	if err != nil {
		t.Fatalf("fix-assets: %v", err)
	}
	var res struct{ Scanned, Changed int }
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Scanned != 1 || res.Changed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	b, _ := os.ReadFile(page)
	if string(b) != orig {
		t.Fatalf("dry run modified the file: %s", b)
	}

	if _, err := run(t, "fix-assets", "--public-dir", dir); err != nil {
		t.Fatalf("fix-assets: %v", err)
	}
	b, _ = os.ReadFile(page)
	if !strings.Contains(string(b), `src="/assets/index-abc.js"`) {
		t.Fatalf("asset path not rewritten: %s", b)
	}
}

func TestVerifyClientEntry_FailsWithoutMarker(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "index.html"), `<html><head><script type="module" src="/assets/index-1.js"></script></head></html>`)
	write(t, filepath.Join(dir, "assets", "index-1.js"), `hydrateRoot(document.getElementById("root"),x)`)

	if _, err := run(t, "verify-client-entry", "--public-dir", dir); err == nil {
		t.Fatalf("expected verification to fail")
	}

	write(t, filepath.Join(dir, "assets", "index-1.js"), "const __CLIENT_ONLY__=!0;\nrender(x)")
	out, err := run(t, "verify-client-entry", "--public-dir", dir)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out, "client-render-only") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestAuditContent_WritesReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "audit.json")
	if _, err := run(t, "audit-content", "--out", out); err != nil {
		t.Fatalf("audit-content: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var rep struct {
		TotalAppraisers int            `json:"totalAppraisers"`
		IssueCounts     map[string]int `json:"issueCounts"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.TotalAppraisers == 0 || rep.IssueCounts["duplicate_reviews"] == 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestAuditContent_IssuesListedInOrder(t *testing.T) {
	data := t.TempDir()
	write(t, filepath.Join(data, "springfield.json"), `{"city":"Springfield","appraisers":[
		{"id":"s-1","slug":"one","name":"One",
		 "business":{"pricing":"Contact for pricing"},
		 "content":{"about":"We appraise [ITEM TYPE] here."},
		 "reviews":[{"author":"Lee","rating":5,"content":"Great."},{"author":"Lee","rating":5,"content":"Great."}]}]}`)
	out := filepath.Join(t.TempDir(), "audit.json")

	want := []string{"duplicate_reviews", "placeholder_about", "templated_pricing"}
	for range 5 {
		stdout, err := run(t, "audit-content", "--data-dir", data, "--out", out)
		if err != nil {
			t.Fatalf("audit-content: %v", err)
		}
		last := -1
		for _, issue := range want {
			i := strings.Index(stdout, issue)
			if i < 0 || i < last {
				t.Fatalf("issues not listed in order %v:\n%s", want, stdout)
			}
			last = i
		}
	}
}

func TestCheckImages_UsesDataDir(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.jpg" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer img.Close()

	data := t.TempDir()
	write(t, filepath.Join(data, "springfield.json"), `{"city":"Springfield","appraisers":[
		{"id":"s-1","slug":"one","name":"One","imageUrl":"`+img.URL+`/ok.jpg"},
		{"id":"s-2","slug":"two","name":"Two","imageUrl":"`+img.URL+`/gone.jpg"}]}`)
	out := filepath.Join(t.TempDir(), "images.json")

	stdout, err := run(t, "check-images", "--data-dir", data, "--out", out, "--batch-size", "1")
	if err != nil {
		t.Fatalf("check-images: %v", err)
	}
	if !strings.Contains(stdout, "1/2 images valid") {
		t.Fatalf("unexpected summary: %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("report not written: %v", err)
	}
}

func TestUnknownCommandAndBadDataDir(t *testing.T) {
	if _, err := run(t, "no-such-command"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if _, err := run(t, "audit-content", "--data-dir", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected data dir error")
	}
}
