//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "appraiser_directory/internal/adapters/http_server"
	redisad "appraiser_directory/internal/adapters/redis"
	"appraiser_directory/internal/app"
	"appraiser_directory/internal/domain"
	"appraiser_directory/internal/storage/jsonstore"
	mysqlrepo "appraiser_directory/internal/storage/mysql"
)

// ---------- helpers ----------
func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// newAPI wires the real router over the embedded store and a miniredis cache.
func newAPI(t *testing.T) (*httptest.Server, *miniredis.Miniredis, *jsonstore.Store) {
	t.Helper()
	store, err := jsonstore.Embedded()
	if err != nil {
		t.Fatalf("embedded store: %v", err)
	}
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: app.NewQueryService(store, cache, time.Minute)})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, mr, store
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK && dst != nil {
		if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return res.StatusCode
}

// ---------- the tests ----------
func TestHTTP_EndToEnd_LocationThroughCache(t *testing.T) {
	ts, mr, _ := newAPI(t)

	var loc domain.Location
	if code := getJSON(t, ts.URL+"/v1/locations/New%20York%20City", &loc); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if loc.Key != "new-york" {
		t.Fatalf("resolved %q, want new-york", loc.Key)
	}
	if !mr.Exists(redisad.Prefix + "location:new-york-city") {
		t.Fatalf("location was not cached; keys: %v", mr.Keys())
	}

	// second call is served from redis
	var again domain.Location
	if code := getJSON(t, ts.URL+"/v1/locations/new-york-city", &again); code != http.StatusOK || again.Key != loc.Key {
		t.Fatalf("cached lookup failed: %d %+v", code, again.Key)
	}

	if code := getJSON(t, ts.URL+"/v1/locations/atlantis", nil); code != http.StatusNotFound {
		t.Fatalf("unknown city status %d", code)
	}
}

func TestHTTP_EndToEnd_AppraiserSlugWithinCity(t *testing.T) {
	ts, _, _ := newAPI(t)

	var a domain.Appraiser
	url := ts.URL + "/v1/locations/columbus/appraisers/columbus-antique-appraisals"
	if code := getJSON(t, url, &a); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if a.ID != "columbus-columbus-antique-appraisals" || a.Business.Rating == nil || *a.Business.Rating != 4.2 || a.Business.ReviewCount != 14 {
		t.Fatalf("unexpected appraiser: %+v", a)
	}
}

func TestIngest_MySQL_MatchesStore(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=directory",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "directory")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)

	store, err := jsonstore.Embedded()
	if err != nil {
		t.Fatalf("embedded store: %v", err)
	}
	repo := mysqlrepo.New(db)
	ing := app.NewIngestionService(repo, nil)
	ctx := context.Background()
	for _, l := range store.Locations() {
		if err := ing.IngestLocation(ctx, l); err != nil {
			t.Fatalf("ingest %s: %v", l.Key, err)
		}
	}
	// re-running is an upsert, not a duplicate insert
	for _, l := range store.Locations() {
		if err := ing.IngestLocation(ctx, l); err != nil {
			t.Fatalf("re-ingest %s: %v", l.Key, err)
		}
	}

	want := store.GetAppraiser("columbus-columbus-antique-appraisals")
	row, err := repo.GetAppraiser(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetAppraiser: %v", err)
	}
	if row.Rating == nil || want.Business.Rating == nil || *row.Rating != *want.Business.Rating || row.ReviewCount != want.Business.ReviewCount {
		t.Fatalf("row %+v does not match store record", row)
	}

	var reviews int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE appraiser_id = ?`, want.ID).Scan(&reviews); err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	if reviews != len(want.Reviews) {
		t.Fatalf("reviews = %d, want %d", reviews, len(want.Reviews))
	}
}
