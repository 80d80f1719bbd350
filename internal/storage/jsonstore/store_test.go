package jsonstore_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"appraiser_directory/internal/domain"
	"appraiser_directory/internal/storage/jsonstore"
)

func mustEmbedded(t *testing.T) *jsonstore.Store {
	t.Helper()
	s, err := jsonstore.Embedded()
	if err != nil {
		t.Fatalf("load embedded data: %v", err)
	}
	return s
}

func TestNormalizeSlug(t *testing.T) {
	cases := map[string]string{
		"San Francisco":      "san-francisco",
		"san-francisco":      "san-francisco",
		"  san   francisco ": "san-francisco",
		"NEW\tYORK\nCITY":    "new-york-city",
		"":                   "",
		"   ":                "",
	}
	for in, want := range cases {
		if got := jsonstore.NormalizeSlug(in); got != want {
			t.Errorf("NormalizeSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetLocation_CaseAndWhitespaceInsensitive(t *testing.T) {
	s := mustEmbedded(t)

	a := s.GetLocation("San Francisco")
	if a == nil {
		t.Fatalf("expected San Francisco to resolve")
	}
	for _, in := range []string{"san-francisco", "  san   francisco ", "SAN FRANCISCO"} {
		got := s.GetLocation(in)
		if got == nil {
			t.Fatalf("GetLocation(%q) = nil", in)
		}
		if got.Key != a.Key {
			t.Fatalf("GetLocation(%q) = %s, want %s", in, got.Key, a.Key)
		}
	}
	// idempotent
	if again := s.GetLocation("San Francisco"); again != a {
		t.Fatalf("second lookup returned a different record")
	}
}

func TestGetLocation_EmptyAndUnknown(t *testing.T) {
	s := mustEmbedded(t)
	for _, in := range []string{"", "   ", "atlantis"} {
		if got := s.GetLocation(in); got != nil {
			t.Fatalf("GetLocation(%q) = %s, want nil", in, got.Key)
		}
	}
}

func TestGetLocation_FallbackOrder(t *testing.T) {
	s := mustEmbedded(t)

	// SEO area-served name
	if l := s.GetLocation("new york city"); l == nil || l.Key != "new-york" {
		t.Fatalf("area served lookup failed: %+v", l)
	}
	// city field
	if l := s.GetLocation("new-york"); l == nil || l.Key != "new-york" {
		t.Fatalf("city field lookup failed: %+v", l)
	}
	// first appraiser's city; kansas-city.json has no city or seo
	if l := s.GetLocation("Kansas City"); l == nil || l.Key != "kansas-city" {
		t.Fatalf("first appraiser lookup failed: %+v", l)
	}
}

func TestGetLocation_PrecedenceAcrossLocations(t *testing.T) {
	// "alpha" declares springfield only through its first appraiser,
	// "beta" declares it as the SEO area; store order decides.
	s := jsonstore.New([]domain.Location{
		{Key: "alpha", City: "Shelbyville", Appraisers: []domain.Appraiser{
			{ID: "a1", Slug: "a1", Name: "A", Address: domain.Address{City: "Springfield"}},
		}},
		{Key: "beta", SEO: domain.SEO{Schema: domain.Schema{AreaServed: domain.AreaServed{Name: "Springfield"}}}},
	})
	if l := s.GetLocation("springfield"); l == nil || l.Key != "alpha" {
		t.Fatalf("expected first location in store order, got %+v", l)
	}
}

func TestGetAppraiser(t *testing.T) {
	s := mustEmbedded(t)

	a := s.GetAppraiser("columbus-columbus-antique-appraisals")
	if a == nil {
		t.Fatalf("expected appraiser")
	}
	want := struct {
		Name        string
		Rating      float64
		ReviewCount int
	}{"Columbus Antique Appraisals", 4.2, 14}
	got := struct {
		Name        string
		Rating      float64
		ReviewCount int
	}{a.Name, deref(a.Business.Rating), a.Business.ReviewCount}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("appraiser mismatch (-want +got):\n%s", diff)
	}

	if s.GetAppraiser("") != nil {
		t.Fatalf("empty id should resolve to nil")
	}
	// slugs are not ids
	if s.GetAppraiser("columbus-antique-appraisals") != nil {
		t.Fatalf("slug must not resolve through GetAppraiser")
	}
}

func TestLoad_Validation(t *testing.T) {
	doc := func(body string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(body)} }

	t.Run("duplicate id across cities", func(t *testing.T) {
		fsys := fstest.MapFS{
			"a.json": doc(`{"appraisers":[{"id":"x","slug":"x","name":"X"}]}`),
			"b.json": doc(`{"appraisers":[{"id":"x","slug":"y","name":"Y"}]}`),
		}
		if _, err := jsonstore.Load(fsys, "."); !errors.Is(err, jsonstore.ErrDuplicateID) {
			t.Fatalf("err = %v, want ErrDuplicateID", err)
		}
	})

	t.Run("duplicate slug within city", func(t *testing.T) {
		fsys := fstest.MapFS{
			"a.json": doc(`{"appraisers":[{"id":"x","slug":"s","name":"X"},{"id":"y","slug":"s","name":"Y"}]}`),
		}
		if _, err := jsonstore.Load(fsys, "."); !errors.Is(err, jsonstore.ErrDuplicateSlug) {
			t.Fatalf("err = %v, want ErrDuplicateSlug", err)
		}
	})

	t.Run("same slug in two cities is fine", func(t *testing.T) {
		fsys := fstest.MapFS{
			"a.json": doc(`{"appraisers":[{"id":"a-s","slug":"s","name":"X"}]}`),
			"b.json": doc(`{"appraisers":[{"id":"b-s","slug":"s","name":"Y"}]}`),
		}
		s, err := jsonstore.Load(fsys, ".")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if diff := cmp.Diff([]string{"a", "b"}, s.Keys()); diff != "" {
			t.Fatalf("keys (-want +got):\n%s", diff)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		fsys := fstest.MapFS{"a.json": doc(`{"appraisers":[{"slug":"s","name":"X"}]}`)}
		if _, err := jsonstore.Load(fsys, "."); !errors.Is(err, domain.ErrInvalid) {
			t.Fatalf("err = %v, want ErrInvalid", err)
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		fsys := fstest.MapFS{"a.json": doc(`{"appraisers":[{"id":"x","slug":"x","name":"X","business":{"rating":7}}]}`)}
		if _, err := jsonstore.Load(fsys, "."); !errors.Is(err, domain.ErrInvalid) {
			t.Fatalf("err = %v, want ErrInvalid", err)
		}
	})

	t.Run("no documents", func(t *testing.T) {
		if _, err := jsonstore.Load(fstest.MapFS{}, "."); !errors.Is(err, jsonstore.ErrNoDocuments) {
			t.Fatalf("err = %v, want ErrNoDocuments", err)
		}
	})
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
