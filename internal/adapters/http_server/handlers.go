// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"appraiser_directory/internal/app"
	"appraiser_directory/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/locations/{slug}", h.getLocation)
	s.mux.Get("/v1/locations/{slug}/appraisers/{appraiserSlug}", h.getAppraiserInCity)
	s.mux.Get("/v1/appraisers/{id}", h.getAppraiser)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeLookupError maps query errors; only ErrNotFound is a client problem.
func writeLookupError(w http.ResponseWriter, err error, detail string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", detail)
		return
	}
	log.Error().Err(err).Msg("lookup failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) getLocation(w http.ResponseWriter, r *http.Request) {
	l, err := h.Q.GetLocation(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeLookupError(w, err, "location not found")
		return
	}
	writeCached(w, r, l)
}

func (h *Handlers) getAppraiser(w http.ResponseWriter, r *http.Request) {
	a, err := h.Q.GetAppraiser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLookupError(w, err, "appraiser not found")
		return
	}
	writeCached(w, r, a)
}

func (h *Handlers) getAppraiserInCity(w http.ResponseWriter, r *http.Request) {
	a, err := h.Q.GetAppraiserBySlug(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "appraiserSlug"))
	if err != nil {
		writeLookupError(w, err, "appraiser not found in location")
		return
	}
	writeCached(w, r, a)
}
