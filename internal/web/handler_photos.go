package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vbonduro/pingallery/internal/unsplash"
)

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q, "page", unsplash.DefaultPage, 0)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid page", Message: err.Error()})
		return
	}
	perPage, err := intParam(q, "per_page", unsplash.DefaultPerPage, unsplash.MaxPerPage)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid per_page", Message: err.Error()})
		return
	}

	res, err := s.photos.Search(r.Context(), unsplash.SearchParams{
		Category: strings.TrimSpace(q.Get("category")),
		Page:     page,
		PerPage:  perPage,
		Query:    strings.TrimSpace(q.Get("query")),
	})
	if err != nil {
		s.logger.Error("photo search failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to fetch photos",
			Message: err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	photo, err := s.photos.Photo(r.Context(), id)
	if err != nil {
		s.logger.Error("get photo failed", "photo_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch photo")
		return
	}
	if photo == nil {
		s.writeError(w, http.StatusNotFound, "Photo not found")
		return
	}

	s.writeJSON(w, http.StatusOK, photo)
}

// intParam parses a positive integer query parameter. A missing parameter
// yields def; limit of 0 means unbounded.
func intParam(q url.Values, key string, def, limit int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	if limit > 0 && n > limit {
		return 0, fmt.Errorf("%s must be at most %d", key, limit)
	}
	return n, nil
}
