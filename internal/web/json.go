package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vbonduro/pingallery/internal/collection"
)

// maxBodySize bounds request bodies. Collections carry photo metadata only.
const maxBodySize = 1 << 20

type errorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message,omitempty"`
	Details []collection.FieldError `json:"details,omitempty"`
	Path    string                  `json:"path,omitempty"`
	Method  string                  `json:"method,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// decodeBody reads a JSON body into v. A malformed body is reported as a
// validation failure on the "body" field.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &collection.ValidationError{Fields: []collection.FieldError{
			{Field: "body", Message: "must be a valid JSON object"},
		}}
	}
	return nil
}

// writeCollectionError maps collection errors onto the API's error shapes.
func (s *Server) writeCollectionError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *collection.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid data", Details: verr.Fields})
	case errors.Is(err, collection.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Collection not found")
	default:
		s.logger.Error("collection write failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save collections")
	}
}
