package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vbonduro/pingallery/internal/collection"
	"github.com/vbonduro/pingallery/internal/describe"
	"github.com/vbonduro/pingallery/internal/domain"
)

// describeTimeout bounds one call to the description backend.
const describeTimeout = 60 * time.Second

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections := s.collections.List(r.Context())
	if collections == nil {
		collections = []domain.Collection{}
	}
	s.writeJSON(w, http.StatusOK, collections)
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var in collection.Input
	if err := decodeBody(w, r, &in); err != nil {
		s.writeCollectionError(w, r, err)
		return
	}
	in, err := collection.ValidateInput(in)
	if err != nil {
		s.writeCollectionError(w, r, err)
		return
	}

	c, err := s.collections.Create(r.Context(), in.Name, in.Description, in.Photos...)
	if err != nil {
		s.writeCollectionError(w, r, err)
		return
	}
	s.notifier.CollectionsChanged()

	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupCollection(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCollection(w http.ResponseWriter, r *http.Request) {
	var patch collection.Patch
	if err := decodeBody(w, r, &patch); err != nil {
		s.writeCollectionError(w, r, err)
		return
	}
	patch, err := collection.ValidatePatch(patch)
	if err != nil {
		s.writeCollectionError(w, r, err)
		return
	}

	c, err := s.collections.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeCollectionError(w, r, err)
		return
	}
	s.notifier.CollectionsChanged()

	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupCollection(w, r)
	if !ok {
		return
	}

	if err := s.collections.Delete(r.Context(), c.ID); err != nil {
		s.writeCollectionError(w, r, err)
		return
	}
	s.notifier.CollectionsChanged()

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAddPhoto(w http.ResponseWriter, r *http.Request) {
	var photo domain.Photo
	if err := decodeBody(w, r, &photo); err != nil {
		s.writeCollectionError(w, r, err)
		return
	}
	if strings.TrimSpace(photo.ID) == "" {
		s.writeCollectionError(w, r, &collection.ValidationError{Fields: []collection.FieldError{
			{Field: "id", Message: "photo id is required"},
		}})
		return
	}

	c, err := s.collections.AddPhoto(r.Context(), r.PathValue("id"), photo)
	if err != nil {
		s.writeCollectionError(w, r, err)
		return
	}
	s.notifier.CollectionsChanged()

	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	c, err := s.collections.RemovePhoto(r.Context(), r.PathValue("id"), r.PathValue("photoId"))
	if err != nil {
		s.writeCollectionError(w, r, err)
		return
	}
	s.notifier.CollectionsChanged()

	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDescribeCollection(w http.ResponseWriter, r *http.Request) {
	if s.describer == nil {
		s.writeError(w, http.StatusNotImplemented, "Collection descriptions are not configured")
		return
	}

	c, ok := s.lookupCollection(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), describeTimeout)
	defer cancel()

	desc, err := s.describer.Describe(ctx, *c)
	switch {
	case errors.Is(err, describe.ErrEmptyCollection):
		s.writeError(w, http.StatusBadRequest, "Collection has no photos to describe")
		return
	case err != nil:
		s.logger.Error("describe collection failed", "collection_id", c.ID, "error", err)
		s.writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   "Failed to describe collection",
			Message: err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"description": desc})
}

// lookupCollection loads the {id} collection, writing a 404 or 500 response
// and returning false when it cannot be served.
func (s *Server) lookupCollection(w http.ResponseWriter, r *http.Request) (*domain.Collection, bool) {
	id := r.PathValue("id")
	c, err := s.collections.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("get collection failed", "collection_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load collections")
		return nil, false
	}
	if c == nil {
		s.writeError(w, http.StatusNotFound, "Collection not found")
		return nil, false
	}
	return c, true
}
