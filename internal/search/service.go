package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/pingallery/internal/domain"
	"github.com/vbonduro/pingallery/internal/unsplash"
)

// Searcher returns one page of photos. It is satisfied by *unsplash.Client,
// *HTTPClient, and *Service.
type Searcher interface {
	Search(ctx context.Context, params unsplash.SearchParams) (*domain.SearchResult, error)
}

// photoRepository is the subset of store.PhotoStore that Service requires.
type photoRepository interface {
	Upsert(ctx context.Context, photos []domain.Photo) error
	GetByID(ctx context.Context, id string) (*domain.Photo, error)
}

// Service proxies searches upstream and remembers every photo it has returned
// so it can be fetched again by id.
type Service struct {
	upstream Searcher
	photos   photoRepository
	logger   *slog.Logger
}

func NewService(upstream Searcher, photos photoRepository, logger *slog.Logger) *Service {
	return &Service{
		upstream: upstream,
		photos:   photos,
		logger:   logger,
	}
}

func (s *Service) Search(ctx context.Context, params unsplash.SearchParams) (*domain.SearchResult, error) {
	res, err := s.upstream.Search(ctx, params)
	if err != nil {
		s.logger.Error("photo search failed",
			"category", params.Category,
			"page", params.Page,
			"query", params.Query,
			"error", err,
		)
		return nil, err
	}

	if err := s.photos.Upsert(ctx, res.Photos); err != nil {
		s.logger.Warn("failed to cache photos", "count", len(res.Photos), "error", err)
	}

	s.logger.Debug("photo search complete",
		"category", params.Category,
		"page", params.Page,
		"results", len(res.Photos),
		"total", res.Total,
	)
	return res, nil
}

// Photo returns a previously returned photo, or nil if it has not been seen.
func (s *Service) Photo(ctx context.Context, id string) (*domain.Photo, error) {
	p, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo %s: %w", id, err)
	}
	return p, nil
}
