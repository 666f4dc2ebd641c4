package search

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/pingallery/internal/db"
	"github.com/vbonduro/pingallery/internal/domain"
	"github.com/vbonduro/pingallery/internal/store"
	"github.com/vbonduro/pingallery/internal/unsplash"
)

var (
	_ Searcher = (*unsplash.Client)(nil)
	_ Searcher = (*HTTPClient)(nil)
	_ Searcher = (*Service)(nil)
)

// stubSearcher returns a canned result and records the last params.
type stubSearcher struct {
	result *domain.SearchResult
	err    error
	last   unsplash.SearchParams
}

func (s *stubSearcher) Search(_ context.Context, params unsplash.SearchParams) (*domain.SearchResult, error) {
	s.last = params
	return s.result, s.err
}

// failingPhotos is a photoRepository whose writes always fail.
type failingPhotos struct{}

func (failingPhotos) Upsert(context.Context, []domain.Photo) error {
	return errors.New("database is locked")
}

func (failingPhotos) GetByID(context.Context, string) (*domain.Photo, error) {
	return nil, errors.New("database is locked")
}

func newPhotoStore(t *testing.T) *store.PhotoStore {
	t.Helper()
	database, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return store.NewPhotoStore(database)
}

func TestServiceSearchCachesPhotos(t *testing.T) {
	upstream := &stubSearcher{result: &domain.SearchResult{
		Photos:     []domain.Photo{{ID: "p1", Title: "One", Category: "cars", Tags: []string{}}},
		Total:      1,
		TotalPages: 1,
	}}
	svc := NewService(upstream, newPhotoStore(t), slog.Default())
	ctx := context.Background()

	res, err := svc.Search(ctx, unsplash.SearchParams{Category: "cars"})
	require.NoError(t, err)
	assert.Len(t, res.Photos, 1)
	assert.Equal(t, "cars", upstream.last.Category)

	p, err := svc.Photo(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "One", p.Title)
}

func TestServicePhotoUnknown(t *testing.T) {
	svc := NewService(&stubSearcher{}, newPhotoStore(t), slog.Default())

	p, err := svc.Photo(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestServiceSearchUpstreamError(t *testing.T) {
	upstream := &stubSearcher{err: &unsplash.StatusError{StatusCode: 500, Status: "Internal Server Error"}}
	svc := NewService(upstream, newPhotoStore(t), slog.Default())

	_, err := svc.Search(context.Background(), unsplash.SearchParams{})
	assert.ErrorIs(t, err, unsplash.ErrFetch)
}

func TestServiceSearchSurvivesCacheFailure(t *testing.T) {
	upstream := &stubSearcher{result: &domain.SearchResult{Photos: []domain.Photo{{ID: "p1"}}}}
	svc := NewService(upstream, failingPhotos{}, slog.Default())

	res, err := svc.Search(context.Background(), unsplash.SearchParams{})
	require.NoError(t, err)
	assert.Len(t, res.Photos, 1)

	_, err = svc.Photo(context.Background(), "p1")
	assert.Error(t, err)
}

func TestHTTPClientSearch(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"photos":[{"id":"p1","title":"One"}],"total":41,"totalPages":3}`))
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL)
	res, err := c.Search(context.Background(), unsplash.SearchParams{Category: "home", Page: 2, Query: "loft"})
	require.NoError(t, err)

	assert.Equal(t, "/api/photos", got.URL.Path)
	assert.Equal(t, "home", got.URL.Query().Get("category"))
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "20", got.URL.Query().Get("per_page"))
	assert.Equal(t, "loft", got.URL.Query().Get("query"))
	assert.Equal(t, 41, res.Total)
	assert.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Photos, 1)
	assert.Equal(t, "p1", res.Photos[0].ID)
}

func TestHTTPClientOmitsEmptyQuery(t *testing.T) {
	var hasQuery bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasQuery = r.URL.Query().Has("query")
		_, _ = w.Write([]byte(`{"photos":null,"total":0,"totalPages":0}`))
	}))
	defer server.Close()

	res, err := NewHTTPClient(server.URL).Search(context.Background(), unsplash.SearchParams{})
	require.NoError(t, err)
	assert.False(t, hasQuery)
	assert.NotNil(t, res.Photos)
}

func TestHTTPClientStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL).Search(context.Background(), unsplash.SearchParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, unsplash.ErrFetch)
	assert.Contains(t, err.Error(), "Internal Server Error")
}
