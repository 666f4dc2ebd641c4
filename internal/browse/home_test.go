package browse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/pingallery/internal/domain"
	"github.com/vbonduro/pingallery/internal/unsplash"
	"github.com/vbonduro/pingallery/internal/viewer"
)

// pagedSearcher serves totalPages pages of perPage photos named after the
// search phrase.
type pagedSearcher struct {
	mu         sync.Mutex
	totalPages int
	perPage    int
	err        error
	calls      []unsplash.SearchParams
}

func (s *pagedSearcher) Search(_ context.Context, p unsplash.SearchParams) (*domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	if s.err != nil {
		return nil, s.err
	}
	photos := make([]domain.Photo, 0, s.perPage)
	for i := range s.perPage {
		photos = append(photos, domain.Photo{ID: fmt.Sprintf("%s-%s-%d-%d", p.Category, p.Query, p.Page, i)})
	}
	return &domain.SearchResult{Photos: photos, Total: s.totalPages * s.perPage, TotalPages: s.totalPages}, nil
}

func (s *pagedSearcher) Calls() []unsplash.SearchParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]unsplash.SearchParams(nil), s.calls...)
}

// gatedSearcher blocks each search until released through its gate channel.
type gatedSearcher struct {
	gates map[string]chan *domain.SearchResult
}

func (s *gatedSearcher) Search(ctx context.Context, p unsplash.SearchParams) (*domain.SearchResult, error) {
	select {
	case res := <-s.gates[p.Category]:
		return res, nil
	case <-ctx.Done():
		// Still hand back a result so the controller has to drop it itself.
		return &domain.SearchResult{Photos: []domain.Photo{{ID: "late-" + p.Category}}, TotalPages: 1}, nil
	}
}

func TestHomeDefaults(t *testing.T) {
	s := &pagedSearcher{totalPages: 3, perPage: 2}
	h := NewHome(s, nil, slog.Default())
	t.Cleanup(h.Close)

	require.NoError(t, h.Load(context.Background()))

	calls := s.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "outfits", calls[0].Category)
	assert.Equal(t, 1, calls[0].Page)
	assert.Equal(t, 20, calls[0].PerPage)

	st := h.State()
	assert.Len(t, st.Photos, 2)
	assert.True(t, st.HasMore)
	assert.False(t, st.Loading)
}

func TestHomeLoadMoreAccumulates(t *testing.T) {
	s := &pagedSearcher{totalPages: 2, perPage: 3}
	h := NewHome(s, nil, slog.Default())
	t.Cleanup(h.Close)
	ctx := context.Background()

	require.NoError(t, h.SetCategory(ctx, "cars"))
	require.NoError(t, h.LoadMore(ctx))

	st := h.State()
	require.Len(t, st.Photos, 6)
	assert.Equal(t, "cars--1-0", st.Photos[0].ID)
	assert.Equal(t, "cars--2-2", st.Photos[5].ID)
	assert.Equal(t, 2, st.Page)
	assert.False(t, st.HasMore)

	// No further pages: LoadMore does not search again.
	require.NoError(t, h.LoadMore(ctx))
	assert.Len(t, s.Calls(), 2)
}

func TestHomeCategoryChangeResets(t *testing.T) {
	s := &pagedSearcher{totalPages: 5, perPage: 1}
	h := NewHome(s, nil, slog.Default())
	t.Cleanup(h.Close)
	ctx := context.Background()

	require.NoError(t, h.Load(ctx))
	require.NoError(t, h.LoadMore(ctx))
	require.Len(t, h.State().Photos, 2)

	require.NoError(t, h.SetCategory(ctx, "home"))
	st := h.State()
	assert.Equal(t, "home", st.Category)
	assert.Equal(t, 1, st.Page)
	require.Len(t, st.Photos, 1)
	assert.Equal(t, "home--1-0", st.Photos[0].ID)
}

func TestHomeSetQuery(t *testing.T) {
	s := &pagedSearcher{totalPages: 1, perPage: 1}
	h := NewHome(s, nil, slog.Default())
	t.Cleanup(h.Close)

	require.NoError(t, h.SetQuery(context.Background(), "loft"))
	calls := s.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "loft", calls[0].Query)
	assert.Equal(t, "loft", h.State().Query)
}

func TestHomeErrorAndRetry(t *testing.T) {
	s := &pagedSearcher{totalPages: 1, perPage: 1, err: &unsplash.StatusError{StatusCode: 503, Status: "Service Unavailable"}}
	h := NewHome(s, nil, slog.Default())
	t.Cleanup(h.Close)
	ctx := context.Background()

	err := h.Load(ctx)
	assert.ErrorIs(t, err, unsplash.ErrFetch)
	st := h.State()
	assert.Contains(t, st.Error, "Service Unavailable")
	assert.False(t, st.Loading)

	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()

	require.NoError(t, h.Retry(ctx))
	assert.Empty(t, h.State().Error)
	assert.Len(t, h.State().Photos, 1)
}

func TestHomeDiscardsStaleResponse(t *testing.T) {
	s := &gatedSearcher{gates: map[string]chan *domain.SearchResult{
		"outfits": make(chan *domain.SearchResult, 1),
		"cars":    make(chan *domain.SearchResult, 1),
	}}
	h := NewHome(s, nil, slog.Default())
	t.Cleanup(h.Close)
	ctx := context.Background()

	slowDone := make(chan error, 1)
	go func() { slowDone <- h.SetCategory(ctx, "outfits") }()

	// Wait for the first search to be in flight.
	require.Eventually(t, func() bool { return h.State().Loading }, time.Second, time.Millisecond)

	s.gates["cars"] <- &domain.SearchResult{Photos: []domain.Photo{{ID: "car-1"}}, Total: 1, TotalPages: 1}
	require.NoError(t, h.SetCategory(ctx, "cars"))

	// The superseded search was cancelled and its late answer is dropped.
	assert.ErrorIs(t, <-slowDone, ErrStale)

	st := h.State()
	assert.Equal(t, "cars", st.Category)
	require.Len(t, st.Photos, 1)
	assert.Equal(t, "car-1", st.Photos[0].ID)
}

func TestHomeQueryChangedIsDebounced(t *testing.T) {
	s := &pagedSearcher{totalPages: 1, perPage: 1}
	h := NewHome(s, nil, slog.Default())
	t.Cleanup(h.Close)
	h.debounce = NewDebouncer(20 * time.Millisecond)

	h.QueryChanged("l")
	h.QueryChanged("lo")
	h.QueryChanged("loft")

	require.Eventually(t, func() bool { return len(s.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	calls := s.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "loft", calls[0].Query)
}

func TestHomeViewerFollowsGrid(t *testing.T) {
	s := &pagedSearcher{totalPages: 2, perPage: 2}
	bus := viewer.NewKeyBus()
	h := NewHome(s, bus, slog.Default())
	t.Cleanup(h.Close)
	ctx := context.Background()

	require.NoError(t, h.Load(ctx))
	h.Viewer().Open(1)
	bus.Press(viewer.KeyArrowRight)
	assert.Equal(t, 0, h.Viewer().State().Index)

	require.NoError(t, h.LoadMore(ctx))
	bus.Press(viewer.KeyArrowLeft)
	assert.Equal(t, 3, h.Viewer().State().Index)

	require.NoError(t, h.SetCategory(ctx, "kitchen"))
	assert.Equal(t, 2, h.Viewer().State().Count)

	h.Close()
	assert.Equal(t, 0, bus.Listeners())
}

func TestHomeOnChange(t *testing.T) {
	s := &pagedSearcher{totalPages: 1, perPage: 1}
	h := NewHome(s, nil, slog.Default())
	t.Cleanup(h.Close)

	var states []HomeState
	h.OnChange(func(st HomeState) { states = append(states, st) })

	require.NoError(t, h.Load(context.Background()))
	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
	assert.Len(t, states[1].Photos, 1)
}

func TestHomePhotoLookup(t *testing.T) {
	s := &pagedSearcher{totalPages: 1, perPage: 2}
	h := NewHome(s, nil, slog.Default())
	t.Cleanup(h.Close)
	require.NoError(t, h.Load(context.Background()))

	p, ok := h.Photo("outfits--1-1")
	require.True(t, ok)
	assert.Equal(t, "outfits--1-1", p.ID)

	_, ok = h.Photo("nope")
	assert.False(t, ok)
}

func TestHomeCloseCancelsPendingQuery(t *testing.T) {
	s := &pagedSearcher{totalPages: 1, perPage: 1}
	h := NewHome(s, nil, slog.Default())
	h.debounce = NewDebouncer(20 * time.Millisecond)

	h.QueryChanged("loft")
	h.Close()
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, s.Calls())
}
