package browse

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/vbonduro/pingallery/internal/domain"
	"github.com/vbonduro/pingallery/internal/search"
	"github.com/vbonduro/pingallery/internal/unsplash"
	"github.com/vbonduro/pingallery/internal/viewer"
)

// ErrStale is returned by a search whose result was discarded because a newer
// search started before it finished.
var ErrStale = errors.New("search superseded by a newer request")

// HomeState is what the home page renders.
type HomeState struct {
	Category   string         `json:"category"`
	Query      string         `json:"query"`
	Page       int            `json:"page"`
	Photos     []domain.Photo `json:"photos"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
	Loading    bool           `json:"loading"`
	Error      string         `json:"error,omitempty"`
	HasMore    bool           `json:"hasMore"`
}

// Home drives the photo grid: one category or free-text query, pages
// accumulated as the user loads more. Only the newest search may update the
// grid; older in-flight searches are cancelled and their results dropped.
type Home struct {
	searcher search.Searcher
	viewer   *viewer.Viewer
	debounce *Debouncer
	logger   *slog.Logger

	ctx  context.Context
	stop context.CancelFunc

	mu         sync.Mutex
	category   string
	query      string
	page       int
	requested  int
	photos     []domain.Photo
	total      int
	totalPages int
	loading    bool
	errMsg     string
	seq        uint64
	cancel     context.CancelFunc
	onChange   func(HomeState)
}

func NewHome(searcher search.Searcher, keyboard viewer.Keyboard, logger *slog.Logger) *Home {
	ctx, stop := context.WithCancel(context.Background())
	return &Home{
		searcher:  searcher,
		viewer:    viewer.New(keyboard),
		debounce:  NewDebouncer(QueryDebounce),
		logger:    logger,
		ctx:       ctx,
		stop:      stop,
		category:  unsplash.DefaultCategory,
		page:      1,
		requested: 1,
		photos:    []domain.Photo{},
	}
}

// OnChange sets the callback run after every state change.
func (h *Home) OnChange(fn func(HomeState)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
}

// Viewer is the photo viewer over the accumulated grid.
func (h *Home) Viewer() *viewer.Viewer {
	return h.viewer
}

// Load fetches the first page for the current category and query.
func (h *Home) Load(ctx context.Context) error {
	return h.fetch(ctx, 1)
}

// SetCategory switches category and reloads from page one.
func (h *Home) SetCategory(ctx context.Context, category string) error {
	if category == "" {
		category = unsplash.DefaultCategory
	}
	h.mu.Lock()
	h.category = category
	h.resetLocked()
	h.mu.Unlock()

	h.viewer.SetPhotos(nil)
	return h.fetch(ctx, 1)
}

// SetQuery applies a free-text query immediately and reloads from page one.
func (h *Home) SetQuery(ctx context.Context, query string) error {
	h.debounce.Cancel()

	h.mu.Lock()
	h.query = query
	h.resetLocked()
	h.mu.Unlock()

	h.viewer.SetPhotos(nil)
	return h.fetch(ctx, 1)
}

// QueryChanged records a keystroke. The search runs once typing pauses for
// QueryDebounce; each keystroke cancels the previous pending search.
func (h *Home) QueryChanged(query string) {
	h.debounce.Trigger(func() {
		err := h.SetQuery(h.ctx, query)
		if err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, context.Canceled) {
			h.logger.Warn("debounced search failed", "query", query, "error", err)
		}
	})
}

// LoadMore fetches the next page if there is one and nothing is loading.
func (h *Home) LoadMore(ctx context.Context) error {
	h.mu.Lock()
	if h.loading || h.page >= h.totalPages {
		h.mu.Unlock()
		return nil
	}
	next := h.page + 1
	h.mu.Unlock()

	return h.fetch(ctx, next)
}

// Retry repeats the last requested page.
func (h *Home) Retry(ctx context.Context) error {
	h.mu.Lock()
	page := h.requested
	h.mu.Unlock()
	return h.fetch(ctx, page)
}

func (h *Home) State() HomeState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stateLocked()
}

// Close cancels any in-flight or pending search and releases the viewer.
func (h *Home) Close() {
	h.debounce.Cancel()
	h.stop()

	h.mu.Lock()
	h.seq++
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.mu.Unlock()

	h.viewer.Detach()
}

func (h *Home) resetLocked() {
	h.page = 1
	h.requested = 1
	h.photos = []domain.Photo{}
	h.total = 0
	h.totalPages = 0
}

func (h *Home) fetch(ctx context.Context, page int) error {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	if h.cancel != nil {
		h.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.requested = page
	h.loading = true
	h.errMsg = ""
	params := unsplash.SearchParams{
		Category: h.category,
		Page:     page,
		PerPage:  unsplash.DefaultPerPage,
		Query:    h.query,
	}
	h.mu.Unlock()
	h.notify()

	res, err := h.searcher.Search(reqCtx, params)
	cancel()

	h.mu.Lock()
	if seq != h.seq {
		h.mu.Unlock()
		h.logger.Debug("discarding stale search", "category", params.Category, "query", params.Query, "page", page)
		return ErrStale
	}
	h.cancel = nil
	h.loading = false
	if err != nil {
		h.errMsg = err.Error()
		h.mu.Unlock()
		h.notify()
		return err
	}
	if page == 1 {
		h.photos = slices.Clone(res.Photos)
	} else {
		h.photos = append(h.photos, res.Photos...)
	}
	if h.photos == nil {
		h.photos = []domain.Photo{}
	}
	h.page = page
	h.total = res.Total
	h.totalPages = res.TotalPages
	photos := slices.Clone(h.photos)
	h.mu.Unlock()

	h.viewer.SetPhotos(photos)
	h.notify()
	return nil
}

func (h *Home) stateLocked() HomeState {
	return HomeState{
		Category:   h.category,
		Query:      h.query,
		Page:       h.page,
		Photos:     slices.Clone(h.photos),
		Total:      h.total,
		TotalPages: h.totalPages,
		Loading:    h.loading,
		Error:      h.errMsg,
		HasMore:    !h.loading && h.totalPages > h.page,
	}
}

func (h *Home) notify() {
	h.mu.Lock()
	fn := h.onChange
	s := h.stateLocked()
	h.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// Photo returns the grid photo with the given id.
func (h *Home) Photo(id string) (domain.Photo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.photos {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Photo{}, false
}
