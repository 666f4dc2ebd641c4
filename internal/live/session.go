package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/pingallery/internal/browse"
	"github.com/vbonduro/pingallery/internal/collection"
	"github.com/vbonduro/pingallery/internal/domain"
	"github.com/vbonduro/pingallery/internal/search"
	"github.com/vbonduro/pingallery/internal/viewer"
)

// collectionStore is the subset of collection.Store a session needs.
type collectionStore interface {
	List(ctx context.Context) []domain.Collection
	Create(ctx context.Context, name, description string, photos ...domain.Photo) (*domain.Collection, error)
	AddPhoto(ctx context.Context, collectionID string, photo domain.Photo) (*domain.Collection, error)
	RemovePhoto(ctx context.Context, collectionID, photoID string) (*domain.Collection, error)
	Delete(ctx context.Context, collectionID string) error
}

// Deps are the shared services every session is built on.
type Deps struct {
	Searcher search.Searcher
	Store    collectionStore
	Logger   *slog.Logger
}

// ViewerState is a viewer snapshot tagged with which page it belongs to.
type ViewerState struct {
	Source string `json:"source"`
	viewer.State
}

// Session hosts the page controllers for one connected client. Outbound
// messages go through send; announce is called after this session changes
// collections so other sessions can reload.
type Session struct {
	home   *browse.Home
	cols   *browse.Collections
	cache  *collection.Cache
	keys   *viewer.KeyBus
	notice *browse.Notice

	send     func(Outbound)
	announce func()
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSession(deps Deps, send func(Outbound), announce func()) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	keys := viewer.NewKeyBus()
	notice := browse.NewNotice(browse.NoticeDuration)
	cache := collection.NewCache(ctx, deps.Store)

	s := &Session{
		home:     browse.NewHome(deps.Searcher, keys, deps.Logger),
		cache:    cache,
		keys:     keys,
		notice:   notice,
		send:     send,
		announce: announce,
		logger:   deps.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.cols = browse.NewCollections(cache, keys, notice)

	s.home.OnChange(func(st browse.HomeState) {
		s.send(Outbound{Type: TypeHomeState, Data: st})
	})
	s.home.Viewer().OnChange(func(st viewer.State) {
		s.send(Outbound{Type: TypeViewerState, Data: ViewerState{Source: SourceHome, State: st}})
	})
	s.cols.OnChange(func(st browse.CollectionsState) {
		s.send(Outbound{Type: TypeCollectionsState, Data: st})
	})
	s.cols.Viewer().OnChange(func(st viewer.State) {
		s.send(Outbound{Type: TypeViewerState, Data: ViewerState{Source: SourceCollection, State: st}})
	})
	notice.OnChange(func(msg string) {
		if msg == "" {
			s.send(Outbound{Type: TypeNoticeClear})
			return
		}
		s.send(Outbound{Type: TypeNotice, Data: messageData{Message: msg}})
	})
	return s
}

// Start sends the initial collections and begins loading the first page of
// photos.
func (s *Session) Start() {
	s.send(Outbound{Type: TypeCollectionsState, Data: s.cols.State()})
	s.background(s.home.Load)
}

// Handle applies one client message. Failures are reported to the client as
// error messages and returned for logging.
func (s *Session) Handle(msg Inbound) error {
	err := s.handle(msg)
	if err != nil {
		s.send(Outbound{Type: TypeError, Data: messageData{Message: errorMessage(err)}})
	}
	return err
}

func (s *Session) handle(msg Inbound) error {
	ctx := s.ctx

	switch msg.Type {
	case TypeHomeCategory:
		category := msg.Category
		s.background(func(ctx context.Context) error { return s.home.SetCategory(ctx, category) })
	case TypeHomeQuery:
		s.home.QueryChanged(msg.Query)
	case TypeHomeMore:
		s.background(s.home.LoadMore)
	case TypeHomeRetry:
		s.background(s.home.Retry)

	case TypeViewerOpen:
		if msg.Source == SourceCollection {
			s.home.Viewer().Close()
			s.cols.OpenViewer(msg.Index)
		} else {
			s.cols.Viewer().Close()
			s.home.Viewer().Open(msg.Index)
		}
	case TypeViewerClose:
		s.home.Viewer().Close()
		s.cols.Viewer().Close()
	case TypeKey:
		s.keys.Press(msg.Key)

	case TypeCollectionsOpen:
		return s.cols.Open(msg.ID)
	case TypeCollectionsClose:
		s.cols.CloseDetail()
	case TypeCollectionsCreate:
		var photo *domain.Photo
		if msg.PhotoID != "" {
			p, err := s.lookupPhoto(msg.PhotoID)
			if err != nil {
				return err
			}
			photo = &p
		}
		if _, err := s.cols.Create(ctx, msg.Name, msg.Description, photo); err != nil {
			return err
		}
		s.announce()
	case TypeCollectionsSave:
		p, err := s.lookupPhoto(msg.PhotoID)
		if err != nil {
			return err
		}
		if err := s.cols.Save(ctx, msg.CollectionID, p); err != nil {
			return err
		}
		s.announce()
	case TypeCollectionsRemove:
		if err := s.cols.RemovePhoto(ctx, msg.PhotoID); err != nil {
			return err
		}
		s.announce()
	case TypeCollectionsDelete:
		if err := s.cols.Delete(ctx, msg.ID); err != nil {
			return err
		}
		s.announce()

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

// CollectionsChanged reloads the session's collections after another writer
// changed them.
func (s *Session) CollectionsChanged() {
	s.cache.RefreshCollections(s.ctx)
}

// Close stops background searches and timers and detaches both viewers.
func (s *Session) Close() {
	s.cancel()
	s.home.Close()
	s.cols.Close()
	s.notice.Stop()
	s.wg.Wait()
}

// lookupPhoto finds a photo on the home grid, then in the open collection.
func (s *Session) lookupPhoto(id string) (domain.Photo, error) {
	if p, ok := s.home.Photo(id); ok {
		return p, nil
	}
	if st := s.cols.State(); st.Selected != nil {
		for _, p := range st.Selected.Photos {
			if p.ID == id {
				return p, nil
			}
		}
	}
	return domain.Photo{}, errPhotoNotFound
}

func (s *Session) background(fn func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := fn(s.ctx)
		if err != nil && !errors.Is(err, browse.ErrStale) && !errors.Is(err, context.Canceled) {
			s.logger.Warn("live search failed", "error", err)
		}
	}()
}

var errPhotoNotFound = errors.New("photo not found")

func errorMessage(err error) string {
	var verr *collection.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, collection.ErrNotFound):
		return "Collection not found"
	case errors.Is(err, collection.ErrStorage):
		return "Failed to save collections"
	case errors.Is(err, errPhotoNotFound):
		return "Photo not found"
	default:
		return err.Error()
	}
}
