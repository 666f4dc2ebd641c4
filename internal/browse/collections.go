package browse

import (
	"context"
	"fmt"
	"sync"

	"github.com/vbonduro/pingallery/internal/collection"
	"github.com/vbonduro/pingallery/internal/domain"
	"github.com/vbonduro/pingallery/internal/viewer"
)

// collectionsHook is the subset of collection.Cache the page needs.
type collectionsHook interface {
	Collections() []domain.Collection
	Collection(id string) (domain.Collection, bool)
	CreateCollection(ctx context.Context, name, description string) (*domain.Collection, error)
	AddPhotoToCollection(ctx context.Context, collectionID string, photo domain.Photo) error
	RemovePhotoFromCollection(ctx context.Context, collectionID, photoID string) error
	DeleteCollection(ctx context.Context, collectionID string) error
	Subscribe(fn func([]domain.Collection)) func()
}

// CollectionsState is what the collections page renders. Selected is the
// collection whose detail view is open.
type CollectionsState struct {
	Collections []domain.Collection `json:"collections"`
	Selected    *domain.Collection  `json:"selected,omitempty"`
}

// Collections drives the collections page: listing, the detail view of one
// collection, and a viewer over that collection's photos.
type Collections struct {
	hook        collectionsHook
	viewer      *viewer.Viewer
	notice      *Notice
	unsubscribe func()

	mu       sync.Mutex
	selected string
	onChange func(CollectionsState)
}

// NewCollections wires the page to hook. notice may be nil.
func NewCollections(hook collectionsHook, keyboard viewer.Keyboard, notice *Notice) *Collections {
	c := &Collections{
		hook:   hook,
		viewer: viewer.New(keyboard),
		notice: notice,
	}
	c.unsubscribe = hook.Subscribe(c.refreshed)
	return c
}

func (c *Collections) OnChange(fn func(CollectionsState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Viewer is the photo viewer over the selected collection.
func (c *Collections) Viewer() *viewer.Viewer {
	return c.viewer
}

func (c *Collections) State() CollectionsState {
	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()
	return c.build(selected)
}

// Open shows the detail view of a collection.
func (c *Collections) Open(collectionID string) error {
	sel, ok := c.hook.Collection(collectionID)
	if !ok {
		return fmt.Errorf("failed to open collection %s: %w", collectionID, collection.ErrNotFound)
	}

	c.mu.Lock()
	c.selected = collectionID
	c.mu.Unlock()

	c.viewer.Close()
	c.viewer.SetPhotos(sel.Photos)
	c.notify()
	return nil
}

// CloseDetail leaves the detail view.
func (c *Collections) CloseDetail() {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()

	c.viewer.Close()
	c.viewer.SetPhotos(nil)
	c.notify()
}

// OpenViewer opens the viewer at index within the selected collection.
func (c *Collections) OpenViewer(index int) {
	c.viewer.Open(index)
}

// Create validates and creates a collection. When photo is non-nil it is
// saved into the new collection.
func (c *Collections) Create(ctx context.Context, name, description string, photo *domain.Photo) (*domain.Collection, error) {
	in, err := collection.ValidateInput(collection.Input{Name: name, Description: description})
	if err != nil {
		return nil, err
	}

	created, err := c.hook.CreateCollection(ctx, in.Name, in.Description)
	if err != nil {
		return nil, err
	}

	msg := MsgCollectionCreated
	if photo != nil {
		if err := c.hook.AddPhotoToCollection(ctx, created.ID, *photo); err != nil {
			return nil, err
		}
		msg = MsgCollectionCreatedAndSaved
	}
	c.show(msg)
	return created, nil
}

// Save adds photo to a collection.
func (c *Collections) Save(ctx context.Context, collectionID string, photo domain.Photo) error {
	if err := c.hook.AddPhotoToCollection(ctx, collectionID, photo); err != nil {
		return err
	}
	c.show(MsgPhotoSaved)
	return nil
}

// RemovePhoto removes a photo from the selected collection.
func (c *Collections) RemovePhoto(ctx context.Context, photoID string) error {
	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()

	if selected == "" {
		return fmt.Errorf("failed to remove photo %s: no collection open: %w", photoID, collection.ErrNotFound)
	}
	return c.hook.RemovePhotoFromCollection(ctx, selected, photoID)
}

// Delete removes a collection, closing its detail view if it is open.
func (c *Collections) Delete(ctx context.Context, collectionID string) error {
	return c.hook.DeleteCollection(ctx, collectionID)
}

// Close stops following the hook and releases the viewer.
func (c *Collections) Close() {
	c.unsubscribe()
	c.viewer.Detach()
}

// refreshed runs after every hook refresh. The detail view follows the fresh
// copy of the selected collection, or closes if it is gone.
func (c *Collections) refreshed(collections []domain.Collection) {
	c.mu.Lock()
	selected := c.selected
	var photos []domain.Photo
	found := false
	for i := range collections {
		if collections[i].ID == selected {
			photos = collections[i].Photos
			found = true
			break
		}
	}
	if selected != "" && !found {
		c.selected = ""
	}
	c.mu.Unlock()

	if selected != "" {
		c.viewer.SetPhotos(photos)
	}
	c.notify()
}

func (c *Collections) build(selected string) CollectionsState {
	s := CollectionsState{Collections: c.hook.Collections()}
	if selected == "" {
		return s
	}
	for i := range s.Collections {
		if s.Collections[i].ID == selected {
			sel := s.Collections[i]
			s.Selected = &sel
			break
		}
	}
	return s
}

func (c *Collections) notify() {
	c.mu.Lock()
	fn := c.onChange
	selected := c.selected
	c.mu.Unlock()

	if fn != nil {
		fn(c.build(selected))
	}
}

func (c *Collections) show(msg string) {
	if c.notice != nil {
		c.notice.Show(msg)
	}
}
