package collection

import (
	"context"
	"slices"
	"sync"

	"github.com/vbonduro/pingallery/internal/domain"
)

// collectionStore is the subset of Store that Cache requires.
type collectionStore interface {
	List(ctx context.Context) []domain.Collection
	Create(ctx context.Context, name, description string, photos ...domain.Photo) (*domain.Collection, error)
	AddPhoto(ctx context.Context, collectionID string, photo domain.Photo) (*domain.Collection, error)
	RemovePhoto(ctx context.Context, collectionID, photoID string) (*domain.Collection, error)
	Delete(ctx context.Context, collectionID string) error
}

// Cache holds a copy of the store's collections for one session and re-reads
// the whole store after every successful mutation. The re-read is not atomic
// with the write, so another writer's changes may show up or be overwritten.
type Cache struct {
	store collectionStore

	mu          sync.RWMutex
	collections []domain.Collection
	subs        map[int]func([]domain.Collection)
	nextSub     int
}

// NewCache builds a Cache and loads it once.
func NewCache(ctx context.Context, store collectionStore) *Cache {
	c := &Cache{
		store: store,
		subs:  make(map[int]func([]domain.Collection)),
	}
	c.RefreshCollections(ctx)
	return c
}

// Collections returns a snapshot of the cached list.
func (c *Cache) Collections() []domain.Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneCollections(c.collections)
}

// Collection returns the cached collection with the given id.
func (c *Cache) Collection(id string) (domain.Collection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := indexOf(c.collections, id); i >= 0 {
		return cloneCollection(c.collections[i]), true
	}
	return domain.Collection{}, false
}

func (c *Cache) CreateCollection(ctx context.Context, name, description string) (*domain.Collection, error) {
	created, err := c.store.Create(ctx, name, description)
	if err != nil {
		return nil, err
	}
	c.RefreshCollections(ctx)
	return created, nil
}

func (c *Cache) AddPhotoToCollection(ctx context.Context, collectionID string, photo domain.Photo) error {
	if _, err := c.store.AddPhoto(ctx, collectionID, photo); err != nil {
		return err
	}
	c.RefreshCollections(ctx)
	return nil
}

func (c *Cache) RemovePhotoFromCollection(ctx context.Context, collectionID, photoID string) error {
	if _, err := c.store.RemovePhoto(ctx, collectionID, photoID); err != nil {
		return err
	}
	c.RefreshCollections(ctx)
	return nil
}

func (c *Cache) DeleteCollection(ctx context.Context, collectionID string) error {
	if err := c.store.Delete(ctx, collectionID); err != nil {
		return err
	}
	c.RefreshCollections(ctx)
	return nil
}

// RefreshCollections re-reads the store and notifies subscribers.
func (c *Cache) RefreshCollections(ctx context.Context) {
	fresh := c.store.List(ctx)

	c.mu.Lock()
	c.collections = fresh
	subs := make([]func([]domain.Collection), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(cloneCollections(fresh))
	}
}

// Subscribe registers fn to run after every refresh. The returned func
// removes it.
func (c *Cache) Subscribe(fn func([]domain.Collection)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func cloneCollections(in []domain.Collection) []domain.Collection {
	out := make([]domain.Collection, len(in))
	for i := range in {
		out[i] = cloneCollection(in[i])
	}
	return out
}

func cloneCollection(c domain.Collection) domain.Collection {
	c.Photos = slices.Clone(c.Photos)
	if c.Photos == nil {
		c.Photos = []domain.Photo{}
	}
	return c
}
