package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/pingallery/internal/blobstore"
	"github.com/vbonduro/pingallery/internal/domain"
)

// StorageKey is the blob key that holds every collection as one JSON array.
const StorageKey = "pingallery_collections"

// TimeFormat is the layout of Collection.CreatedAt.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Store keeps all collections in a single blob and rewrites the whole blob on
// every mutation. Mutations through one Store are serialized; two Stores over
// the same blob (or two processes) are last-write-wins.
type Store struct {
	mu     sync.Mutex
	blob   blobstore.Store
	key    string
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Store)

// WithIDGenerator replaces the UUID generator used for new collection ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithKey stores collections under key instead of StorageKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func NewStore(blob blobstore.Store, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		blob:   blob,
		key:    StorageKey,
		newID:  uuid.NewString,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every collection in insertion order. A missing, unreadable, or
// corrupt blob yields an empty list; the failure is logged.
func (s *Store) List(ctx context.Context) []domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

// Get returns the collection with the given id, or nil when there is none.
func (s *Store) Get(ctx context.Context, id string) (*domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections := s.list(ctx)
	if i := indexOf(collections, id); i >= 0 {
		return &collections[i], nil
	}
	return nil, nil
}

// Persist overwrites the blob with collections.
func (s *Store) Persist(ctx context.Context, collections []domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, collections)
}

// Create appends a new collection. The name is stored as given; callers run
// ValidateInput first. Photos with duplicate ids are dropped after the first.
func (s *Store) Create(ctx context.Context, name, description string, photos ...domain.Photo) (*domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections := s.list(ctx)
	c := domain.Collection{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		Photos:      dedupe(photos),
		CreatedAt:   s.now().UTC().Format(TimeFormat),
	}
	collections = append(collections, c)

	if err := s.persist(ctx, collections); err != nil {
		return nil, err
	}
	s.logger.Info("collection created", "collection_id", c.ID, "name", c.Name)
	return &c, nil
}

// AddPhoto appends photo to the collection. Adding a photo that is already
// present succeeds without writing.
func (s *Store) AddPhoto(ctx context.Context, collectionID string, photo domain.Photo) (*domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections := s.list(ctx)
	i := indexOf(collections, collectionID)
	if i < 0 {
		return nil, fmt.Errorf("failed to add photo %s: %w", photo.ID, ErrNotFound)
	}
	c := &collections[i]
	if c.HasPhoto(photo.ID) {
		return c, nil
	}
	c.Photos = append(c.Photos, photo)

	if err := s.persist(ctx, collections); err != nil {
		return nil, err
	}
	return c, nil
}

// RemovePhoto drops every photo with photoID from the collection. Removing an
// absent photo still rewrites the blob and succeeds.
func (s *Store) RemovePhoto(ctx context.Context, collectionID, photoID string) (*domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections := s.list(ctx)
	i := indexOf(collections, collectionID)
	if i < 0 {
		return nil, fmt.Errorf("failed to remove photo %s: %w", photoID, ErrNotFound)
	}
	c := &collections[i]
	kept := make([]domain.Photo, 0, len(c.Photos))
	for _, p := range c.Photos {
		if p.ID != photoID {
			kept = append(kept, p)
		}
	}
	c.Photos = kept

	if err := s.persist(ctx, collections); err != nil {
		return nil, err
	}
	return c, nil
}

// Update merges the non-nil fields of patch into the collection.
func (s *Store) Update(ctx context.Context, collectionID string, patch Patch) (*domain.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections := s.list(ctx)
	i := indexOf(collections, collectionID)
	if i < 0 {
		return nil, fmt.Errorf("failed to update collection %s: %w", collectionID, ErrNotFound)
	}
	c := &collections[i]
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Photos != nil {
		c.Photos = dedupe(*patch.Photos)
	}

	if err := s.persist(ctx, collections); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the collection if it exists. Deleting an unknown id is not
// an error.
func (s *Store) Delete(ctx context.Context, collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections := s.list(ctx)
	kept := make([]domain.Collection, 0, len(collections))
	for _, c := range collections {
		if c.ID != collectionID {
			kept = append(kept, c)
		}
	}

	if err := s.persist(ctx, kept); err != nil {
		return err
	}
	if len(kept) < len(collections) {
		s.logger.Info("collection deleted", "collection_id", collectionID)
	}
	return nil
}

func (s *Store) list(ctx context.Context) []domain.Collection {
	data, err := s.blob.Get(ctx, s.key)
	if errors.Is(err, blobstore.ErrNotFound) {
		return []domain.Collection{}
	}
	if err != nil {
		s.logger.Error("failed to load collections", "key", s.key, "error", err)
		return []domain.Collection{}
	}

	var collections []domain.Collection
	if err := json.Unmarshal(data, &collections); err != nil {
		s.logger.Error("failed to parse collections", "key", s.key, "error", err)
		return []domain.Collection{}
	}
	if collections == nil {
		collections = []domain.Collection{}
	}
	for i := range collections {
		if collections[i].Photos == nil {
			collections[i].Photos = []domain.Photo{}
		}
	}
	return collections
}

func (s *Store) persist(ctx context.Context, collections []domain.Collection) error {
	if collections == nil {
		collections = []domain.Collection{}
	}
	data, err := json.Marshal(collections)
	if err != nil {
		return fmt.Errorf("failed to encode collections: %w", err)
	}
	if err := s.blob.Put(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist collections", "key", s.key, "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func indexOf(collections []domain.Collection, id string) int {
	for i := range collections {
		if collections[i].ID == id {
			return i
		}
	}
	return -1
}

func dedupe(photos []domain.Photo) []domain.Photo {
	out := make([]domain.Photo, 0, len(photos))
	seen := make(map[string]struct{}, len(photos))
	for _, p := range photos {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
