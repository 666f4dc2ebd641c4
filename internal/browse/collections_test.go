package browse

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/pingallery/internal/blobstore/local"
	"github.com/vbonduro/pingallery/internal/collection"
	"github.com/vbonduro/pingallery/internal/domain"
	"github.com/vbonduro/pingallery/internal/viewer"
)

func newHook(t *testing.T) *collection.Cache {
	t.Helper()
	blob, err := local.NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)
	return collection.NewCache(context.Background(), collection.NewStore(blob, slog.Default()))
}

func testPhoto(id string) domain.Photo {
	return domain.Photo{ID: id, Title: "Photo " + id, Tags: []string{}}
}

func TestCollectionsCreateWithPhoto(t *testing.T) {
	notice := NewNotice(time.Minute)
	t.Cleanup(notice.Stop)
	c := NewCollections(newHook(t), nil, notice)
	t.Cleanup(c.Close)
	ctx := context.Background()

	p := testPhoto("p1")
	created, err := c.Create(ctx, "  Trips ", "", &p)
	require.NoError(t, err)
	assert.Equal(t, "Trips", created.Name)
	assert.Equal(t, MsgCollectionCreatedAndSaved, notice.Message())

	st := c.State()
	require.Len(t, st.Collections, 1)
	require.Len(t, st.Collections[0].Photos, 1)
	assert.Equal(t, "p1", st.Collections[0].Photos[0].ID)
}

func TestCollectionsCreateRejectsBlankName(t *testing.T) {
	c := NewCollections(newHook(t), nil, nil)
	t.Cleanup(c.Close)

	_, err := c.Create(context.Background(), "   ", "", nil)
	assert.ErrorIs(t, err, collection.ErrValidation)
	assert.Empty(t, c.State().Collections)
}

func TestCollectionsSaveShowsNotice(t *testing.T) {
	notice := NewNotice(time.Minute)
	t.Cleanup(notice.Stop)
	c := NewCollections(newHook(t), nil, notice)
	t.Cleanup(c.Close)
	ctx := context.Background()

	created, err := c.Create(ctx, "Trips", "", nil)
	require.NoError(t, err)
	assert.Equal(t, MsgCollectionCreated, notice.Message())

	require.NoError(t, c.Save(ctx, created.ID, testPhoto("p1")))
	assert.Equal(t, MsgPhotoSaved, notice.Message())

	err = c.Save(ctx, "missing", testPhoto("p1"))
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestCollectionsDetailFollowsRemovals(t *testing.T) {
	bus := viewer.NewKeyBus()
	c := NewCollections(newHook(t), bus, nil)
	t.Cleanup(c.Close)
	ctx := context.Background()

	created, err := c.Create(ctx, "Trips", "", nil)
	require.NoError(t, err)
	for _, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, c.Save(ctx, created.ID, testPhoto(id)))
	}

	require.NoError(t, c.Open(created.ID))
	require.NotNil(t, c.State().Selected)

	c.OpenViewer(2)
	cur, ok := c.Viewer().Current()
	require.True(t, ok)
	assert.Equal(t, "p3", cur.ID)

	require.NoError(t, c.RemovePhoto(ctx, "p3"))
	st := c.State()
	require.NotNil(t, st.Selected)
	assert.Len(t, st.Selected.Photos, 2)

	// The viewer was at the removed last photo and clamps to the new last one.
	cur, ok = c.Viewer().Current()
	require.True(t, ok)
	assert.Equal(t, "p2", cur.ID)

	bus.Press(viewer.KeyArrowRight)
	cur, _ = c.Viewer().Current()
	assert.Equal(t, "p1", cur.ID)
}

func TestCollectionsDeleteSelectedClosesDetail(t *testing.T) {
	bus := viewer.NewKeyBus()
	c := NewCollections(newHook(t), bus, nil)
	t.Cleanup(c.Close)
	ctx := context.Background()

	created, err := c.Create(ctx, "Trips", "", nil)
	require.NoError(t, err)
	require.NoError(t, c.Save(ctx, created.ID, testPhoto("p1")))
	require.NoError(t, c.Open(created.ID))
	c.OpenViewer(0)
	require.Equal(t, 1, bus.Listeners())

	require.NoError(t, c.Delete(ctx, created.ID))

	st := c.State()
	assert.Nil(t, st.Selected)
	assert.Empty(t, st.Collections)
	assert.False(t, c.Viewer().State().Open)
	assert.Equal(t, 0, bus.Listeners())
}

func TestCollectionsOpenUnknown(t *testing.T) {
	c := NewCollections(newHook(t), nil, nil)
	t.Cleanup(c.Close)

	assert.ErrorIs(t, c.Open("missing"), collection.ErrNotFound)
	assert.ErrorIs(t, c.RemovePhoto(context.Background(), "p1"), collection.ErrNotFound)
}

func TestCollectionsCloseDetail(t *testing.T) {
	c := NewCollections(newHook(t), nil, nil)
	t.Cleanup(c.Close)
	ctx := context.Background()

	created, err := c.Create(ctx, "Trips", "", nil)
	require.NoError(t, err)
	require.NoError(t, c.Open(created.ID))

	var last CollectionsState
	c.OnChange(func(s CollectionsState) { last = s })
	c.CloseDetail()

	assert.Nil(t, last.Selected)
	assert.Len(t, last.Collections, 1)
}

func TestCollectionsCloseUnsubscribes(t *testing.T) {
	hook := newHook(t)
	c := NewCollections(hook, nil, nil)

	calls := 0
	c.OnChange(func(CollectionsState) { calls++ })
	c.Close()

	_, err := hook.CreateCollection(context.Background(), "Trips", "")
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}
