package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/test/builders"
)

// stepClock advances by one second on every call
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func setupTestStore(t *testing.T) (*Store, *stepClock) {
	t.Helper()

	clock := &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store, err := NewStore(t.TempDir(), WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store, clock
}

func payload(title string) entities.DocumentPayload {
	return builders.NewDocumentBuilder().
		WithTitle(title).
		WithSubtitle("sub").
		WithAuthor("Jo").
		WithPresentedAt("Meetup").
		WithSlides("# Hello").
		Payload()
}

func TestNewStore_RequiresDataDir(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}

func TestStore_CreateAndGet(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, payload("Talk"))
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	doc, err := store.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Talk", doc.Title)
	assert.Equal(t, "sub", doc.Subtitle)
	assert.Equal(t, "Jo", doc.Author)
	assert.Equal(t, "Meetup", doc.PresentedAt)
	assert.Equal(t, payload("Talk").Content, doc.Content)
	assert.Equal(t, entities.AccessPrivate, doc.AccessLevel)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 1, 0, time.UTC), doc.CreatedAt)
	assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)
}

func TestStore_CreateValidation(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Create(context.Background(), entities.DocumentPayload{AccessLevel: entities.AccessPublic})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = store.Create(context.Background(), entities.DocumentPayload{Title: "x", AccessLevel: "SECRET"})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, payload("Draft"))
	require.NoError(t, err)

	updated := payload("Final")
	updated.AccessLevel = entities.AccessPublic
	require.NoError(t, store.Update(ctx, id, updated))

	doc, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Final", doc.Title)
	assert.Equal(t, entities.AccessPublic, doc.AccessLevel)
	assert.True(t, doc.UpdatedAt.After(doc.CreatedAt))

	assert.ErrorIs(t, store.Update(ctx, 999, updated), entities.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, id, entities.DocumentPayload{}), entities.ErrValidation)
}

func TestStore_Delete(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, payload("Gone"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, id), entities.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		page, err := store.List(ctx, 0, 5)
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Equal(t, 0, page.TotalPages)
	})

	var ids []entities.DocumentID
	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		id, err := store.Create(ctx, payload(title))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	t.Run("first page newest first", func(t *testing.T) {
		page, err := store.List(ctx, 0, 5)
		require.NoError(t, err)
		require.Len(t, page.Items, 5)
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, "g", page.Items[0].Title)
		assert.Equal(t, "c", page.Items[4].Title)
	})

	t.Run("last page", func(t *testing.T) {
		page, err := store.List(ctx, 1, 5)
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "b", page.Items[0].Title)
		assert.Equal(t, "a", page.Items[1].Title)
	})

	t.Run("beyond last page", func(t *testing.T) {
		page, err := store.List(ctx, 5, 5)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("update moves document to front", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, ids[0], payload("a2")))

		page, err := store.List(ctx, 0, 5)
		require.NoError(t, err)
		assert.Equal(t, ids[0], page.Items[0].ID)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := store.List(ctx, -1, 5)
		assert.ErrorIs(t, err, entities.ErrValidation)

		_, err = store.List(ctx, 0, 0)
		assert.ErrorIs(t, err, entities.ErrValidation)
	})
}

func TestStore_Clone(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, payload("Original"))
	require.NoError(t, err)

	summary, err := store.Clone(ctx, id)
	require.NoError(t, err)

	assert.NotEqual(t, id, summary.ID)
	assert.Equal(t, "Original", summary.Title)
	assert.Equal(t, "Jo", summary.Author)

	clone, err := store.Get(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, payload("Original").Content, clone.Content)

	_, err = store.Clone(ctx, 12345)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	id, err := store.Create(ctx, payload("Persistent"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	doc, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Persistent", doc.Title)

	var applied int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied)
}
