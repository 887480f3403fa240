package playlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auviostream/auviostream/internal/config"
	"github.com/auviostream/auviostream/internal/database"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/remotesync"
	"github.com/auviostream/auviostream/internal/store"
)

func newTestService(t *testing.T) (*Service, *remotesync.Client) {
	t.Helper()

	newDB := func() *database.DB {
		db, err := database.New(config.DatabaseConfig{
			Driver:   "sqlite",
			DSN:      ":memory:",
			LogLevel: "silent",
		}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return db
	}

	st, err := store.New(newDB(), nil)
	require.NoError(t, err)

	sync, err := remotesync.NewWithDB(newDB(), "user-1", nil)
	require.NoError(t, err)

	return NewService(st, sync, nil), sync
}

func item(id string) models.ContentItem {
	return models.ContentItem{
		ID: id, PlatformSlug: "auvio", Title: "Titre " + id, Kind: models.KindVideo,
	}
}

func TestCreateAndList(t *testing.T) {
	svc, sync := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Films belges")
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Empty(t, created.Items)

	playlists, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, "Films belges", playlists[0].Name)

	remote, err := sync.Playlists(ctx)
	require.NoError(t, err)
	assert.Len(t, remote, 1, "creation mirrors remotely")
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrNameRequired)
}

func TestGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Docus")
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.ErrorIs(t, err, models.ErrPlaylistNotFound)
}

func TestAddItemPrependsAndDeduplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Soirée")
	require.NoError(t, err)
	id := created.ID.String()

	_, err = svc.AddItem(ctx, id, item("a"))
	require.NoError(t, err)
	updated, err := svc.AddItem(ctx, id, item("b"))
	require.NoError(t, err)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, "b", updated.Items[0].ID, "newest item first")

	updated, err = svc.AddItem(ctx, id, item("a"))
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2, "re-adding an item is a no-op")
	assert.Equal(t, "b", updated.Items[0].ID)
}

func TestAddItemValidatesItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Soirée")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, created.ID.String(), models.ContentItem{PlatformSlug: "auvio"})
	assert.Error(t, err)
}

func TestAddItemUnknownPlaylist(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddItem(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV", item("a"))
	assert.ErrorIs(t, err, models.ErrPlaylistNotFound)
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Soirée")
	require.NoError(t, err)
	id := created.ID.String()

	_, err = svc.AddItem(ctx, id, item("a"))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, id, item("b"))
	require.NoError(t, err)

	updated, err := svc.RemoveItem(ctx, id, "a")
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "b", updated.Items[0].ID)

	updated, err = svc.RemoveItem(ctx, id, "absent")
	require.NoError(t, err, "removing an absent item is fine")
	assert.Len(t, updated.Items, 1)
}

func TestDelete(t *testing.T) {
	svc, sync := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Temporaire")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))

	playlists, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, playlists)

	remote, err := sync.Playlists(ctx)
	require.NoError(t, err)
	assert.Empty(t, remote, "deletion mirrors remotely")

	assert.ErrorIs(t, svc.Delete(ctx, created.ID.String()), models.ErrPlaylistNotFound)
}

func TestMirrorFailureDoesNotBlock(t *testing.T) {
	svc, _ := newTestService(t)
	svc.sync = nil // disabled mirror

	created, err := svc.Create(context.Background(), "Hors ligne")
	require.NoError(t, err)
	assert.NotNil(t, created)
}
