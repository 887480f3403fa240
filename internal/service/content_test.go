package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auviostream/auviostream/internal/config"
	"github.com/auviostream/auviostream/internal/database"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/provider"
	"github.com/auviostream/auviostream/internal/remotesync"
)

// listerAdapter implements every capability for tests.
type listerAdapter struct {
	platform   models.Platform
	categories []models.Category
	items      []models.ContentItem
	searchHits []models.ContentItem
	lastQuery  string
	searchWait time.Duration
	live       *models.StreamDescriptor
	liveErr    error
}

func (a *listerAdapter) Platform() models.Platform { return a.platform }

func (a *listerAdapter) Categories(ctx context.Context) ([]models.Category, error) {
	return a.categories, nil
}

func (a *listerAdapter) CategoryContent(ctx context.Context, categoryID string) ([]models.ContentItem, error) {
	return a.items, nil
}

func (a *listerAdapter) Search(ctx context.Context, query string) []models.ContentItem {
	a.lastQuery = query
	if a.searchWait > 0 {
		select {
		case <-time.After(a.searchWait):
		case <-ctx.Done():
			return nil
		}
	}
	return a.searchHits
}

func (a *listerAdapter) LiveChannels(ctx context.Context) ([]models.ContentItem, error) {
	return a.items, nil
}

func (a *listerAdapter) ResolveLiveStream(ctx context.Context, channelID string) (*models.StreamDescriptor, error) {
	return a.live, a.liveErr
}

// bareAdapter has no capabilities at all.
type bareAdapter struct {
	platform models.Platform
}

func (a *bareAdapter) Platform() models.Platform { return a.platform }

func item(slug, id string) models.ContentItem {
	return models.ContentItem{ID: id, PlatformSlug: slug, Title: "Titre " + id, Kind: models.KindVideo}
}

func newSyncClient(t *testing.T) *remotesync.Client {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      ":memory:",
		LogLevel: "silent",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client, err := remotesync.NewWithDB(db, "user-1", nil)
	require.NoError(t, err)
	return client
}

func newService(t *testing.T, sync *remotesync.Client, adapters ...provider.Adapter) *ContentService {
	t.Helper()
	registry := provider.NewRegistry()
	for _, a := range adapters {
		registry.Register(a)
	}
	return NewContentService(registry, sync, nil)
}

func TestPlatformsFallsBackToBuiltins(t *testing.T) {
	svc := newService(t, nil, &bareAdapter{platform: models.Platform{
		Slug: "ln24", Name: "LN24", Category: models.CategoryNational, AuthType: models.AuthTypeNone, Active: true,
	}})

	platforms := svc.Platforms(context.Background())
	require.Len(t, platforms, 1)
	assert.Equal(t, "ln24", platforms[0].Slug)
}

func TestPlatformsPrefersRemoteDirectory(t *testing.T) {
	sync := newSyncClient(t)
	ctx := context.Background()

	remote := models.Platform{
		Slug: "auvio", Name: "RTBF Auvio (remote)", Category: models.CategoryNational,
		AuthType: models.AuthTypeGigya, Active: true,
	}
	require.NoError(t, sync.SeedPlatforms(ctx, []models.Platform{remote}))

	svc := newService(t, sync, &bareAdapter{platform: models.Platform{
		Slug: "auvio", Name: "RTBF Auvio (builtin)", Category: models.CategoryNational,
		AuthType: models.AuthTypeGigya, Active: true,
	}})

	platforms := svc.Platforms(ctx)
	require.Len(t, platforms, 1)
	assert.Equal(t, "RTBF Auvio (remote)", platforms[0].Name)
}

func TestPlatformsCachedUntilRefresh(t *testing.T) {
	sync := newSyncClient(t)
	ctx := context.Background()

	builtin := models.Platform{
		Slug: "auvio", Name: "RTBF Auvio", Category: models.CategoryNational,
		AuthType: models.AuthTypeGigya, Active: true,
	}
	svc := newService(t, sync, &bareAdapter{platform: builtin})

	first := svc.Platforms(ctx)
	require.Len(t, first, 1)

	remote := builtin
	remote.Name = "RTBF Auvio (remote)"
	require.NoError(t, sync.SeedPlatforms(ctx, []models.Platform{remote}))

	cached := svc.Platforms(ctx)
	assert.Equal(t, "RTBF Auvio", cached[0].Name, "cache holds until refreshed")

	require.NoError(t, svc.RefreshRegistry(ctx))
	refreshed := svc.Platforms(ctx)
	assert.Equal(t, "RTBF Auvio (remote)", refreshed[0].Name)
}

func TestPlatformBySlug(t *testing.T) {
	svc := newService(t, nil, &bareAdapter{platform: models.Platform{
		Slug: "ln24", Name: "LN24", Category: models.CategoryNational, AuthType: models.AuthTypeNone, Active: true,
	}})

	p, err := svc.PlatformBySlug(context.Background(), "ln24")
	require.NoError(t, err)
	assert.Equal(t, "LN24", p.Name)

	_, err = svc.PlatformBySlug(context.Background(), "nosuch")
	assert.True(t, models.IsStreamKind(err, models.StreamUnknownPlatform))
}

func TestCategoriesDispatch(t *testing.T) {
	adapter := &listerAdapter{
		platform:   models.Platform{Slug: "auvio"},
		categories: []models.Category{{ID: "1", PlatformSlug: "auvio", Title: "Séries"}},
	}
	svc := newService(t, nil, adapter)

	categories, err := svc.Categories(context.Background(), "auvio")
	require.NoError(t, err)
	require.Len(t, categories, 1)

	_, err = svc.Categories(context.Background(), "nosuch")
	assert.True(t, models.IsStreamKind(err, models.StreamUnknownPlatform))
}

func TestCategoriesWithoutCapability(t *testing.T) {
	svc := newService(t, nil, &bareAdapter{platform: models.Platform{Slug: "matele"}})

	categories, err := svc.Categories(context.Background(), "matele")
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestSearchFoldsQuery(t *testing.T) {
	adapter := &listerAdapter{
		platform:   models.Platform{Slug: "auvio"},
		searchHits: []models.ContentItem{item("auvio", "v1")},
	}
	svc := newService(t, nil, adapter)

	items, err := svc.Search(context.Background(), "auvio", "Télévision")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "television", adapter.lastQuery, "diacritics folded before dispatch")
}

func TestSearchAllMergesInPlatformOrder(t *testing.T) {
	auvio := &listerAdapter{platform: models.Platform{Slug: "auvio"}, searchHits: []models.ContentItem{item("auvio", "a1")}}
	rtl := &listerAdapter{platform: models.Platform{Slug: "rtlplay"}, searchHits: []models.ContentItem{item("rtlplay", "r1")}}
	svc := newService(t, nil, auvio, rtl, &bareAdapter{platform: models.Platform{Slug: "matele"}})

	items := svc.SearchAll(context.Background(), "test")
	require.Len(t, items, 2)
	assert.Equal(t, "a1", items[0].ID)
	assert.Equal(t, "r1", items[1].ID)
}

func TestSearchAllDiscardsOnCancellation(t *testing.T) {
	adapter := &listerAdapter{
		platform:   models.Platform{Slug: "auvio"},
		searchHits: []models.ContentItem{item("auvio", "a1")},
		searchWait: 50 * time.Millisecond,
	}
	svc := newService(t, nil, adapter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, svc.SearchAll(ctx, "test"), "a cancelled caller gets nothing")
}

func TestResolveLiveDispatch(t *testing.T) {
	adapter := &listerAdapter{
		platform: models.Platform{Slug: "ln24"},
		live:     &models.StreamDescriptor{URL: "https://cdn.example/live.m3u8", Transport: models.TransportHLS},
	}
	svc := newService(t, nil, adapter, &bareAdapter{platform: models.Platform{Slug: "quiet"}})

	desc, err := svc.ResolveLive(context.Background(), "ln24", "ln24")
	require.NoError(t, err)
	assert.Equal(t, models.TransportHLS, desc.Transport)

	_, err = svc.ResolveLive(context.Background(), "quiet", "x")
	assert.True(t, models.IsStreamKind(err, models.StreamNotFound))

	_, err = svc.ResolveLive(context.Background(), "nosuch", "x")
	assert.True(t, models.IsStreamKind(err, models.StreamUnknownPlatform))
}

func TestResolvePlaybackWithoutCapability(t *testing.T) {
	svc := newService(t, nil, &bareAdapter{platform: models.Platform{Slug: "ln24"}})

	_, err := svc.ResolvePlayback(context.Background(), "ln24", "asset")
	assert.True(t, models.IsStreamKind(err, models.StreamNotFound))
}
