package auvio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auviostream/auviostream/internal/auth"
	"github.com/auviostream/auviostream/internal/config"
	"github.com/auviostream/auviostream/internal/database"
	"github.com/auviostream/auviostream/internal/httpclient"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/playback"
	"github.com/auviostream/auviostream/internal/store"
)

type fixture struct {
	adapter *Adapter
	store   *store.Store
	mux     *http.ServeMux
	baseURL string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	db, err := database.New(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      ":memory:",
		LogLevel: "silent",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := store.New(db, nil)
	require.NoError(t, err)

	clientCfg := httpclient.DefaultConfig()
	clientCfg.RetryAttempts = 0
	client := httpclient.New(clientCfg)

	authManager := auth.NewManager(config.AuthConfig{SessionTTL: time.Hour}, client, st, nil, nil)

	cfg := Config{
		PagesURL:       server.URL + "/pages",
		SearchURL:      server.URL + "/search",
		PartnerURL:     server.URL + "/partner",
		EntitlementURL: server.URL + "/redbee",
		PartnerKey:     "test-key",
		UserAgent:      "Chrome-web-3.0",
	}

	return &fixture{
		adapter: New(cfg, client, authManager, playback.NewResolver(client, nil), nil),
		store:   st,
		mux:     mux,
		baseURL: server.URL,
	}
}

func (f *fixture) authenticate(t *testing.T) {
	t.Helper()
	err := f.store.SaveAuthSession(context.Background(), &models.AuthSession{
		LoginCookie:      "cookie-1",
		IDToken:          "id-token",
		AccessToken:      "access-token",
		EntitlementToken: "entitlement-token",
		UserID:           "user-1",
		ExpiresAt:        time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestPlatformDescriptor(t *testing.T) {
	f := newFixture(t)
	p := f.adapter.Platform()
	assert.Equal(t, Slug, p.Slug)
	assert.True(t, p.RequiresAuth)
	assert.Equal(t, models.AuthTypeGigya, p.AuthType)
	require.NoError(t, p.Validate())
}

func TestCategoriesEnrichesRows(t *testing.T) {
	f := newFixture(t)

	f.mux.HandleFunc("/pages/home", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Chrome-web-3.0", r.URL.Query().Get("userAgent"))
		fmt.Fprintf(w, `{"data":{"widgets":[
			{"type":"HERO","content":{}},
			{"type":"CATEGORY_LIST","content":[
				{"id":1,"title":"Séries","contentPath":"%s/content/series"},
				{"id":2,"title":"Catégories","contentPath":"%s/content/cats"},
				{"id":3,"title":"Documentaires","contentPath":"%s/content/missing"}
			]}
		]}}`, f.baseURL, f.baseURL, f.baseURL)
	})
	f.mux.HandleFunc("/content/series", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": map[string]any{"content": []map[string]any{
			{"id": "v1", "title": "Ennemi public", "type": "VIDEO", "assetId": "a1", "duration": 3000},
		}}})
	})
	f.mux.HandleFunc("/content/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	categories, err := f.adapter.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2, "editorial rows are excluded")

	assert.Equal(t, "Séries", categories[0].Title)
	require.Len(t, categories[0].Items, 1)
	assert.Equal(t, "Ennemi public", categories[0].Items[0].Title)
	assert.Equal(t, models.KindVideo, categories[0].Items[0].Kind)

	assert.Equal(t, "Documentaires", categories[1].Title)
	assert.Empty(t, categories[1].Items, "a failing row degrades to empty, not an error")
}

func TestCategoriesUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/pages/home", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := f.adapter.Categories(context.Background())
	assert.True(t, models.IsStreamKind(err, models.StreamUpstreamError))
}

func TestSearchMapsResults(t *testing.T) {
	f := newFixture(t)
	f.authenticate(t)

	f.mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		assert.Equal(t, "Bearer entitlement-token", r.Header.Get("x-rtbf-redbee"))
		assert.Equal(t, "télé locale", r.URL.Query().Get("query"))
		writeJSON(w, map[string]any{"data": map[string]any{"results": []map[string]any{
			{"id": "v1", "title": "Le JT", "type": "VIDEO", "assetId": "a1", "duration": 1800},
			{"id": "p1", "title": "Une brique dans le ventre", "type": "PROGRAM"},
			{"id": "x1", "title": "Ignored", "type": "CHANNEL"},
		}}})
	})

	items := f.adapter.Search(context.Background(), "télé locale")
	require.Len(t, items, 2, "unknown result types are skipped")
	assert.Equal(t, models.KindVideo, items[0].Kind)
	assert.Equal(t, models.KindProgram, items[1].Kind)
}

func TestSearchWithoutSessionReturnsEmpty(t *testing.T) {
	f := newFixture(t)

	called := false
	f.mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) { called = true })

	items := f.adapter.Search(context.Background(), "anything")
	assert.Empty(t, items)
	assert.False(t, called, "no upstream call without a session")
}

func TestSearchUpstreamFailureReturnsEmpty(t *testing.T) {
	f := newFixture(t)
	f.authenticate(t)
	f.mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	assert.Empty(t, f.adapter.Search(context.Background(), "anything"))
}

func TestLiveChannels(t *testing.T) {
	f := newFixture(t)

	f.mux.HandleFunc("/partner/generic/live/planninglist", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("partner_key"))
		assert.Equal(t, "media", q.Get("target_site"))
		writeJSON(w, []map[string]any{
			{"id": "123", "external_id": "LIVE_LA_UNE", "title": "La Une"},
			{"id": "124", "title": "Tipik"},
		})
	})

	channels, err := f.adapter.LiveChannels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "LIVE_LA_UNE", channels[0].ID, "external id wins when present")
	assert.Equal(t, "124", channels[1].ID)
	assert.Equal(t, models.KindLive, channels[0].Kind)
}

func TestResolvePlayback(t *testing.T) {
	f := newFixture(t)
	f.authenticate(t)

	f.mux.HandleFunc("/redbee/entitlement/asset-1/play", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer entitlement-token", r.Header.Get("Authorization"))
		assert.Equal(t, "dash,hls,mss,mp3,aac", r.URL.Query().Get("supportedFormats"))
		assert.Equal(t, "widevine", r.URL.Query().Get("supportedDrms"))
		writeJSON(w, map[string]any{"formats": []map[string]any{
			{"format": "HLS", "mediaLocator": "https://cdn.example/clear.m3u8"},
		}})
	})

	desc, err := f.adapter.ResolvePlayback(context.Background(), "asset-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/clear.m3u8", desc.URL)
	assert.Equal(t, models.TransportHLS, desc.Transport)
}

func TestResolvePlaybackNotEntitled(t *testing.T) {
	f := newFixture(t)
	f.authenticate(t)

	f.mux.HandleFunc("/redbee/entitlement/premium/play", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"NOT_ENTITLED"}`)
	})

	_, err := f.adapter.ResolvePlayback(context.Background(), "premium")
	assert.True(t, models.IsStreamKind(err, models.StreamNotEntitled))
}

func TestResolvePlaybackRequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	_, err := f.adapter.ResolvePlayback(context.Background(), "asset-1")
	assert.True(t, models.IsStreamKind(err, models.StreamAuthenticationRequired))
}

func TestResolveLiveStreamDelegatesToPlayback(t *testing.T) {
	f := newFixture(t)
	f.authenticate(t)

	f.mux.HandleFunc("/redbee/entitlement/LIVE_LA_UNE/play", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"formats": []map[string]any{
			{"format": "DASH", "mediaLocator": "https://cdn.example/live.mpd"},
		}})
	})

	desc, err := f.adapter.ResolveLiveStream(context.Background(), "LIVE_LA_UNE")
	require.NoError(t, err)
	assert.Equal(t, models.TransportDASH, desc.Transport)
}

func TestProgramVideos(t *testing.T) {
	f := newFixture(t)

	f.mux.HandleFunc("/partner/generic/media/objectlist", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "prog-7", q.Get("program_id"))
		assert.Equal(t, "complete", q.Get("content_type"))
		assert.Equal(t, "mediaz", q.Get("target_site"))
		writeJSON(w, []map[string]any{
			{"id": "e1", "title": "Épisode 1", "duration": 2600},
			{"id": "e2", "title": "Épisode 2", "duration": 2700},
		})
	})

	items, err := f.adapter.ProgramVideos(context.Background(), "prog-7")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "prog-7", items[0].ProgramID)
	assert.Equal(t, 1, items[0].EpisodeNumber, "episode number parsed from the title")
}

func TestVideoDetailsStripsIDSuffix(t *testing.T) {
	f := newFixture(t)

	f.mux.HandleFunc("/partner/generic/media/objectlist", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3096224", r.URL.Query().Get("id"))
		writeJSON(w, []map[string]any{
			{"id": "3096224", "title": "Les Niouzz"},
		})
	})

	item, err := f.adapter.VideoDetails(context.Background(), "3096224_suffix")
	require.NoError(t, err)
	assert.Equal(t, "Les Niouzz", item.Title)
}

func TestVideoDetailsNotFound(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/partner/generic/media/objectlist", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{})
	})

	_, err := f.adapter.VideoDetails(context.Background(), "unknown")
	assert.True(t, models.IsStreamKind(err, models.StreamNotFound))
}

func TestGuideChannelsFiltersNonTV(t *testing.T) {
	f := newFixture(t)

	f.mux.HandleFunc("/partner/generic/epg/channellist", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tv", r.URL.Query().Get("type"))
		writeJSON(w, []map[string]any{
			{"id": 1, "name": "La Une", "type": "tv",
				"images": map[string]any{"cover": map[string]any{"1x1": map[string]any{"370x370": "https://img.example/laune.png"}}}},
			{"id": 2, "label": "Classic 21", "type": "radio"},
			{"id": 3, "label": "Tipik", "type": "tv"},
		})
	})

	channels, err := f.adapter.GuideChannels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "1", channels[0].ChannelID)
	assert.Equal(t, "La Une", channels[0].Name)
	assert.Equal(t, "https://img.example/laune.png", channels[0].LogoURL)
	assert.Equal(t, "Tipik", channels[1].Name, "label used when name is empty")
}

func TestChannelSchedule(t *testing.T) {
	f := newFixture(t)

	var seen url.Values
	f.mux.HandleFunc("/partner/generic/epg/programmelist", func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query()
		writeJSON(w, []map[string]any{
			{"id": 10, "title": "Le 13 heures", "start_date": "2026-09-01T13:00:00+02:00",
				"end_date": "2026-09-01T13:45:00+02:00", "external_id": "JT_13H"},
		})
	})

	day := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	entries, err := f.adapter.ChannelSchedule(context.Background(), "1", day)
	require.NoError(t, err)

	assert.Equal(t, "1", seen.Get("channel_id"))
	assert.Equal(t, "2026-09-01T00:00:00Z", seen.Get("start_date"))
	assert.Equal(t, "2026-09-01T23:59:59Z", seen.Get("end_date"))

	require.Len(t, entries, 1)
	assert.Equal(t, "Le 13 heures", entries[0].Title)
	assert.Equal(t, "JT_13H", entries[0].ContentID)
	assert.Equal(t, "1", entries[0].ChannelID)
}
