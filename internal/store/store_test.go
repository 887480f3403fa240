package store

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auviostream/auviostream/internal/config"
	"github.com/auviostream/auviostream/internal/database"
	"github.com/auviostream/auviostream/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      ":memory:",
		LogLevel: "silent",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(db, nil)
	require.NoError(t, err)
	return s
}

func TestAuthSessionRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session, err := s.AuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session, "absent session reads as nil")

	want := &models.AuthSession{
		LoginCookie:      "cookie",
		IDToken:          "jwt",
		AccessToken:      "access",
		EntitlementToken: "ent",
		UserID:           "uid-1",
		ExpiresAt:        time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, s.SaveAuthSession(ctx, want))

	got, err := s.AuthSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, s.DeleteAuthSession(ctx))
	got, err = s.AuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCredentialsRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	creds, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)

	require.NoError(t, s.SaveCredentials(ctx, &models.Credentials{
		Email:    "viewer@example.be",
		Password: "hunter2",
	}))

	creds, err = s.Credentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "viewer@example.be", creds.Email)

	require.NoError(t, s.DeleteCredentials(ctx))
	creds, err = s.Credentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestWatchProgressRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries, err := s.WatchProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	want := []models.WatchProgressEntry{
		{ContentID: "a", PlatformSlug: "auvio", Fraction: 0.3},
		{ContentID: "b", PlatformSlug: "rtlplay", Fraction: 0.7},
	}
	require.NoError(t, s.SaveWatchProgress(ctx, want))

	entries, err = s.WatchProgress(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ContentID)
}

func TestPlaylistsRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := []models.Playlist{{
		ID:    models.NewULID(),
		Name:  "Soirée docu",
		Items: []models.ContentItem{{ID: "x", PlatformSlug: "auvio", Title: "Docu", Kind: models.KindVideo}},
	}}
	require.NoError(t, s.SavePlaylists(ctx, want))

	got, err := s.Playlists(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want[0].ID, got[0].ID)
	assert.Equal(t, "Soirée docu", got[0].Name)
}

func TestDeviceIDStable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.DeviceID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := s.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second, "device id is minted once and persists")
}

func TestGuideCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	guide, err := s.Guide(ctx, "2026-09-01")
	require.NoError(t, err)
	assert.Nil(t, guide)

	want := []models.GuideChannel{{ChannelID: "laune", Name: "La Une", Entries: []models.GuideEntry{
		{ChannelID: "laune", Title: "JT 19h30", Start: "19:30", End: "20:15"},
	}}}
	require.NoError(t, s.SaveGuide(ctx, "2026-09-01", want))

	guide, err = s.Guide(ctx, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, guide, 1)
	assert.Equal(t, "La Une", guide[0].Name)
}

func TestExportImportRoundtrip(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, src.SaveCredentials(ctx, &models.Credentials{Email: "a@b.be", Password: "pw"}))
	require.NoError(t, src.SaveWatchProgress(ctx, []models.WatchProgressEntry{
		{ContentID: "m1", PlatformSlug: "auvio", Fraction: 0.4},
	}))

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, &buf))
	assert.NotZero(t, buf.Len())

	dst := newTestStore(t)
	require.NoError(t, dst.Import(ctx, &buf))

	creds, err := dst.Credentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "a@b.be", creds.Email)

	entries, err := dst.WatchProgress(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "m1", entries[0].ContentID)
}
