package cast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auviostream/auviostream/internal/models"
)

type fakeSender struct {
	available    bool
	loaded       []MediaRequest
	stopped      int
	unsubscribed int
}

func (f *fakeSender) Available() bool { return f.available }

func (f *fakeSender) LoadMedia(ctx context.Context, req MediaRequest) error {
	f.loaded = append(f.loaded, req)
	return nil
}

func (f *fakeSender) Stop(ctx context.Context) error {
	f.stopped++
	return nil
}

func (f *fakeSender) SubscribeSessionState(fn func(SessionState)) func() {
	return func() { f.unsubscribed++ }
}

func (f *fakeSender) SubscribePlayerState(fn func(PlayerState)) func() {
	return func() { f.unsubscribed++ }
}

func TestNilControllerIsSafe(t *testing.T) {
	var c *Controller

	assert.False(t, c.Available())
	assert.ErrorIs(t, c.LoadMedia(context.Background(), MediaRequest{}), ErrUnavailable)
	assert.ErrorIs(t, c.Stop(context.Background()), ErrUnavailable)

	unsubscribe := c.SubscribeSessionState(func(SessionState) {})
	require.NotNil(t, unsubscribe)
	unsubscribe()
}

func TestControllerWithoutSender(t *testing.T) {
	c := NewController(nil, nil)

	assert.False(t, c.Available())
	assert.ErrorIs(t, c.LoadMedia(context.Background(), MediaRequest{}), ErrUnavailable)

	unsubscribe := c.SubscribePlayerState(func(PlayerState) {})
	require.NotNil(t, unsubscribe)
	unsubscribe()
}

func TestControllerDelegates(t *testing.T) {
	sender := &fakeSender{available: true}
	c := NewController(sender, nil)

	require.True(t, c.Available())
	require.NoError(t, c.LoadMedia(context.Background(), MediaRequest{Locator: "https://cdn.example/live.m3u8"}))
	require.Len(t, sender.loaded, 1)

	require.NoError(t, c.Stop(context.Background()))
	assert.Equal(t, 1, sender.stopped)

	unsubscribe := c.SubscribeSessionState(func(SessionState) {})
	unsubscribe()
	assert.Equal(t, 1, sender.unsubscribed)
}

func TestControllerUnavailableReceiver(t *testing.T) {
	c := NewController(&fakeSender{available: false}, nil)

	assert.False(t, c.Available())
	assert.ErrorIs(t, c.LoadMedia(context.Background(), MediaRequest{}), ErrUnavailable)
}

func TestBuildRequestBuffered(t *testing.T) {
	item := models.ContentItem{
		ID: "v1", PlatformSlug: "auvio", Title: "Ennemi public",
		Subtitle: "Saison 2", Thumbnail: "https://img.example/v1.jpg",
		Kind: models.KindVideo,
	}
	desc := &models.StreamDescriptor{
		URL:       "https://cdn.example/v1.mpd",
		Transport: models.TransportDASH,
		DRM:       &models.DRMInfo{LicenseURL: "https://license.example/wv"},
	}

	req := BuildRequest(item, desc, 600)
	assert.Equal(t, StyleBuffered, req.Style)
	assert.Equal(t, "application/dash+xml", req.ContentType)
	assert.Equal(t, 600, req.ResumeOffsetSeconds)
	assert.Equal(t, "https://license.example/wv", req.LicenseURL)
}

func TestBuildRequestLiveIgnoresResume(t *testing.T) {
	item := models.ContentItem{ID: "ln24", PlatformSlug: "ln24", Title: "LN24", Kind: models.KindLive}
	desc := &models.StreamDescriptor{URL: "https://cdn.example/live.m3u8", Transport: models.TransportHLS}

	req := BuildRequest(item, desc, 600)
	assert.Equal(t, StyleLive, req.Style)
	assert.Equal(t, 0, req.ResumeOffsetSeconds, "live streams never resume mid-way")
	assert.Equal(t, "application/x-mpegurl", req.ContentType)
	assert.Empty(t, req.LicenseURL)
}
