// Package cast defines the capability boundary for sending playback to
// a remote receiver. The daemon itself carries no receiver protocol; a
// Sender implementation is injected when one exists, and everything here
// stays safe to call when it does not.
package cast

import (
	"context"
	"errors"
	"log/slog"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/observability"
)

// ErrUnavailable is returned by every operation when no sender is wired
// in or the sender reports no reachable receiver.
var ErrUnavailable = errors.New("cast: no receiver available")

// StreamStyle tells the receiver how to buffer.
type StreamStyle string

const (
	// StyleBuffered is for on-demand assets.
	StyleBuffered StreamStyle = "buffered"
	// StyleLive is for live streams; the receiver must not seek.
	StyleLive StreamStyle = "live"
)

// SessionState is the receiver connection state.
type SessionState string

const (
	SessionConnected    SessionState = "connected"
	SessionDisconnected SessionState = "disconnected"
)

// PlayerState is a snapshot of remote playback.
type PlayerState struct {
	Playing        bool
	PositionSecond int
	ContentID      string
}

// MediaRequest describes what the receiver should load.
type MediaRequest struct {
	Locator             string
	ContentType         string
	Style               StreamStyle
	Title               string
	Subtitle            string
	ImageURL            string
	ResumeOffsetSeconds int
	LicenseURL          string
}

// Sender is implemented by an actual receiver integration.
type Sender interface {
	Available() bool
	LoadMedia(ctx context.Context, req MediaRequest) error
	Stop(ctx context.Context) error
	SubscribeSessionState(fn func(SessionState)) (unsubscribe func())
	SubscribePlayerState(fn func(PlayerState)) (unsubscribe func())
}

// Controller wraps an optional Sender. A nil sender, or a nil
// *Controller, degrades every operation to ErrUnavailable rather than
// panicking.
type Controller struct {
	sender Sender
	logger *slog.Logger
}

// NewController creates a controller around an optional sender.
func NewController(sender Sender, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		sender: sender,
		logger: observability.WithComponent(logger, "cast"),
	}
}

// Available reports whether a receiver can be reached right now.
func (c *Controller) Available() bool {
	return c != nil && c.sender != nil && c.sender.Available()
}

// LoadMedia sends a media request to the receiver.
func (c *Controller) LoadMedia(ctx context.Context, req MediaRequest) error {
	if !c.Available() {
		return ErrUnavailable
	}
	c.logger.Info("loading media on receiver",
		slog.String("content_type", req.ContentType),
		slog.String("style", string(req.Style)),
	)
	return c.sender.LoadMedia(ctx, req)
}

// Stop ends remote playback.
func (c *Controller) Stop(ctx context.Context) error {
	if !c.Available() {
		return ErrUnavailable
	}
	return c.sender.Stop(ctx)
}

// SubscribeSessionState registers a session listener. The returned
// function always tears the subscription down and is never nil.
func (c *Controller) SubscribeSessionState(fn func(SessionState)) func() {
	if c == nil || c.sender == nil {
		return func() {}
	}
	return c.sender.SubscribeSessionState(fn)
}

// SubscribePlayerState registers a playback listener. The returned
// function always tears the subscription down and is never nil.
func (c *Controller) SubscribePlayerState(fn func(PlayerState)) func() {
	if c == nil || c.sender == nil {
		return func() {}
	}
	return c.sender.SubscribePlayerState(fn)
}

// BuildRequest derives a media request from a resolved stream and the
// item it plays.
func BuildRequest(item models.ContentItem, desc *models.StreamDescriptor, resumeOffsetSeconds int) MediaRequest {
	req := MediaRequest{
		Locator:             desc.URL,
		ContentType:         contentTypeFor(desc.Transport),
		Style:               StyleBuffered,
		Title:               item.Title,
		Subtitle:            item.Subtitle,
		ImageURL:            item.Thumbnail,
		ResumeOffsetSeconds: resumeOffsetSeconds,
	}
	if item.Kind == models.KindLive {
		req.Style = StyleLive
		req.ResumeOffsetSeconds = 0
	}
	if desc.DRM != nil {
		req.LicenseURL = desc.DRM.LicenseURL
	}
	return req
}

func contentTypeFor(transport models.StreamTransport) string {
	switch transport {
	case models.TransportDASH:
		return "application/dash+xml"
	case models.TransportHLS:
		return "application/x-mpegurl"
	case models.TransportAudio:
		return "audio/mpeg"
	default:
		return "video/mp4"
	}
}
