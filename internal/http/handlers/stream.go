package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/service"
)

// StreamHandler handles live channel listing and stream resolution.
type StreamHandler struct {
	content *service.ContentService
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(content *service.ContentService) *StreamHandler {
	return &StreamHandler{content: content}
}

// Register registers the stream routes with the API.
func (h *StreamHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listLiveChannels",
		Method:      "GET",
		Path:        "/api/v1/platforms/{slug}/live",
		Summary:     "List a platform's live channels",
		Tags:        []string{"Streams"},
	}, h.LiveChannels)

	huma.Register(api, huma.Operation{
		OperationID: "resolveLiveStream",
		Method:      "GET",
		Path:        "/api/v1/platforms/{slug}/live/{channel}/stream",
		Summary:     "Resolve a live channel to a playable stream",
		Description: "Descriptors are ephemeral; resolve again for every playback",
		Tags:        []string{"Streams"},
	}, h.ResolveLive)

	huma.Register(api, huma.Operation{
		OperationID: "resolvePlaybackStream",
		Method:      "GET",
		Path:        "/api/v1/platforms/{slug}/videos/{asset}/stream",
		Summary:     "Resolve an on-demand asset to a playable stream",
		Tags:        []string{"Streams"},
	}, h.ResolvePlayback)
}

// LiveChannelsInput is the input for listing live channels.
type LiveChannelsInput struct {
	Slug string `path:"slug" doc:"Platform slug"`
}

// LiveChannelsOutput is the output for listing live channels.
type LiveChannelsOutput struct {
	Body struct {
		Channels []models.ContentItem `json:"channels"`
	}
}

// LiveChannels returns the platform's live channels.
func (h *StreamHandler) LiveChannels(ctx context.Context, input *LiveChannelsInput) (*LiveChannelsOutput, error) {
	channels, err := h.content.LiveChannels(ctx, input.Slug)
	if err != nil {
		return nil, apiError(err)
	}
	out := &LiveChannelsOutput{}
	out.Body.Channels = channels
	return out, nil
}

// ResolveLiveInput is the input for live stream resolution.
type ResolveLiveInput struct {
	Slug    string `path:"slug" doc:"Platform slug"`
	Channel string `path:"channel" doc:"Channel identifier"`
}

// StreamOutput carries a resolved stream descriptor.
type StreamOutput struct {
	Body models.StreamDescriptor
}

// ResolveLive resolves a live channel to a stream descriptor.
func (h *StreamHandler) ResolveLive(ctx context.Context, input *ResolveLiveInput) (*StreamOutput, error) {
	desc, err := h.content.ResolveLive(ctx, input.Slug, input.Channel)
	if err != nil {
		return nil, apiError(err)
	}
	return &StreamOutput{Body: *desc}, nil
}

// ResolvePlaybackInput is the input for on-demand stream resolution.
type ResolvePlaybackInput struct {
	Slug  string `path:"slug" doc:"Platform slug"`
	Asset string `path:"asset" doc:"Asset identifier"`
}

// ResolvePlayback resolves an on-demand asset to a stream descriptor.
func (h *StreamHandler) ResolvePlayback(ctx context.Context, input *ResolvePlaybackInput) (*StreamOutput, error) {
	desc, err := h.content.ResolvePlayback(ctx, input.Slug, input.Asset)
	if err != nil {
		return nil, apiError(err)
	}
	return &StreamOutput{Body: *desc}, nil
}
