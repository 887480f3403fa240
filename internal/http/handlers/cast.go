package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/cast"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/progress"
	"github.com/auviostream/auviostream/internal/service"
)

// CastHandler handles remote receiver endpoints.
type CastHandler struct {
	controller *cast.Controller
	content    *service.ContentService
	tracker    *progress.Tracker
}

// NewCastHandler creates a new cast handler.
func NewCastHandler(controller *cast.Controller, content *service.ContentService, tracker *progress.Tracker) *CastHandler {
	return &CastHandler{
		controller: controller,
		content:    content,
		tracker:    tracker,
	}
}

// Register registers the cast routes with the API.
func (h *CastHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getCastStatus",
		Method:      "GET",
		Path:        "/api/v1/cast/status",
		Summary:     "Receiver availability",
		Tags:        []string{"Cast"},
	}, h.Status)

	huma.Register(api, huma.Operation{
		OperationID: "castLoad",
		Method:      "POST",
		Path:        "/api/v1/cast/load",
		Summary:     "Play a content item on the receiver",
		Description: "Resolves the stream, applies the stored resume offset and loads the receiver",
		Tags:        []string{"Cast"},
	}, h.Load)

	huma.Register(api, huma.Operation{
		OperationID: "castStop",
		Method:      "POST",
		Path:        "/api/v1/cast/stop",
		Summary:     "Stop remote playback",
		Tags:        []string{"Cast"},
	}, h.Stop)
}

// CastStatusOutput is the output for the status endpoint.
type CastStatusOutput struct {
	Body struct {
		Available bool `json:"available"`
	}
}

// Status reports whether a receiver can be reached.
func (h *CastHandler) Status(ctx context.Context, _ *struct{}) (*CastStatusOutput, error) {
	out := &CastStatusOutput{}
	out.Body.Available = h.controller.Available()
	return out, nil
}

// CastLoadInput is the input for the load endpoint.
type CastLoadInput struct {
	Body struct {
		Item models.ContentItem `json:"item" doc:"Item to play; its platform slug and kind drive resolution"`
	}
}

// CastLoadOutput is the output for the load endpoint.
type CastLoadOutput struct {
	Body struct {
		Success             bool   `json:"success"`
		ResumeOffsetSeconds int    `json:"resume_offset_seconds"`
		Transport           string `json:"transport"`
	}
}

// Load resolves the item's stream and sends it to the receiver.
func (h *CastHandler) Load(ctx context.Context, input *CastLoadInput) (*CastLoadOutput, error) {
	item := input.Body.Item
	if err := item.Validate(); err != nil {
		return nil, apiError(err)
	}
	if !h.controller.Available() {
		return nil, huma.NewError(http.StatusServiceUnavailable, "Aucun récepteur disponible")
	}

	var (
		desc *models.StreamDescriptor
		err  error
	)
	if item.Kind == models.KindLive {
		desc, err = h.content.ResolveLive(ctx, item.PlatformSlug, item.ID)
	} else {
		desc, err = h.content.ResolvePlayback(ctx, item.PlatformSlug, item.ID)
	}
	if err != nil {
		return nil, apiError(err)
	}

	offset := 0
	if item.Kind != models.KindLive {
		if o, ok, err := h.tracker.ResumeOffsetSeconds(ctx, item.ID); err == nil && ok {
			offset = o
		}
	}

	req := cast.BuildRequest(item, desc, offset)
	if err := h.controller.LoadMedia(ctx, req); err != nil {
		if errors.Is(err, cast.ErrUnavailable) {
			return nil, huma.NewError(http.StatusServiceUnavailable, "Aucun récepteur disponible")
		}
		return nil, apiError(err)
	}

	out := &CastLoadOutput{}
	out.Body.Success = true
	out.Body.ResumeOffsetSeconds = req.ResumeOffsetSeconds
	out.Body.Transport = string(desc.Transport)
	return out, nil
}

// CastStopOutput is the output for the stop endpoint.
type CastStopOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// Stop ends playback on the receiver.
func (h *CastHandler) Stop(ctx context.Context, _ *struct{}) (*CastStopOutput, error) {
	if err := h.controller.Stop(ctx); err != nil {
		if errors.Is(err, cast.ErrUnavailable) {
			return nil, huma.NewError(http.StatusServiceUnavailable, "Aucun récepteur disponible")
		}
		return nil, apiError(err)
	}
	out := &CastStopOutput{}
	out.Body.Success = true
	return out, nil
}
