package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/service"
)

// PlatformHandler handles platform registry endpoints.
type PlatformHandler struct {
	content *service.ContentService
}

// NewPlatformHandler creates a new platform handler.
func NewPlatformHandler(content *service.ContentService) *PlatformHandler {
	return &PlatformHandler{content: content}
}

// Register registers the platform routes with the API.
func (h *PlatformHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listPlatforms",
		Method:      "GET",
		Path:        "/api/v1/platforms",
		Summary:     "List platforms",
		Description: "Returns every platform known to the registry",
		Tags:        []string{"Platforms"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "getPlatform",
		Method:      "GET",
		Path:        "/api/v1/platforms/{slug}",
		Summary:     "Get platform by slug",
		Tags:        []string{"Platforms"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "refreshPlatforms",
		Method:      "POST",
		Path:        "/api/v1/platforms/refresh",
		Summary:     "Refresh the platform registry",
		Description: "Re-seeds the remote directory and reloads the cached registry",
		Tags:        []string{"Platforms"},
	}, h.Refresh)
}

// ListPlatformsOutput is the output for listing platforms.
type ListPlatformsOutput struct {
	Body struct {
		Platforms []models.Platform `json:"platforms"`
	}
}

// List returns every registered platform.
func (h *PlatformHandler) List(ctx context.Context, _ *struct{}) (*ListPlatformsOutput, error) {
	out := &ListPlatformsOutput{}
	out.Body.Platforms = h.content.Platforms(ctx)
	return out, nil
}

// GetPlatformInput is the input for fetching one platform.
type GetPlatformInput struct {
	Slug string `path:"slug" doc:"Platform slug"`
}

// GetPlatformOutput is the output for fetching one platform.
type GetPlatformOutput struct {
	Body models.Platform
}

// Get returns one platform descriptor.
func (h *PlatformHandler) Get(ctx context.Context, input *GetPlatformInput) (*GetPlatformOutput, error) {
	platform, err := h.content.PlatformBySlug(ctx, input.Slug)
	if err != nil {
		return nil, apiError(err)
	}
	return &GetPlatformOutput{Body: *platform}, nil
}

// RefreshOutput is the output for the refresh endpoint.
type RefreshOutput struct {
	Body struct {
		Platforms []models.Platform `json:"platforms"`
	}
}

// Refresh re-seeds and reloads the platform registry.
func (h *PlatformHandler) Refresh(ctx context.Context, _ *struct{}) (*RefreshOutput, error) {
	if err := h.content.RefreshRegistry(ctx); err != nil {
		return nil, apiError(err)
	}
	out := &RefreshOutput{}
	out.Body.Platforms = h.content.Platforms(ctx)
	return out, nil
}
