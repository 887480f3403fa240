package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/service"
)

// SearchHandler handles the search endpoint.
type SearchHandler struct {
	content *service.ContentService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(content *service.ContentService) *SearchHandler {
	return &SearchHandler{content: content}
}

// Register registers the search route with the API.
func (h *SearchHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "search",
		Method:      "GET",
		Path:        "/api/v1/search",
		Summary:     "Search content",
		Description: "Searches one platform, or every searchable platform when none is given",
		Tags:        []string{"Content"},
	}, h.Search)
}

// SearchInput is the input for the search endpoint.
type SearchInput struct {
	Query    string `query:"q" minLength:"1" doc:"Search query; diacritics are folded before dispatch"`
	Platform string `query:"platform" doc:"Optional platform slug to restrict the search"`
}

// SearchOutput is the output for the search endpoint.
type SearchOutput struct {
	Body struct {
		Items []models.ContentItem `json:"items"`
	}
}

// Search answers a search query across one or all platforms.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	out := &SearchOutput{}

	if input.Platform != "" {
		items, err := h.content.Search(ctx, input.Platform, input.Query)
		if err != nil {
			return nil, apiError(err)
		}
		out.Body.Items = items
		return out, nil
	}

	out.Body.Items = h.content.SearchAll(ctx, input.Query)
	return out, nil
}
