package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/service"
)

// ContentHandler handles catalog browsing endpoints.
type ContentHandler struct {
	content *service.ContentService
}

// NewContentHandler creates a new content handler.
func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// Register registers the content routes with the API.
func (h *ContentHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listCategories",
		Method:      "GET",
		Path:        "/api/v1/platforms/{slug}/categories",
		Summary:     "List a platform's categories",
		Description: "Returns the platform's home catalog, one shelf per category",
		Tags:        []string{"Content"},
	}, h.Categories)

	// Category identifiers are upstream paths and URLs, so they travel
	// as a query parameter rather than a path segment.
	huma.Register(api, huma.Operation{
		OperationID: "getCategoryContent",
		Method:      "GET",
		Path:        "/api/v1/platforms/{slug}/content",
		Summary:     "List one category's content",
		Tags:        []string{"Content"},
	}, h.CategoryContent)
}

// CategoriesInput is the input for listing categories.
type CategoriesInput struct {
	Slug string `path:"slug" doc:"Platform slug"`
}

// CategoriesOutput is the output for listing categories.
type CategoriesOutput struct {
	Body struct {
		Categories []models.Category `json:"categories"`
	}
}

// Categories returns the platform's catalog shelves.
func (h *ContentHandler) Categories(ctx context.Context, input *CategoriesInput) (*CategoriesOutput, error) {
	categories, err := h.content.Categories(ctx, input.Slug)
	if err != nil {
		return nil, apiError(err)
	}
	out := &CategoriesOutput{}
	out.Body.Categories = categories
	return out, nil
}

// CategoryContentInput is the input for listing one category.
type CategoryContentInput struct {
	Slug     string `path:"slug" doc:"Platform slug"`
	Category string `query:"category" minLength:"1" doc:"Category identifier as returned by the categories endpoint"`
}

// CategoryContentOutput is the output for listing one category.
type CategoryContentOutput struct {
	Body struct {
		Items []models.ContentItem `json:"items"`
	}
}

// CategoryContent returns the items of one category.
func (h *ContentHandler) CategoryContent(ctx context.Context, input *CategoryContentInput) (*CategoryContentOutput, error) {
	items, err := h.content.CategoryContent(ctx, input.Slug, input.Category)
	if err != nil {
		return nil, apiError(err)
	}
	out := &CategoryContentOutput{}
	out.Body.Items = items
	return out, nil
}
