package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/remotesync"
)

// FavoritesHandler handles the remotely-synced favorites collection.
// With remote sync disabled the list is empty and writes are no-ops,
// matching the collection's best-effort contract.
type FavoritesHandler struct {
	sync *remotesync.Client
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(sync *remotesync.Client) *FavoritesHandler {
	return &FavoritesHandler{sync: sync}
}

// Register registers the favorites routes with the API.
func (h *FavoritesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listFavorites",
		Method:      "GET",
		Path:        "/api/v1/favorites",
		Summary:     "List favorited content",
		Tags:        []string{"Favorites"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "addFavorite",
		Method:      "PUT",
		Path:        "/api/v1/favorites",
		Summary:     "Favorite a content item",
		Tags:        []string{"Favorites"},
	}, h.Add)

	huma.Register(api, huma.Operation{
		OperationID: "removeFavorite",
		Method:      "DELETE",
		Path:        "/api/v1/favorites/{contentID}",
		Summary:     "Remove a favorite",
		Tags:        []string{"Favorites"},
	}, h.Remove)
}

// ListFavoritesOutput is the output for listing favorites.
type ListFavoritesOutput struct {
	Body struct {
		Items []models.ContentItem `json:"items"`
	}
}

// List returns the user's favorited items.
func (h *FavoritesHandler) List(ctx context.Context, _ *struct{}) (*ListFavoritesOutput, error) {
	items, err := h.sync.Favorites(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	out := &ListFavoritesOutput{}
	out.Body.Items = items
	return out, nil
}

// AddFavoriteInput is the input for favoriting an item.
type AddFavoriteInput struct {
	Body struct {
		Item models.ContentItem `json:"item"`
	}
}

// AddFavoriteOutput is the output for favoriting an item.
type AddFavoriteOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// Add favorites a content item.
func (h *FavoritesHandler) Add(ctx context.Context, input *AddFavoriteInput) (*AddFavoriteOutput, error) {
	if err := input.Body.Item.Validate(); err != nil {
		return nil, apiError(err)
	}
	if err := h.sync.UpsertFavorite(ctx, input.Body.Item); err != nil {
		return nil, apiError(err)
	}
	out := &AddFavoriteOutput{}
	out.Body.Success = true
	return out, nil
}

// RemoveFavoriteInput is the input for removing a favorite.
type RemoveFavoriteInput struct {
	ContentID string `path:"contentID" doc:"Content identifier"`
}

// Remove deletes one favorite.
func (h *FavoritesHandler) Remove(ctx context.Context, input *RemoveFavoriteInput) (*AddFavoriteOutput, error) {
	if err := h.sync.DeleteFavorite(ctx, input.ContentID); err != nil {
		return nil, apiError(err)
	}
	out := &AddFavoriteOutput{}
	out.Body.Success = true
	return out, nil
}
