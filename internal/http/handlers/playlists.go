package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/playlist"
)

// PlaylistHandler handles playlist CRUD endpoints.
type PlaylistHandler struct {
	playlists *playlist.Service
}

// NewPlaylistHandler creates a new playlist handler.
func NewPlaylistHandler(playlists *playlist.Service) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists}
}

// Register registers the playlist routes with the API.
func (h *PlaylistHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listPlaylists",
		Method:      "GET",
		Path:        "/api/v1/playlists",
		Summary:     "List playlists",
		Tags:        []string{"Playlists"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "createPlaylist",
		Method:      "POST",
		Path:        "/api/v1/playlists",
		Summary:     "Create a playlist",
		Tags:        []string{"Playlists"},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "getPlaylist",
		Method:      "GET",
		Path:        "/api/v1/playlists/{id}",
		Summary:     "Get a playlist",
		Tags:        []string{"Playlists"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "deletePlaylist",
		Method:      "DELETE",
		Path:        "/api/v1/playlists/{id}",
		Summary:     "Delete a playlist",
		Tags:        []string{"Playlists"},
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "addPlaylistItem",
		Method:      "POST",
		Path:        "/api/v1/playlists/{id}/items",
		Summary:     "Add an item to a playlist",
		Description: "Adding an item already present is a no-op",
		Tags:        []string{"Playlists"},
	}, h.AddItem)

	huma.Register(api, huma.Operation{
		OperationID: "removePlaylistItem",
		Method:      "DELETE",
		Path:        "/api/v1/playlists/{id}/items/{contentID}",
		Summary:     "Remove an item from a playlist",
		Tags:        []string{"Playlists"},
	}, h.RemoveItem)
}

// ListPlaylistsOutput is the output for listing playlists.
type ListPlaylistsOutput struct {
	Body struct {
		Playlists []models.Playlist `json:"playlists"`
	}
}

// List returns every playlist.
func (h *PlaylistHandler) List(ctx context.Context, _ *struct{}) (*ListPlaylistsOutput, error) {
	playlists, err := h.playlists.List(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	out := &ListPlaylistsOutput{}
	out.Body.Playlists = playlists
	return out, nil
}

// CreatePlaylistInput is the input for creating a playlist.
type CreatePlaylistInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" doc:"Playlist name"`
	}
}

// PlaylistOutput carries one playlist.
type PlaylistOutput struct {
	Body models.Playlist
}

// Create creates an empty playlist.
func (h *PlaylistHandler) Create(ctx context.Context, input *CreatePlaylistInput) (*PlaylistOutput, error) {
	created, err := h.playlists.Create(ctx, input.Body.Name)
	if err != nil {
		return nil, apiError(err)
	}
	return &PlaylistOutput{Body: *created}, nil
}

// GetPlaylistInput is the input for fetching one playlist.
type GetPlaylistInput struct {
	ID string `path:"id" doc:"Playlist identifier"`
}

// Get returns one playlist.
func (h *PlaylistHandler) Get(ctx context.Context, input *GetPlaylistInput) (*PlaylistOutput, error) {
	found, err := h.playlists.Get(ctx, input.ID)
	if err != nil {
		return nil, apiError(err)
	}
	return &PlaylistOutput{Body: *found}, nil
}

// DeletePlaylistInput is the input for deleting a playlist.
type DeletePlaylistInput struct {
	ID string `path:"id" doc:"Playlist identifier"`
}

// DeletePlaylistOutput is the output for deleting a playlist.
type DeletePlaylistOutput struct {
	Body struct {
		Success bool `json:"success"`
	}
}

// Delete removes one playlist.
func (h *PlaylistHandler) Delete(ctx context.Context, input *DeletePlaylistInput) (*DeletePlaylistOutput, error) {
	if err := h.playlists.Delete(ctx, input.ID); err != nil {
		return nil, apiError(err)
	}
	out := &DeletePlaylistOutput{}
	out.Body.Success = true
	return out, nil
}

// AddItemInput is the input for adding an item to a playlist.
type AddItemInput struct {
	ID   string `path:"id" doc:"Playlist identifier"`
	Body struct {
		Item models.ContentItem `json:"item"`
	}
}

// AddItem adds a content item to a playlist.
func (h *PlaylistHandler) AddItem(ctx context.Context, input *AddItemInput) (*PlaylistOutput, error) {
	updated, err := h.playlists.AddItem(ctx, input.ID, input.Body.Item)
	if err != nil {
		return nil, apiError(err)
	}
	return &PlaylistOutput{Body: *updated}, nil
}

// RemoveItemInput is the input for removing an item from a playlist.
type RemoveItemInput struct {
	ID        string `path:"id" doc:"Playlist identifier"`
	ContentID string `path:"contentID" doc:"Content identifier"`
}

// RemoveItem removes a content item from a playlist.
func (h *PlaylistHandler) RemoveItem(ctx context.Context, input *RemoveItemInput) (*PlaylistOutput, error) {
	updated, err := h.playlists.RemoveItem(ctx, input.ID, input.ContentID)
	if err != nil {
		return nil, apiError(err)
	}
	return &PlaylistOutput{Body: *updated}, nil
}
