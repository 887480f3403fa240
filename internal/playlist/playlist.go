// Package playlist provides local playlist management with a best-effort
// remote mirror.
package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/remotesync"
	"github.com/auviostream/auviostream/internal/store"
)

// Service manages playlists. The local store is authoritative; remote
// mirror failures are logged and ignored.
type Service struct {
	store  *store.Store
	sync   *remotesync.Client
	logger *slog.Logger
}

// NewService creates a playlist service.
func NewService(st *store.Store, sync *remotesync.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		sync:   sync,
		logger: observability.WithComponent(logger, "playlist"),
	}
}

// List returns all playlists.
func (s *Service) List(ctx context.Context) ([]models.Playlist, error) {
	return s.store.Playlists(ctx)
}

// Get returns one playlist by id, or models.ErrPlaylistNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.Playlist, error) {
	playlists, err := s.store.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		if playlists[i].ID.String() == id {
			return &playlists[i], nil
		}
	}
	return nil, models.ErrPlaylistNotFound
}

// Create makes a new empty playlist.
func (s *Service) Create(ctx context.Context, name string) (*models.Playlist, error) {
	playlist := models.Playlist{
		ID:        models.NewULID(),
		Name:      name,
		Items:     []models.ContentItem{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := playlist.Validate(); err != nil {
		return nil, err
	}

	playlists, err := s.store.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	playlists = append(playlists, playlist)

	if err := s.store.SavePlaylists(ctx, playlists); err != nil {
		return nil, fmt.Errorf("saving playlists: %w", err)
	}
	s.mirror(ctx, playlist)
	return &playlist, nil
}

// Delete removes a playlist locally and remotely.
func (s *Service) Delete(ctx context.Context, id string) error {
	playlists, err := s.store.Playlists(ctx)
	if err != nil {
		return err
	}

	filtered := playlists[:0]
	found := false
	for _, p := range playlists {
		if p.ID.String() == id {
			found = true
			continue
		}
		filtered = append(filtered, p)
	}
	if !found {
		return models.ErrPlaylistNotFound
	}

	if err := s.store.SavePlaylists(ctx, filtered); err != nil {
		return fmt.Errorf("saving playlists: %w", err)
	}
	if err := s.sync.DeletePlaylist(ctx, id); err != nil {
		s.logger.Warn("remote playlist delete failed",
			slog.String("playlist_id", id),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// AddItem prepends an item to a playlist. Adding an item the playlist
// already holds is a no-op, keyed by content id.
func (s *Service) AddItem(ctx context.Context, id string, item models.ContentItem) (*models.Playlist, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(p *models.Playlist) {
		if p.Contains(item.ID) {
			return
		}
		p.Items = append([]models.ContentItem{item}, p.Items...)
	})
}

// RemoveItem removes an item from a playlist by content id.
func (s *Service) RemoveItem(ctx context.Context, id, contentID string) (*models.Playlist, error) {
	return s.update(ctx, id, func(p *models.Playlist) {
		filtered := p.Items[:0]
		for _, item := range p.Items {
			if item.ID != contentID {
				filtered = append(filtered, item)
			}
		}
		p.Items = filtered
	})
}

// update applies fn to the playlist with the given id and persists the
// whole list.
func (s *Service) update(ctx context.Context, id string, fn func(*models.Playlist)) (*models.Playlist, error) {
	playlists, err := s.store.Playlists(ctx)
	if err != nil {
		return nil, err
	}

	for i := range playlists {
		if playlists[i].ID.String() != id {
			continue
		}

		fn(&playlists[i])
		playlists[i].UpdatedAt = time.Now()

		if err := s.store.SavePlaylists(ctx, playlists); err != nil {
			return nil, fmt.Errorf("saving playlists: %w", err)
		}
		s.mirror(ctx, playlists[i])
		return &playlists[i], nil
	}
	return nil, models.ErrPlaylistNotFound
}

func (s *Service) mirror(ctx context.Context, playlist models.Playlist) {
	if err := s.sync.UpsertPlaylist(ctx, playlist); err != nil {
		s.logger.Warn("remote playlist mirror failed",
			slog.String("playlist_id", playlist.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}
