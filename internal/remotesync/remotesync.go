// Package remotesync mirrors user state to an optional hosted Postgres
// backend and reads the shared platform registry from it.
//
// The mirror is strictly best-effort. When no DSN is configured every
// operation is a no-op returning empty results, and callers are expected
// to treat any returned error as log-only: remote failures must never
// block a local operation.
package remotesync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm/clause"

	"github.com/auviostream/auviostream/internal/config"
	"github.com/auviostream/auviostream/internal/database"
	"github.com/auviostream/auviostream/internal/models"
)

// platformRow is the shared registry table.
type platformRow struct {
	Slug         string `gorm:"primaryKey;type:varchar(64)"`
	Name         string
	Category     string
	RequiresAuth bool
	AuthType     string
	LogoURL      string
	Active       bool
	UpdatedAt    time.Time
}

func (platformRow) TableName() string { return "platforms" }

// watchHistoryRow mirrors one watch-progress entry per user and content id.
type watchHistoryRow struct {
	UserID    string `gorm:"primaryKey;type:varchar(64)"`
	ContentID string `gorm:"primaryKey;type:varchar(128)"`
	Platform  string
	Fraction  float64
	Payload   []byte
	UpdatedAt time.Time
}

func (watchHistoryRow) TableName() string { return "watch_history" }

// playlistRow mirrors one playlist per user.
type playlistRow struct {
	UserID     string `gorm:"primaryKey;type:varchar(64)"`
	PlaylistID string `gorm:"primaryKey;type:varchar(26)"`
	Payload    []byte
	UpdatedAt  time.Time
}

func (playlistRow) TableName() string { return "playlists" }

// favoriteRow mirrors one favorited content item per user.
type favoriteRow struct {
	UserID    string `gorm:"primaryKey;type:varchar(64)"`
	ContentID string `gorm:"primaryKey;type:varchar(128)"`
	Platform  string
	Payload   []byte
	UpdatedAt time.Time
}

func (favoriteRow) TableName() string { return "favorites" }

// platformAuthRow mirrors per-platform auth state for a user.
type platformAuthRow struct {
	UserID    string `gorm:"primaryKey;type:varchar(64)"`
	Platform  string `gorm:"primaryKey;type:varchar(64)"`
	Payload   []byte
	UpdatedAt time.Time
}

func (platformAuthRow) TableName() string { return "platform_auth" }

// Client talks to the remote sync backend. The zero-value-like disabled
// client (no DSN) is fully functional: every method no-ops.
type Client struct {
	db     *database.DB
	userID string
	logger *slog.Logger
}

// New opens a client against the configured Postgres backend. An empty
// DSN yields a disabled client and no connection attempt.
func New(cfg config.SyncConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DSN == "" {
		logger.Info("remote sync disabled, no DSN configured")
		return &Client{logger: logger}, nil
	}

	db, err := database.New(config.DatabaseConfig{
		Driver:   "postgres",
		DSN:      cfg.DSN,
		LogLevel: "error",
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to sync backend: %w", err)
	}

	return NewWithDB(db, cfg.UserID, logger)
}

// NewWithDB builds a client over an existing connection. Used directly by
// tests, which substitute an in-memory database.
func NewWithDB(db *database.DB, userID string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(&platformRow{}, &watchHistoryRow{}, &playlistRow{}, &favoriteRow{}, &platformAuthRow{}); err != nil {
		return nil, fmt.Errorf("migrating sync schema: %w", err)
	}
	return &Client{db: db, userID: userID, logger: logger}, nil
}

// Enabled reports whether a remote backend is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.db != nil
}

// DB exposes the underlying connection for health checks. Nil when
// remote sync is disabled.
func (c *Client) DB() *database.DB {
	if c == nil {
		return nil
	}
	return c.db
}

// Close closes the remote connection if one exists.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.db.Close()
}

// Platforms reads the shared platform registry. Disabled clients return
// an empty slice.
func (c *Client) Platforms(ctx context.Context) ([]models.Platform, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var rows []platformRow
	if err := c.db.WithContext(ctx).Where("active = ?", true).Order("slug").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reading platform registry: %w", err)
	}

	platforms := make([]models.Platform, 0, len(rows))
	for _, row := range rows {
		platforms = append(platforms, models.Platform{
			Slug:         row.Slug,
			Name:         row.Name,
			Category:     models.PlatformCategory(row.Category),
			RequiresAuth: row.RequiresAuth,
			AuthType:     models.AuthType(row.AuthType),
			LogoURL:      row.LogoURL,
			Active:       row.Active,
		})
	}
	return platforms, nil
}

// UpsertWatchHistory mirrors one progress entry, last write wins.
func (c *Client) UpsertWatchHistory(ctx context.Context, entry models.WatchProgressEntry) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding watch history entry: %w", err)
	}

	row := watchHistoryRow{
		UserID:    c.userID,
		ContentID: entry.ContentID,
		Platform:  entry.PlatformSlug,
		Fraction:  entry.Fraction,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}
	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upserting watch history: %w", err)
	}
	return nil
}

// DeleteWatchHistory removes one progress entry remotely.
func (c *Client) DeleteWatchHistory(ctx context.Context, contentID string) error {
	if !c.Enabled() {
		return nil
	}
	err := c.db.WithContext(ctx).
		Delete(&watchHistoryRow{}, "user_id = ? AND content_id = ?", c.userID, contentID).Error
	if err != nil {
		return fmt.Errorf("deleting watch history: %w", err)
	}
	return nil
}

// WatchHistory returns the user's mirrored progress entries, most recently
// updated first.
func (c *Client) WatchHistory(ctx context.Context) ([]models.WatchProgressEntry, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var rows []watchHistoryRow
	err := c.db.WithContext(ctx).
		Where("user_id = ?", c.userID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("reading watch history: %w", err)
	}

	entries := make([]models.WatchProgressEntry, 0, len(rows))
	for _, row := range rows {
		var entry models.WatchProgressEntry
		if err := json.Unmarshal(row.Payload, &entry); err != nil {
			c.logger.Warn("skipping undecodable watch history row",
				slog.String("content_id", row.ContentID),
				slog.String("error", err.Error()),
			)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// UpsertPlaylist mirrors one playlist, last write wins.
func (c *Client) UpsertPlaylist(ctx context.Context, playlist models.Playlist) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(playlist)
	if err != nil {
		return fmt.Errorf("encoding playlist: %w", err)
	}

	row := playlistRow{
		UserID:     c.userID,
		PlaylistID: playlist.ID.String(),
		Payload:    payload,
		UpdatedAt:  time.Now(),
	}
	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "playlist_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upserting playlist: %w", err)
	}
	return nil
}

// Playlists returns the mirrored playlists for this user.
func (c *Client) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var rows []playlistRow
	err := c.db.WithContext(ctx).
		Where("user_id = ?", c.userID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}

	playlists := make([]models.Playlist, 0, len(rows))
	for _, row := range rows {
		var playlist models.Playlist
		if err := json.Unmarshal(row.Payload, &playlist); err != nil {
			c.logger.Warn("skipping undecodable playlist row",
				slog.String("playlist_id", row.PlaylistID),
				slog.String("error", err.Error()),
			)
			continue
		}
		playlists = append(playlists, playlist)
	}
	return playlists, nil
}

// DeletePlaylist removes one playlist remotely.
func (c *Client) DeletePlaylist(ctx context.Context, playlistID string) error {
	if !c.Enabled() {
		return nil
	}
	err := c.db.WithContext(ctx).
		Delete(&playlistRow{}, "user_id = ? AND playlist_id = ?", c.userID, playlistID).Error
	if err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	return nil
}

// UpsertFavorite mirrors one favorited item.
func (c *Client) UpsertFavorite(ctx context.Context, item models.ContentItem) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding favorite: %w", err)
	}

	row := favoriteRow{
		UserID:    c.userID,
		ContentID: item.ID,
		Platform:  item.PlatformSlug,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}
	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upserting favorite: %w", err)
	}
	return nil
}

// DeleteFavorite removes one favorited item remotely.
func (c *Client) DeleteFavorite(ctx context.Context, contentID string) error {
	if !c.Enabled() {
		return nil
	}
	err := c.db.WithContext(ctx).
		Delete(&favoriteRow{}, "user_id = ? AND content_id = ?", c.userID, contentID).Error
	if err != nil {
		return fmt.Errorf("deleting favorite: %w", err)
	}
	return nil
}

// Favorites returns the user's favorited items.
func (c *Client) Favorites(ctx context.Context) ([]models.ContentItem, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var rows []favoriteRow
	err := c.db.WithContext(ctx).
		Where("user_id = ?", c.userID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("reading favorites: %w", err)
	}

	items := make([]models.ContentItem, 0, len(rows))
	for _, row := range rows {
		var item models.ContentItem
		if err := json.Unmarshal(row.Payload, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// UpsertPlatformAuth mirrors per-platform auth state for the user. The
// payload is opaque to the backend.
func (c *Client) UpsertPlatformAuth(ctx context.Context, platform string, payload any) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding platform auth: %w", err)
	}

	row := platformAuthRow{
		UserID:    c.userID,
		Platform:  platform,
		Payload:   data,
		UpdatedAt: time.Now(),
	}
	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upserting platform auth: %w", err)
	}
	return nil
}

// SeedPlatforms writes registry entries. Used by operators to populate a
// fresh backend and by tests.
func (c *Client) SeedPlatforms(ctx context.Context, platforms []models.Platform) error {
	if !c.Enabled() {
		return nil
	}

	for _, p := range platforms {
		row := platformRow{
			Slug:         p.Slug,
			Name:         p.Name,
			Category:     string(p.Category),
			RequiresAuth: p.RequiresAuth,
			AuthType:     string(p.AuthType),
			LogoURL:      p.LogoURL,
			Active:       p.Active,
			UpdatedAt:    time.Now(),
		}
		err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			UpdateAll: true,
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("seeding platform %s: %w", p.Slug, err)
		}
	}
	return nil
}
