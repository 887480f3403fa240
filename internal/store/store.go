// Package store implements the local persistence layer: a small key-value
// table holding JSON documents for auth tokens, stored credentials, watch
// progress, playlists, and the device identity.
//
// The store is handed to collaborators explicitly; nothing reaches it
// through package-level state. All mutations are serialized behind a
// mutex, matching the single-logical-writer model of the data.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auviostream/auviostream/internal/database"
	"github.com/auviostream/auviostream/internal/models"
)

// Well-known keys. Each key maps to one JSON document.
const (
	keyAuthSession   = "auth-tokens"
	keyCredentials   = "user-settings"
	keyWatchProgress = "watch-progress-list"
	keyPlaylists     = "playlists"
	keyDeviceID      = "device-id"

	guideKeyPrefix = "epg-guide:"
)

// record is the backing row for one document.
type record struct {
	Key       string `gorm:"primaryKey;type:varchar(128)"`
	Value     []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

func (record) TableName() string { return "documents" }

// Store is the local persistence store.
type Store struct {
	db     *database.DB
	logger *slog.Logger
	mu     sync.Mutex
}

// New creates a store and migrates its schema.
func New(db *database.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrating document table: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// get unmarshals the document at key into out. Returns false when the key
// does not exist.
func (s *Store) get(ctx context.Context, key string, out any) (bool, error) {
	var rec record
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(rec.Value, out); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// put writes the document at key, replacing any previous value.
func (s *Store) put(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record{Key: key, Value: payload, UpdatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// delete removes the document at key. Deleting an absent key is not an error.
func (s *Store) delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Delete(&record{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// AuthSession returns the persisted session, or (nil, nil) when none exists.
func (s *Store) AuthSession(ctx context.Context) (*models.AuthSession, error) {
	var session models.AuthSession
	found, err := s.get(ctx, keyAuthSession, &session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

// SaveAuthSession persists the session.
func (s *Store) SaveAuthSession(ctx context.Context, session *models.AuthSession) error {
	return s.put(ctx, keyAuthSession, session)
}

// DeleteAuthSession removes the persisted session.
func (s *Store) DeleteAuthSession(ctx context.Context) error {
	return s.delete(ctx, keyAuthSession)
}

// Credentials returns the stored login credentials, or (nil, nil) when none
// are stored.
func (s *Store) Credentials(ctx context.Context) (*models.Credentials, error) {
	var creds models.Credentials
	found, err := s.get(ctx, keyCredentials, &creds)
	if err != nil || !found {
		return nil, err
	}
	return &creds, nil
}

// SaveCredentials persists the login credentials for silent re-login.
func (s *Store) SaveCredentials(ctx context.Context, creds *models.Credentials) error {
	return s.put(ctx, keyCredentials, creds)
}

// DeleteCredentials removes the stored credentials.
func (s *Store) DeleteCredentials(ctx context.Context) error {
	return s.delete(ctx, keyCredentials)
}

// WatchProgress returns the watch progress list, most recent first.
// An absent key yields an empty list.
func (s *Store) WatchProgress(ctx context.Context) ([]models.WatchProgressEntry, error) {
	var entries []models.WatchProgressEntry
	if _, err := s.get(ctx, keyWatchProgress, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveWatchProgress replaces the watch progress list.
func (s *Store) SaveWatchProgress(ctx context.Context, entries []models.WatchProgressEntry) error {
	return s.put(ctx, keyWatchProgress, entries)
}

// Playlists returns all stored playlists. An absent key yields an empty list.
func (s *Store) Playlists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	if _, err := s.get(ctx, keyPlaylists, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// SavePlaylists replaces the stored playlists.
func (s *Store) SavePlaylists(ctx context.Context, playlists []models.Playlist) error {
	return s.put(ctx, keyPlaylists, playlists)
}

// DeviceID returns the stable device identity, minting and persisting one
// on first call. Subsequent calls always return the same value.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	var identity models.DeviceIdentity
	found, err := s.get(ctx, keyDeviceID, &identity)
	if err != nil {
		return "", err
	}
	if found && identity.ID != "" {
		return identity.ID, nil
	}

	identity = models.DeviceIdentity{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	if err := s.put(ctx, keyDeviceID, &identity); err != nil {
		return "", err
	}
	s.logger.Info("minted device identity", slog.String("device_id", identity.ID))
	return identity.ID, nil
}

// Guide returns the cached TV guide for a date key (YYYY-MM-DD), or
// (nil, nil) when not cached.
func (s *Store) Guide(ctx context.Context, date string) ([]models.GuideChannel, error) {
	var guide []models.GuideChannel
	found, err := s.get(ctx, guideKeyPrefix+date, &guide)
	if err != nil || !found {
		return nil, err
	}
	return guide, nil
}

// SaveGuide caches the TV guide for a date key.
func (s *Store) SaveGuide(ctx context.Context, date string, guide []models.GuideChannel) error {
	return s.put(ctx, guideKeyPrefix+date, guide)
}
