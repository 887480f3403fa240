// Package progress tracks how far the user got into each piece of
// content, backing the continue-watching shelf.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/auviostream/auviostream/internal/config"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/remotesync"
	"github.com/auviostream/auviostream/internal/store"
)

// Tracker owns the local watch-progress list and mirrors every change to
// the remote backend best-effort.
type Tracker struct {
	store  *store.Store
	sync   *remotesync.Client
	cfg    config.ProgressConfig
	logger *slog.Logger
}

// NewTracker creates a tracker.
func NewTracker(st *store.Store, sync *remotesync.Client, cfg config.ProgressConfig, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:  st,
		sync:   sync,
		cfg:    cfg,
		logger: observability.WithComponent(logger, "progress"),
	}
}

// Record stores the watch fraction for a content item.
//
// Crossing the completion threshold removes the entry instead: finished
// content has no business on a continue-watching shelf. Otherwise the
// entry is upserted to the front of the list, which is then truncated to
// the configured history limit. The remote mirror is updated after every
// local write; its failures are logged and ignored.
func (t *Tracker) Record(ctx context.Context, contentID, platformSlug string, fraction float64, snapshot models.ContentItem) error {
	entry := models.WatchProgressEntry{
		ContentID:    contentID,
		PlatformSlug: platformSlug,
		Fraction:     fraction,
		UpdatedAt:    time.Now(),
		Item:         snapshot,
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	if fraction > t.cfg.CompletionThreshold {
		return t.Remove(ctx, contentID)
	}

	entries, err := t.store.WatchProgress(ctx)
	if err != nil {
		return fmt.Errorf("loading progress list: %w", err)
	}

	// Replace in place when the item is already tracked, otherwise
	// prepend as most recent.
	replaced := false
	for i := range entries {
		if entries[i].ContentID == contentID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append([]models.WatchProgressEntry{entry}, entries...)
	}
	if len(entries) > t.cfg.HistoryLimit {
		entries = entries[:t.cfg.HistoryLimit]
	}

	if err := t.store.SaveWatchProgress(ctx, entries); err != nil {
		return fmt.Errorf("saving progress list: %w", err)
	}

	if err := t.sync.UpsertWatchHistory(ctx, entry); err != nil {
		t.logger.Warn("remote progress mirror failed",
			slog.String("content_id", contentID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// Remove deletes the entry locally and mirrors the deletion remotely.
func (t *Tracker) Remove(ctx context.Context, contentID string) error {
	entries, err := t.store.WatchProgress(ctx)
	if err != nil {
		return fmt.Errorf("loading progress list: %w", err)
	}

	filtered := entries[:0]
	for _, e := range entries {
		if e.ContentID != contentID {
			filtered = append(filtered, e)
		}
	}

	if err := t.store.SaveWatchProgress(ctx, filtered); err != nil {
		return fmt.Errorf("saving progress list: %w", err)
	}

	if err := t.sync.DeleteWatchHistory(ctx, contentID); err != nil {
		t.logger.Warn("remote progress delete failed",
			slog.String("content_id", contentID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// List returns the tracked entries, most recent first.
func (t *Tracker) List(ctx context.Context) ([]models.WatchProgressEntry, error) {
	return t.store.WatchProgress(ctx)
}

// ResumeOffsetSeconds returns where playback should resume for a content
// item, derived from the stored fraction and the snapshot's duration.
// ok is false when the item is untracked or its duration is unknown.
func (t *Tracker) ResumeOffsetSeconds(ctx context.Context, contentID string) (int, bool, error) {
	entries, err := t.store.WatchProgress(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("loading progress list: %w", err)
	}

	for _, e := range entries {
		if e.ContentID != contentID {
			continue
		}
		if e.Item.DurationSeconds <= 0 {
			return 0, false, nil
		}
		return int(e.Fraction * float64(e.Item.DurationSeconds)), true, nil
	}
	return 0, false, nil
}

// Reconcile pulls the remote history and merges entries this device has
// never seen, keeping the local list authoritative for entries it already
// tracks. Runs as a periodic background job; failures are returned for
// logging only.
func (t *Tracker) Reconcile(ctx context.Context) error {
	remote, err := t.sync.WatchHistory(ctx)
	if err != nil {
		return fmt.Errorf("fetching remote history: %w", err)
	}
	if len(remote) == 0 {
		return nil
	}

	local, err := t.store.WatchProgress(ctx)
	if err != nil {
		return fmt.Errorf("loading progress list: %w", err)
	}

	known := make(map[string]struct{}, len(local))
	for _, e := range local {
		known[e.ContentID] = struct{}{}
	}

	added := 0
	for _, e := range remote {
		if _, ok := known[e.ContentID]; ok {
			continue
		}
		local = append(local, e)
		added++
	}
	if added == 0 {
		return nil
	}
	if len(local) > t.cfg.HistoryLimit {
		local = local[:t.cfg.HistoryLimit]
	}

	if err := t.store.SaveWatchProgress(ctx, local); err != nil {
		return fmt.Errorf("saving merged progress list: %w", err)
	}
	t.logger.Info("merged remote watch history", slog.Int("added", added))
	return nil
}
