// Package epg assembles the daily TV guide from the primary
// broadcaster's channel list and per-channel schedules.
package epg

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/store"
)

// dateKeyFormat keys the per-day guide cache.
const dateKeyFormat = "2006-01-02"

// Source supplies the raw guide data. The primary broadcaster's adapter
// implements it.
type Source interface {
	GuideChannels(ctx context.Context) ([]models.GuideChannel, error)
	ChannelSchedule(ctx context.Context, channelID string, day time.Time) ([]models.GuideEntry, error)
}

// Service builds and caches the daily guide.
type Service struct {
	source Source
	store  *store.Store
	logger *slog.Logger
}

// NewService creates the guide service.
func NewService(source Source, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source: source,
		store:  st,
		logger: observability.WithComponent(logger, "epg"),
	}
}

// Guide returns the guide for the day containing t, serving from the
// per-day cache when possible. Upstream failures degrade: a guide
// request never errors, it returns what could be assembled, possibly
// nothing.
func (s *Service) Guide(ctx context.Context, t time.Time) ([]models.GuideChannel, error) {
	dateKey := t.Format(dateKeyFormat)

	cached, err := s.store.Guide(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		return cached, nil
	}

	channels, err := s.source.GuideChannels(ctx)
	if err != nil {
		s.logger.Warn("guide channel list unavailable", slog.String("error", err.Error()))
		return []models.GuideChannel{}, nil
	}
	if len(channels) == 0 {
		return []models.GuideChannel{}, nil
	}

	// Schedules are independent per channel, so fetch them all at once.
	// A channel whose schedule fails stays in the guide with no entries.
	g, gctx := errgroup.WithContext(ctx)
	for i := range channels {
		g.Go(func() error {
			entries, err := s.source.ChannelSchedule(gctx, channels[i].ChannelID, t)
			if err != nil {
				s.logger.Warn("channel schedule unavailable",
					slog.String("channel_id", channels[i].ChannelID),
					slog.String("error", err.Error()),
				)
				entries = []models.GuideEntry{}
			}
			channels[i].Entries = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.store.SaveGuide(ctx, dateKey, channels); err != nil {
		s.logger.Warn("guide cache write failed", slog.String("error", err.Error()))
	}
	return channels, nil
}
