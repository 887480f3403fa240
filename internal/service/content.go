// Package service orchestrates provider adapters behind a single
// content API: platform registry, catalog listing, cross-platform
// search and stream resolution dispatch.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/normalize"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/provider"
	"github.com/auviostream/auviostream/internal/remotesync"
)

// ContentService fronts the provider registry.
type ContentService struct {
	registry *provider.Registry
	sync     *remotesync.Client
	logger   *slog.Logger

	mu        sync.RWMutex
	platforms []models.Platform
}

// NewContentService creates the service.
func NewContentService(registry *provider.Registry, sync *remotesync.Client, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{
		registry: registry,
		sync:     sync,
		logger:   observability.WithComponent(logger, "content"),
	}
}

// Platforms returns the platform registry: the remote directory when one
// is configured and answers, the built-in adapter list otherwise. The
// answer is cached for the life of the process; RefreshRegistry renews
// it.
func (s *ContentService) Platforms(ctx context.Context) []models.Platform {
	s.mu.RLock()
	cached := s.platforms
	s.mu.RUnlock()
	if cached != nil {
		return cached
	}
	return s.loadPlatforms(ctx)
}

// PlatformBySlug returns one platform descriptor.
func (s *ContentService) PlatformBySlug(ctx context.Context, slug string) (*models.Platform, error) {
	for _, p := range s.Platforms(ctx) {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, models.NewStreamError(models.StreamUnknownPlatform, slug,
		fmt.Errorf("platform %q not in registry", slug))
}

// RefreshRegistry re-seeds the remote directory with the built-in list
// and reloads the cache. Runs as a periodic background job.
func (s *ContentService) RefreshRegistry(ctx context.Context) error {
	if err := s.sync.SeedPlatforms(ctx, s.registry.Platforms()); err != nil {
		s.logger.Warn("registry seed failed", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.platforms = nil
	s.mu.Unlock()

	s.loadPlatforms(ctx)
	return nil
}

func (s *ContentService) loadPlatforms(ctx context.Context) []models.Platform {
	platforms, err := s.sync.Platforms(ctx)
	if err != nil {
		s.logger.Warn("remote platform directory unavailable", slog.String("error", err.Error()))
	}
	if len(platforms) == 0 {
		platforms = s.registry.Platforms()
	}

	s.mu.Lock()
	s.platforms = platforms
	s.mu.Unlock()
	return platforms
}

// Categories lists a platform's catalog.
func (s *ContentService) Categories(ctx context.Context, slug string) ([]models.Category, error) {
	adapter, err := s.registry.Get(slug)
	if err != nil {
		return nil, err
	}
	lister, ok := adapter.(provider.ContentLister)
	if !ok {
		return []models.Category{}, nil
	}
	return lister.Categories(ctx)
}

// CategoryContent lists one category of a platform's catalog.
func (s *ContentService) CategoryContent(ctx context.Context, slug, categoryID string) ([]models.ContentItem, error) {
	adapter, err := s.registry.Get(slug)
	if err != nil {
		return nil, err
	}
	lister, ok := adapter.(provider.ContentLister)
	if !ok {
		return []models.ContentItem{}, nil
	}
	return lister.CategoryContent(ctx, categoryID)
}

// Search searches one platform. The query is diacritic-folded first so
// "Télé" and "tele" hit the same results. Platforms without search, and
// upstream failures, yield an empty list.
func (s *ContentService) Search(ctx context.Context, slug, query string) ([]models.ContentItem, error) {
	adapter, err := s.registry.Get(slug)
	if err != nil {
		return nil, err
	}
	searcher, ok := adapter.(provider.Searcher)
	if !ok {
		return []models.ContentItem{}, nil
	}
	return searcher.Search(ctx, normalize.FoldQuery(query)), nil
}

// SearchAll fans the query out to every searchable platform and merges
// the results in platform order. A cancelled context discards whatever
// partial results arrived.
func (s *ContentService) SearchAll(ctx context.Context, query string) []models.ContentItem {
	folded := normalize.FoldQuery(query)

	adapters := s.registry.All()
	perPlatform := make([][]models.ContentItem, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range adapters {
		searcher, ok := adapter.(provider.Searcher)
		if !ok {
			continue
		}
		g.Go(func() error {
			perPlatform[i] = searcher.Search(gctx, folded)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		// The caller is gone; its answer must not leak into anything.
		return nil
	}

	var merged []models.ContentItem
	for _, items := range perPlatform {
		merged = append(merged, items...)
	}
	return merged
}

// LiveChannels lists a platform's live channels.
func (s *ContentService) LiveChannels(ctx context.Context, slug string) ([]models.ContentItem, error) {
	adapter, err := s.registry.Get(slug)
	if err != nil {
		return nil, err
	}
	resolver, ok := adapter.(provider.LiveStreamResolver)
	if !ok {
		return []models.ContentItem{}, nil
	}
	return resolver.LiveChannels(ctx)
}

// ResolveLive resolves a live channel to a stream descriptor.
func (s *ContentService) ResolveLive(ctx context.Context, slug, channelID string) (*models.StreamDescriptor, error) {
	adapter, err := s.registry.Get(slug)
	if err != nil {
		return nil, err
	}
	resolver, ok := adapter.(provider.LiveStreamResolver)
	if !ok {
		return nil, models.NewStreamError(models.StreamNotFound, slug,
			fmt.Errorf("platform has no live streams"))
	}
	return resolver.ResolveLiveStream(ctx, channelID)
}

// ResolvePlayback resolves an on-demand asset to a stream descriptor.
func (s *ContentService) ResolvePlayback(ctx context.Context, slug, assetID string) (*models.StreamDescriptor, error) {
	adapter, err := s.registry.Get(slug)
	if err != nil {
		return nil, err
	}
	resolver, ok := adapter.(provider.PlaybackResolver)
	if !ok {
		return nil, models.NewStreamError(models.StreamNotFound, slug,
			fmt.Errorf("platform has no on-demand playback"))
	}
	return resolver.ResolvePlayback(ctx, assetID)
}
