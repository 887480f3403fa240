// Package provider defines the adapter contract every streaming platform
// integration implements, and the registry that routes requests by
// platform slug.
//
// Adapters expose capabilities through optional interfaces: a news
// channel that only has a live feed implements LiveStreamResolver and
// nothing else, while the primary broadcaster implements all of them.
// Callers type-assert for the capability they need.
package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/auviostream/auviostream/internal/models"
)

// Adapter is the minimal contract: every adapter describes the platform
// it serves.
type Adapter interface {
	Platform() models.Platform
}

// ContentLister lists a platform's browsable catalog.
type ContentLister interface {
	Adapter

	// Categories returns the platform's top-level content groupings,
	// with items preloaded where the upstream supports it.
	Categories(ctx context.Context) ([]models.Category, error)

	// CategoryContent returns the items of one category, identified by
	// the category's upstream id or content path.
	CategoryContent(ctx context.Context, categoryID string) ([]models.ContentItem, error)
}

// Searcher searches a platform's catalog. Implementations absorb
// upstream failures: they log and return an empty slice, never an error.
type Searcher interface {
	Adapter

	Search(ctx context.Context, query string) []models.ContentItem
}

// LiveStreamResolver resolves a live channel to a playable stream.
type LiveStreamResolver interface {
	Adapter

	// LiveChannels lists the platform's live channels.
	LiveChannels(ctx context.Context) ([]models.ContentItem, error)

	// ResolveLiveStream resolves one live channel to a stream
	// descriptor. Failures are typed *models.StreamError values.
	ResolveLiveStream(ctx context.Context, channelID string) (*models.StreamDescriptor, error)
}

// PlaybackResolver resolves an on-demand asset to a playable stream.
type PlaybackResolver interface {
	Adapter

	ResolvePlayback(ctx context.Context, assetID string) (*models.StreamDescriptor, error)
}

// Registry routes platform slugs to their adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Registering the same slug twice replaces the
// earlier adapter.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Platform().Slug] = a
}

// Get returns the adapter for a slug, or a typed UnknownPlatform error.
func (r *Registry) Get(slug string) (Adapter, error) {
	a, ok := r.adapters[slug]
	if !ok {
		return nil, models.NewStreamError(models.StreamUnknownPlatform, slug,
			fmt.Errorf("no adapter registered for %q", slug))
	}
	return a, nil
}

// Slugs returns the registered slugs in stable order.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.adapters))
	for slug := range r.adapters {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// All returns the registered adapters ordered by slug.
func (r *Registry) All() []Adapter {
	adapters := make([]Adapter, 0, len(r.adapters))
	for _, slug := range r.Slugs() {
		adapters = append(adapters, r.adapters[slug])
	}
	return adapters
}

// Platforms returns the platform descriptors of every registered
// adapter, ordered by slug.
func (r *Registry) Platforms() []models.Platform {
	platforms := make([]models.Platform, 0, len(r.adapters))
	for _, a := range r.All() {
		platforms = append(platforms, a.Platform())
	}
	return platforms
}
