package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auviostream/auviostream/internal/models"
)

type stubAdapter struct {
	platform models.Platform
}

func (s *stubAdapter) Platform() models.Platform { return s.platform }

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAdapter{platform: models.Platform{Slug: "auvio", Name: "Auvio"}})

	a, err := registry.Get("auvio")
	require.NoError(t, err)
	assert.Equal(t, "Auvio", a.Platform().Name)
}

func TestRegistryUnknownSlug(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("nosuch")
	assert.True(t, models.IsStreamKind(err, models.StreamUnknownPlatform))
}

func TestRegistryOrdering(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAdapter{platform: models.Platform{Slug: "rtlplay"}})
	registry.Register(&stubAdapter{platform: models.Platform{Slug: "auvio"}})
	registry.Register(&stubAdapter{platform: models.Platform{Slug: "ln24"}})

	assert.Equal(t, []string{"auvio", "ln24", "rtlplay"}, registry.Slugs())

	platforms := registry.Platforms()
	require.Len(t, platforms, 3)
	assert.Equal(t, "auvio", platforms[0].Slug)
}

func TestRegistryReplaceOnReRegister(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAdapter{platform: models.Platform{Slug: "auvio", Name: "old"}})
	registry.Register(&stubAdapter{platform: models.Platform{Slug: "auvio", Name: "new"}})

	a, err := registry.Get("auvio")
	require.NoError(t, err)
	assert.Equal(t, "new", a.Platform().Name)
	assert.Len(t, registry.Slugs(), 1)
}
