// Package normalize converts upstream payload shapes into canonical
// ContentItem values. Converters are pure: no I/O, no logging, so every
// mapping rule is table-testable.
package normalize

import (
	"strings"

	"github.com/auviostream/auviostream/internal/models"
)

// Illustration is the small/medium/large image block used by the primary
// broadcaster's BFF payloads.
type Illustration struct {
	L string `json:"l"`
	M string `json:"m"`
	S string `json:"s"`
}

// ImageSet is the richer image block used by the partner API, keyed by
// aspect ratio then resolution.
type ImageSet struct {
	Illustration map[string]map[string]string `json:"illustration"`
	Cover        map[string]map[string]string `json:"cover"`
}

// AuvioMedia is one content entry from the primary broadcaster's BFF
// (home page widgets, category content, search results).
type AuvioMedia struct {
	ID            string        `json:"id"`
	AssetID       string        `json:"assetId"`
	Title         string        `json:"title"`
	Subtitle      string        `json:"subtitle"`
	Label         string        `json:"label"`
	Description   string        `json:"description"`
	Illustration  *Illustration `json:"illustration"`
	Images        *ImageSet     `json:"images"`
	Duration      int           `json:"duration"`
	Type          string        `json:"type"`         // VIDEO, LIVE
	ResourceType  string        `json:"resourceType"` // MEDIA, PROGRAM
	ProgramID     string        `json:"programId"`
	PublishedFrom string        `json:"publishedFrom"`
	PublishedTo   string        `json:"publishedTo"`
	IsAudioOnly   bool          `json:"isAudioOnly"`
}

const platformAuvio = "auvio"

// Thumbnail picks the best available image URL: the largest 16x9
// illustration first, then square cover variants, then the plain l/m/s
// block. Returns "" when nothing is set so the field is never null.
func Thumbnail(images *ImageSet, ill *Illustration) string {
	if images != nil {
		if wide, ok := images.Illustration["16x9"]; ok {
			for _, res := range []string{"1248x702", "770x433"} {
				if url := wide[res]; url != "" {
					return url
				}
			}
		}
		if square, ok := images.Cover["1x1"]; ok {
			for _, res := range []string{"770x770", "370x370"} {
				if url := square[res]; url != "" {
					return url
				}
			}
		}
	}
	if ill != nil {
		for _, url := range []string{ill.L, ill.M, ill.S} {
			if url != "" {
				return url
			}
		}
	}
	return ""
}

// FromAuvioMedia converts a BFF media entry into a canonical item.
//
// Kind rules: an entry is a program container when the upstream marks it
// PROGRAM or when it carries no playable asset id; LIVE entries map to
// live; audio-only entries map to audio; everything else is a video.
func FromAuvioMedia(raw AuvioMedia) models.ContentItem {
	title := raw.Title
	if title == "" {
		title = raw.Label
	}

	item := models.ContentItem{
		ID:              raw.ID,
		PlatformSlug:    platformAuvio,
		Title:           title,
		Subtitle:        raw.Subtitle,
		Description:     raw.Description,
		Thumbnail:       Thumbnail(raw.Images, raw.Illustration),
		DurationSeconds: raw.Duration,
		ProgramID:       raw.ProgramID,
		PublishedFrom:   raw.PublishedFrom,
		PublishedTo:     raw.PublishedTo,
	}

	switch {
	case strings.EqualFold(raw.ResourceType, "PROGRAM"):
		item.Kind = models.KindProgram
	case strings.EqualFold(raw.Type, "LIVE"):
		item.Kind = models.KindLive
	case raw.IsAudioOnly:
		item.Kind = models.KindAudio
	case raw.AssetID == "" && raw.ProgramID == "" && raw.Duration == 0:
		item.Kind = models.KindProgram
	default:
		item.Kind = models.KindVideo
	}

	if season, episode, ok := SeasonEpisode(title + " " + raw.Subtitle); ok {
		item.SeasonNumber = season
		item.EpisodeNumber = episode
	}

	return item
}

// PartnerMedia is one row from the partner objectlist API (program videos,
// video details, live planning).
type PartnerMedia struct {
	ID                 string    `json:"id"`
	ExternalID         string    `json:"external_id"`
	Title              string    `json:"title"`
	Subtitle           string    `json:"subtitle"`
	Description        string    `json:"description"`
	ProgramTitle       string    `json:"program_title"`
	ProgramDescription string    `json:"program_description"`
	Images             *ImageSet `json:"images"`
	Duration           int       `json:"duration"`
	IsLive             bool      `json:"is_live"`
}

// FromPartnerMedia converts a partner API row into a canonical item.
func FromPartnerMedia(raw PartnerMedia) models.ContentItem {
	item := models.ContentItem{
		ID:              raw.ID,
		PlatformSlug:    platformAuvio,
		Title:           raw.Title,
		Subtitle:        raw.Subtitle,
		Description:     raw.Description,
		Thumbnail:       Thumbnail(raw.Images, nil),
		DurationSeconds: raw.Duration,
		Kind:            models.KindVideo,
	}
	if raw.IsLive {
		item.Kind = models.KindLive
	}
	if season, episode, ok := SeasonEpisode(raw.Title + " " + raw.Subtitle); ok {
		item.SeasonNumber = season
		item.EpisodeNumber = episode
	}
	return item
}

// Teaser is one tile from the secondary platform's storefront API.
type Teaser struct {
	DetailID    string `json:"detailId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// FromTeaser converts a storefront teaser into a canonical item. Storefront
// tiles are always program containers; playable assets sit behind the
// detail page.
func FromTeaser(slug string, raw Teaser) models.ContentItem {
	return models.ContentItem{
		ID:           raw.DetailID,
		PlatformSlug: slug,
		Title:        raw.Title,
		Description:  raw.Description,
		Thumbnail:    raw.ImageURL,
		Kind:         models.KindProgram,
	}
}

// LiveChannel builds a canonical live item from a static channel table row.
func LiveChannel(slug, id, name, logo string) models.ContentItem {
	return models.ContentItem{
		ID:           id,
		PlatformSlug: slug,
		Title:        name,
		Thumbnail:    logo,
		Kind:         models.KindLive,
	}
}
