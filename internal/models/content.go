package models

// ContentKind classifies a canonical content item.
type ContentKind string

const (
	// KindVideo is an on-demand video asset.
	KindVideo ContentKind = "video"
	// KindLive is a live channel or live event.
	KindLive ContentKind = "live"
	// KindProgram is a series/program container without a directly
	// playable asset.
	KindProgram ContentKind = "program"
	// KindAudio is an audio-only asset.
	KindAudio ContentKind = "audio"
)

// ContentItem is the canonical representation every adapter converts its
// upstream payloads into. Downstream code never sees platform-specific
// shapes.
//
// Thumbnail is always a string: "" means no image, never null. Publication
// window fields are surfaced exactly as the upstream reported them;
// enforcement of the window is the platform's job, not ours.
type ContentItem struct {
	ID              string      `json:"id"`
	PlatformSlug    string      `json:"platform_slug"`
	Title           string      `json:"title"`
	Subtitle        string      `json:"subtitle,omitempty"`
	Description     string      `json:"description,omitempty"`
	Thumbnail       string      `json:"thumbnail"`
	DurationSeconds int         `json:"duration_seconds,omitempty"`
	Kind            ContentKind `json:"kind"`
	ProgramID       string      `json:"program_id,omitempty"`
	SeasonNumber    int         `json:"season_number,omitempty"`
	EpisodeNumber   int         `json:"episode_number,omitempty"`
	PublishedFrom   string      `json:"published_from,omitempty"`
	PublishedTo     string      `json:"published_to,omitempty"`
}

// Validate checks the content item for required fields.
func (c *ContentItem) Validate() error {
	if c.ID == "" {
		return ErrContentIDRequired
	}
	if c.PlatformSlug == "" {
		return ErrSlugRequired
	}
	if c.Title == "" {
		return ErrTitleRequired
	}
	return nil
}

// Category is a navigable grouping of content on a platform, such as a
// home-page row or a storefront shelf.
type Category struct {
	ID           string        `json:"id"`
	PlatformSlug string        `json:"platform_slug"`
	Title        string        `json:"title"`
	Path         string        `json:"path,omitempty"`
	Items        []ContentItem `json:"items,omitempty"`
}

// GuideEntry is a single scheduled broadcast in the TV guide.
type GuideEntry struct {
	ChannelID string `json:"channel_id"`
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end"`
	ContentID string `json:"content_id,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// GuideChannel is one channel's schedule for a day.
type GuideChannel struct {
	ChannelID string       `json:"channel_id"`
	Name      string       `json:"name"`
	LogoURL   string       `json:"logo_url,omitempty"`
	Entries   []GuideEntry `json:"entries"`
}
