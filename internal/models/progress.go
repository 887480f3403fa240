package models

import "time"

// WatchProgressEntry records how far a user got into a piece of content.
// The item snapshot is embedded so the continue-watching shelf can render
// without re-fetching upstream metadata.
type WatchProgressEntry struct {
	ContentID    string      `json:"content_id"`
	PlatformSlug string      `json:"platform_slug"`
	Fraction     float64     `json:"fraction"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Item         ContentItem `json:"item"`
}

// Validate checks the entry for required fields and a sane fraction.
func (w *WatchProgressEntry) Validate() error {
	if w.ContentID == "" {
		return ErrContentIDRequired
	}
	if w.PlatformSlug == "" {
		return ErrSlugRequired
	}
	if w.Fraction < 0 || w.Fraction > 1 {
		return ErrInvalidFraction
	}
	return nil
}
