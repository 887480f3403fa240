package models

import "time"

// Playlist is a user-curated list of content items, stored locally and
// mirrored best-effort to the remote sync backend.
type Playlist struct {
	ID        ULID          `json:"id"`
	Name      string        `json:"name"`
	Items     []ContentItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Validate checks the playlist for required fields.
func (p *Playlist) Validate() error {
	if p.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Contains reports whether the playlist already holds the given content id.
func (p *Playlist) Contains(contentID string) bool {
	for _, item := range p.Items {
		if item.ID == contentID {
			return true
		}
	}
	return false
}
