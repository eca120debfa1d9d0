package models

import "time"

// Event is a festival programme entry. Events are owned by the admin content
// management side; the core only reads them.
type Event struct {
	ID          string     `json:"id"`
	SectionID   string     `json:"section_id,omitempty"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Description string     `json:"description,omitempty"`
	Day         *int       `json:"day,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Stage       string     `json:"stage,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	SpotifyURL  string     `json:"spotify_url,omitempty"`
	Featured    bool       `json:"featured,omitempty"`
	SortOrder   int        `json:"sort_order,omitempty"`
	IsActive    bool       `json:"is_active"`
}

// DisplayName returns the artist name when present, falling back to the title.
func (e *Event) DisplayName() string {
	if e.Artist != "" {
		return e.Artist
	}
	return e.Title
}
