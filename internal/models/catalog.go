package models

// Section is a browsable festival programme section (music, food, talks...).
type Section struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	SortOrder   int    `json:"sort_order,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// MapArea is a point of interest on the venue map, positioned as percentages
// of the map image so the client can scale freely.
type MapArea struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	SectionID   string  `json:"section_id,omitempty"`
	XPercent    float64 `json:"x_percent"`
	YPercent    float64 `json:"y_percent"`
	IsActive    bool    `json:"is_active"`
}

// SponsorBanner is an entry of the sponsor carousel.
type SponsorBanner struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	LinkURL   string `json:"link_url,omitempty"`
	SortOrder int    `json:"sort_order,omitempty"`
	IsActive  bool   `json:"is_active"`
}

// AppSetting is one key/value row of the app_settings collection.
type AppSetting struct {
	ID        string `json:"id,omitempty"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
