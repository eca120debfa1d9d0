package models

// Favorite links the current identity to an event it saved. At most one row
// exists per (identity, event) pair; toggle semantics enforce that.
type Favorite struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	Note    string `json:"note"`
}
