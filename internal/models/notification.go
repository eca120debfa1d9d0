package models

import "time"

// Notification is an in-app alert raised by the reminder scheduler or the
// UI. Notifications live only for the lifetime of the process.
type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
}
