package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"festguide/internal/models"
)

// Inbox holds the notifications raised during this run, newest first.
// Nothing is persisted; the list dies with the process.
type Inbox struct {
	mu    sync.Mutex
	items []models.Notification
}

// NewInbox returns an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Add prepends a new unread notification and returns it.
func (i *Inbox) Add(title, description string) models.Notification {
	n := models.Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Timestamp:   time.Now(),
	}
	i.mu.Lock()
	i.items = append([]models.Notification{n}, i.items...)
	i.mu.Unlock()
	return n
}

// List returns a snapshot of the notifications, newest first.
func (i *Inbox) List() []models.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]models.Notification, len(i.items))
	copy(out, i.items)
	return out
}

// MarkAllRead flags every notification as read.
func (i *Inbox) MarkAllRead() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx := range i.items {
		i.items[idx].Read = true
	}
}

// ClearAll empties the inbox.
func (i *Inbox) ClearAll() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.items = nil
}

// UnreadCount returns the number of unread notifications.
func (i *Inbox) UnreadCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	count := 0
	for _, n := range i.items {
		if !n.Read {
			count++
		}
	}
	return count
}
