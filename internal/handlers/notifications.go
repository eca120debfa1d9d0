package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"festguide/internal/prefs"
)

// GetNotifications returns the in-session notifications, newest first.
func (a *App) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"notifications": a.Inbox.List(),
		"unread_count":  a.Inbox.UnreadCount(),
	})
}

// MarkNotificationsRead flags every notification as read.
func (a *App) MarkNotificationsRead(c *gin.Context) {
	a.Inbox.MarkAllRead()
	c.JSON(http.StatusOK, gin.H{"unread_count": 0})
}

// ClearNotifications empties the inbox.
func (a *App) ClearNotifications(c *gin.Context) {
	a.Inbox.ClearAll()
	c.Status(http.StatusNoContent)
}

// RemindersPreferenceRequest is the payload for the reminders toggle.
type RemindersPreferenceRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetRemindersPreference reports whether event reminders are enabled.
func (a *App) GetRemindersPreference(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enabled": a.Prefs.GetBool(prefs.KeyRemindersEnabled, true),
	})
}

// SetRemindersPreference persists the reminders toggle and re-evaluates the
// scheduler, which deactivates or reactivates accordingly.
func (a *App) SetRemindersPreference(c *gin.Context) {
	var req RemindersPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if err := a.Prefs.SetBool(prefs.KeyRemindersEnabled, *req.Enabled); err != nil {
		handleError(c, http.StatusInternalServerError, "Could not save preference", err)
		return
	}
	a.Scheduler.Refresh()
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}
