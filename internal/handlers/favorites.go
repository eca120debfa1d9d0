package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"festguide/internal/services"
)

// GetFavorites returns the loaded favorites set.
func (a *App) GetFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"favorites": a.Favorites.All()})
}

// ToggleFavorite flips favorite membership for one event.
func (a *App) ToggleFavorite(c *gin.Context) {
	eventID := c.Param("eventID")
	if err := a.Favorites.Toggle(c.Request.Context(), eventID); err != nil {
		if errors.Is(err, services.ErrToggleInFlight) {
			handleError(c, http.StatusConflict, "Toggle already in progress", err)
			return
		}
		handleError(c, http.StatusBadGateway, "Could not update favorite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"event_id":    eventID,
		"is_favorite": a.Favorites.IsFavorite(eventID),
	})
}

// NoteRequest is the payload for updating a favorite's note.
type NoteRequest struct {
	Note string `json:"note"`
}

// UpdateFavoriteNote sets the free-text note on a favorited event.
func (a *App) UpdateFavoriteNote(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	eventID := c.Param("eventID")
	if err := a.Favorites.UpdateNote(c.Request.Context(), eventID, req.Note); err != nil {
		handleError(c, http.StatusBadGateway, "Could not update note", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": eventID, "note": a.Favorites.Note(eventID)})
}

// GetProgram returns the favorited events with their details and notes, the
// data behind the personal programme page.
func (a *App) GetProgram(c *gin.Context) {
	ids := a.Favorites.EventIDs()
	events, err := a.Catalog.EventsByIDs(c.Request.Context(), ids)
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load programme", err)
		return
	}

	notes := map[string]string{}
	for _, f := range a.Favorites.All() {
		if f.Note != "" {
			notes[f.EventID] = f.Note
		}
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "notes": notes})
}
