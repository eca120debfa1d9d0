package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// bindRow decodes a free-form row payload for the content-management
// endpoints. The managed collections have different shapes, so the body is
// passed through to the data API as-is.
func bindRow(c *gin.Context) (map[string]any, bool) {
	var row map[string]any
	if err := c.ShouldBindJSON(&row); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return nil, false
	}
	// The row id travels in the URL, never in the payload.
	delete(row, "id")
	return row, true
}

func respondSaved(c *gin.Context, err error) {
	if err != nil {
		handleError(c, http.StatusBadGateway, err.Error(), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AdminListSections lists every section for the management panel.
func (a *App) AdminListSections(c *gin.Context) {
	sections, err := a.Admin.ListSections(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load sections", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// AdminSaveSection creates or updates a section.
func (a *App) AdminSaveSection(c *gin.Context) {
	row, ok := bindRow(c)
	if !ok {
		return
	}
	respondSaved(c, a.Admin.SaveSection(c.Request.Context(), c.Param("id"), row))
}

// AdminDeleteSection removes a section.
func (a *App) AdminDeleteSection(c *gin.Context) {
	respondSaved(c, a.Admin.DeleteSection(c.Request.Context(), c.Param("id")))
}

// AdminListEvents lists every event for the management panel.
func (a *App) AdminListEvents(c *gin.Context) {
	events, err := a.Admin.ListEvents(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load events", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// AdminSaveEvent creates or updates an event.
func (a *App) AdminSaveEvent(c *gin.Context) {
	row, ok := bindRow(c)
	if !ok {
		return
	}
	respondSaved(c, a.Admin.SaveEvent(c.Request.Context(), c.Param("id"), row))
}

// AdminDeleteEvent removes an event.
func (a *App) AdminDeleteEvent(c *gin.Context) {
	respondSaved(c, a.Admin.DeleteEvent(c.Request.Context(), c.Param("id")))
}

// AdminListMapAreas lists every map area for the management panel.
func (a *App) AdminListMapAreas(c *gin.Context) {
	areas, err := a.Admin.ListMapAreas(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load map areas", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"map_areas": areas})
}

// AdminSaveMapArea creates or updates a map area.
func (a *App) AdminSaveMapArea(c *gin.Context) {
	row, ok := bindRow(c)
	if !ok {
		return
	}
	respondSaved(c, a.Admin.SaveMapArea(c.Request.Context(), c.Param("id"), row))
}

// AdminDeleteMapArea removes a map area.
func (a *App) AdminDeleteMapArea(c *gin.Context) {
	respondSaved(c, a.Admin.DeleteMapArea(c.Request.Context(), c.Param("id")))
}

// AdminListBanners lists every sponsor banner for the management panel.
func (a *App) AdminListBanners(c *gin.Context) {
	banners, err := a.Admin.ListBanners(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load banners", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

// AdminSaveBanner creates or updates a sponsor banner.
func (a *App) AdminSaveBanner(c *gin.Context) {
	row, ok := bindRow(c)
	if !ok {
		return
	}
	respondSaved(c, a.Admin.SaveBanner(c.Request.Context(), c.Param("id"), row))
}

// AdminDeleteBanner removes a sponsor banner.
func (a *App) AdminDeleteBanner(c *gin.Context) {
	respondSaved(c, a.Admin.DeleteBanner(c.Request.Context(), c.Param("id")))
}

// SettingRequest is the payload for updating one app setting.
type SettingRequest struct {
	Value string `json:"value"`
}

// AdminUpdateSetting writes one app settings value.
func (a *App) AdminUpdateSetting(c *gin.Context) {
	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}
	respondSaved(c, a.Admin.UpdateSetting(c.Request.Context(), c.Param("key"), req.Value))
}

// AdminListUsers lists registered users and their roles.
func (a *App) AdminListUsers(c *gin.Context) {
	listing, err := a.Admin.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load users", err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// RoleRequest is the payload for changing a user's role.
type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AdminSetRole changes a user's role assignment.
func (a *App) AdminSetRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}
	respondSaved(c, a.Admin.SetRole(c.Request.Context(), c.Param("userID"), req.Role))
}
