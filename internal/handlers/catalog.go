package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSections lists the active festival sections.
func (a *App) GetSections(c *gin.Context) {
	sections, err := a.Catalog.ActiveSections(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load sections", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// GetSectionDetail returns one section and its active events. A missing
// section is a plain 404, not a gateway failure.
func (a *App) GetSectionDetail(c *gin.Context) {
	section, events, found, err := a.Catalog.SectionWithEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load section", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "section not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": section, "events": events})
}

// GetExplore returns the active sections together with their event counts.
func (a *App) GetExplore(c *gin.Context) {
	sections, err := a.Catalog.ActiveSections(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load sections", err)
		return
	}
	counts, err := a.Catalog.SectionEventCounts(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load event counts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections, "event_counts": counts})
}

// GetMapAreas lists the active venue map areas.
func (a *App) GetMapAreas(c *gin.Context) {
	areas, err := a.Catalog.ActiveMapAreas(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load map areas", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"map_areas": areas})
}

// GetBanners lists the active sponsor banners.
func (a *App) GetBanners(c *gin.Context) {
	banners, err := a.Catalog.ActiveBanners(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load banners", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

// GetSettings returns the app settings key/value map.
func (a *App) GetSettings(c *gin.Context) {
	settings, err := a.Catalog.Settings(c.Request.Context())
	if err != nil {
		handleError(c, http.StatusBadGateway, "Could not load settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
