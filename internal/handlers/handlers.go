// Package handlers exposes the application core to the SPA shell over a
// local HTTP API. It owns no business logic: every endpoint is a thin
// adapter around the injected service objects.
package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"festguide/internal/auth"
	"festguide/internal/prefs"
	"festguide/internal/services"
)

// App bundles the service objects the handlers operate on. One App instance
// exists per running process.
type App struct {
	Resolver  *auth.Resolver
	Favorites *services.FavoritesStore
	Inbox     *services.Inbox
	Scheduler *services.ReminderScheduler
	Catalog   *services.CatalogService
	Admin     *services.AdminService
	Prefs     *prefs.Store
}

// NewRouter builds the gin engine with all routes registered. allowedOrigins
// is the SPA origin list for CORS.
func NewRouter(app *App, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", HealthHandler)

	router.POST("/auth/signup", app.SignUp)
	router.POST("/auth/login", app.Login)
	router.POST("/auth/logout", app.Logout)
	router.GET("/auth/me", app.CurrentUser)

	router.GET("/sections", app.GetSections)
	router.GET("/sections/:id", app.GetSectionDetail)
	router.GET("/explore", app.GetExplore)
	router.GET("/map-areas", app.GetMapAreas)
	router.GET("/banners", app.GetBanners)
	router.GET("/settings", app.GetSettings)

	router.GET("/favorites", app.GetFavorites)
	router.POST("/favorites/:eventID/toggle", app.ToggleFavorite)
	router.PUT("/favorites/:eventID/note", app.UpdateFavoriteNote)
	router.GET("/program", app.GetProgram)

	router.GET("/notifications", app.GetNotifications)
	router.POST("/notifications/read-all", app.MarkNotificationsRead)
	router.DELETE("/notifications", app.ClearNotifications)

	router.GET("/preferences/reminders", app.GetRemindersPreference)
	router.PUT("/preferences/reminders", app.SetRemindersPreference)

	admin := router.Group("/admin")
	admin.Use(app.AdminRequired())
	{
		admin.GET("/sections", app.AdminListSections)
		admin.POST("/sections", app.AdminSaveSection)
		admin.PUT("/sections/:id", app.AdminSaveSection)
		admin.DELETE("/sections/:id", app.AdminDeleteSection)

		admin.GET("/events", app.AdminListEvents)
		admin.POST("/events", app.AdminSaveEvent)
		admin.PUT("/events/:id", app.AdminSaveEvent)
		admin.DELETE("/events/:id", app.AdminDeleteEvent)

		admin.GET("/map-areas", app.AdminListMapAreas)
		admin.POST("/map-areas", app.AdminSaveMapArea)
		admin.PUT("/map-areas/:id", app.AdminSaveMapArea)
		admin.DELETE("/map-areas/:id", app.AdminDeleteMapArea)

		admin.GET("/banners", app.AdminListBanners)
		admin.POST("/banners", app.AdminSaveBanner)
		admin.PUT("/banners/:id", app.AdminSaveBanner)
		admin.DELETE("/banners/:id", app.AdminDeleteBanner)

		admin.PUT("/settings/:key", app.AdminUpdateSetting)

		admin.GET("/users", app.AdminListUsers)
		admin.PUT("/users/:userID/role", app.AdminSetRole)
	}

	return router
}

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("Error: %v", err)
	c.JSON(status, gin.H{"error": message})
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// AdminRequired rejects requests when the current identity lacks the admin
// role.
func (a *App) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Resolver.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
