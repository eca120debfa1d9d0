package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"festguide/internal/auth"
	"festguide/internal/config"
	"festguide/internal/handlers"
	"festguide/internal/prefs"
	"festguide/internal/restdb"
	"festguide/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
	cfg := config.Load()

	store, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		log.Fatal("Failed to open preference store:", err)
	}

	db := restdb.NewClient(restdb.Config{
		BaseURL: cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
	})
	gateway := auth.NewGateway(auth.GatewayConfig{
		BaseURL: cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
	})

	// One instance of each service per running app, wired explicitly.
	resolver := auth.NewResolver(db, gateway, store)
	favorites := services.NewFavoritesStore(db, resolver)
	inbox := services.NewInbox()
	scheduler := services.NewReminderScheduler(db, resolver, favorites, inbox, store)
	catalog := services.NewCatalogService(db)
	admin := services.NewAdminService(db, resolver)

	// Identity changes reload the favorites set; favorites changes
	// re-evaluate the scheduler. A failed load keeps the previous set and is
	// retried on the next sign-in.
	resolver.OnChange(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := favorites.Load(ctx); err != nil {
			log.Printf("favorites: load failed: %v", err)
		}
		scheduler.Refresh()
	})
	favorites.SetOnChange(scheduler.Refresh)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 20*time.Second)
	resolver.Bootstrap(bootCtx)
	cancelBoot()

	app := &handlers.App{
		Resolver:  resolver,
		Favorites: favorites,
		Inbox:     inbox,
		Scheduler: scheduler,
		Catalog:   catalog,
		Admin:     admin,
		Prefs:     store,
	}
	router := handlers.NewRouter(app, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("festguide listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("graceful shutdown failed:", err)
	}
}
