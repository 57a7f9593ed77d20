package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/postdrop/postdrop-be/internal/api"
	"github.com/postdrop/postdrop-be/internal/cache"
	"github.com/postdrop/postdrop-be/internal/config"
	"github.com/postdrop/postdrop-be/internal/database"
	"github.com/postdrop/postdrop-be/internal/filestore"
	"github.com/postdrop/postdrop-be/internal/logger"
	"github.com/postdrop/postdrop-be/internal/monitoring"
	"github.com/postdrop/postdrop-be/internal/services"
	"github.com/postdrop/postdrop-be/internal/storage"
	"github.com/postdrop/postdrop-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up the blob store for uploads
	files, err := filestore.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}

	// Set up WebSocket Hub for the activity stream
	hub := websocket.NewHub()
	go hub.Run()

	// Set up the post cache and services
	store := storage.NewSQLiteStore(db)
	postCache := cache.New(cfg.CacheCapacity, cfg.CacheTTL)
	userService := services.NewUserService(store)
	eventService := services.NewEventService(db, hub)
	postService := services.NewPostService(store, files, postCache, eventService, cfg.MaxUploadSize)

	// Set up and run the background janitor
	janitor := monitoring.NewJanitor(postCache, store, files)
	janitor.Run()

	// Set up router
	router := api.NewRouter(hub, userService, postService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	janitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
