// cmd/server/main.go
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

	"github.com/gin-gonic/gin"

	"github.com/hargapangan/pangan-backend/internal/cache"
	"github.com/hargapangan/pangan-backend/internal/config"
	"github.com/hargapangan/pangan-backend/internal/database"
	"github.com/hargapangan/pangan-backend/internal/i18n"
	"github.com/hargapangan/pangan-backend/internal/panelharga"
	"github.com/hargapangan/pangan-backend/internal/router"
	"github.com/hargapangan/pangan-backend/internal/scheduler"
	"github.com/hargapangan/pangan-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Seed admin user and the configured sync region
	if err := database.SeedInitialData(db, cfg); err != nil {
		log.Fatal("Failed to seed initial data:", err)
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale, cfg.I18n.LocalesPath); err != nil {
		log.Fatal("Failed to initialize i18n:", err)
	}

	// Day-comparison cache (nil when Redis is disabled; reads fall through)
	priceCache := cache.NewPriceCache(cfg.Redis, time.Duration(cfg.Sync.CacheTTL)*time.Minute)
	defer priceCache.Close()

	// Upstream price client and sync pipeline
	panelClient := panelharga.NewClient(cfg.PanelHarga)
	commodityService := services.NewCommodityService(db)
	syncService := services.NewSyncService(db, panelClient, commodityService, priceCache,
		cfg.PanelHarga.ProvinceID, cfg.PanelHarga.CityID)

	// Background sync loop
	syncScheduler := scheduler.New(syncService, cfg.Sync.IntervalHours)
	syncScheduler.Start()
	defer syncScheduler.Stop()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(db, cfg, priceCache, syncService)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
