// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/cache"
	"github.com/hargapangan/pangan-backend/internal/config"
	"github.com/hargapangan/pangan-backend/internal/handlers"
	"github.com/hargapangan/pangan-backend/internal/middleware"
	"github.com/hargapangan/pangan-backend/internal/services"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

// Initialize wires services, handlers, and routes. The sync service is built
// by the caller because the background scheduler shares it.
func Initialize(db *gorm.DB, cfg *config.Config, priceCache *cache.PriceCache, syncService *services.SyncService) *gin.Engine {
	// Initialize services
	auditService := services.NewAuditService(db)
	authService := services.NewAuthService(db, cfg, auditService)
	commodityService := services.NewCommodityService(db)
	storageService, _ := services.NewStorageService(cfg.Storage)
	priceService := services.NewPriceService(db, priceCache)
	overrideService := services.NewOverrideService(db, auditService)
	reportService := services.NewReportService(db, storageService, auditService)
	importService := services.NewImportService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	commodityHandler := handlers.NewCommodityHandler(commodityService)
	priceHandler := handlers.NewPriceHandler(priceService)
	overrideHandler := handlers.NewOverrideHandler(overrideService, authService)
	reportHandler := handlers.NewReportHandler(reportService, importService, storageService, authService, auditService)
	syncHandler := handlers.NewSyncHandler(syncService, auditService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Commodity registry routes. Reads are public; OptionalAuth lets
		// audit rows name logged-in callers.
		commodities := v1.Group("/commodities")
		commodities.Use(middleware.OptionalAuth())
		{
			commodities.GET("", commodityHandler.List)
			commodities.GET("/custom", commodityHandler.ListCustom)
			commodities.GET("/custom/:id", commodityHandler.GetCustom)
			commodities.GET("/:id", commodityHandler.Get)

			protected := commodities.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/custom", commodityHandler.CreateCustom)

				admin := protected.Group("")
				admin.Use(middleware.AdminRequired())
				{
					admin.POST("", commodityHandler.Create)
					admin.PUT("/:id", commodityHandler.Update)
					admin.DELETE("/:id", commodityHandler.Deactivate)
				}
			}
		}

		// Price comparison and history routes (public)
		prices := v1.Group("/prices")
		prices.Use(middleware.OptionalAuth())
		{
			prices.GET("/compare", priceHandler.CompareDay)
			prices.GET("/top-movers", priceHandler.TopMovers)
			prices.GET("/:id/series", priceHandler.DayOverDay)
			prices.GET("/:id/history", priceHandler.History)
		}

		// Manual price override routes
		overrides := v1.Group("/overrides")
		overrides.Use(middleware.AuthRequired())
		{
			overrides.POST("", overrideHandler.Create)
			overrides.GET("", overrideHandler.List)
			overrides.GET("/:id", overrideHandler.Get)

			elevated := overrides.Group("")
			elevated.Use(middleware.ElevatedRequired())
			{
				elevated.POST("/:id/decision", overrideHandler.Decide)
				elevated.DELETE("/:id", overrideHandler.Delete)
			}
		}

		// Market price report routes
		reports := v1.Group("/reports")
		reports.Use(middleware.AuthRequired())
		{
			reports.POST("", reportHandler.Create)
			reports.GET("", reportHandler.List)
			reports.GET("/:id", reportHandler.Get)
			reports.PUT("/:id", reportHandler.Update)
			reports.DELETE("/:id", reportHandler.Delete)
			reports.POST("/:id/images", middleware.UploadRateLimit(), reportHandler.UploadImage)
			reports.DELETE("/:id/images", reportHandler.RemoveImage)

			elevated := reports.Group("")
			elevated.Use(middleware.ElevatedRequired())
			{
				elevated.POST("/:id/verify", reportHandler.Verify)
				elevated.POST("/import", middleware.ImportRateLimit(), reportHandler.Import)
			}
		}

		// Sync routes (officer or admin)
		sync := v1.Group("/sync")
		sync.Use(middleware.AuthRequired(), middleware.ElevatedRequired())
		{
			sync.POST("", middleware.SyncRateLimit(), syncHandler.Trigger)
			sync.GET("/status", syncHandler.Status)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/audit-logs", auditHandler.List)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", cfg.Storage.LocalPath)
	}

	return r
}
