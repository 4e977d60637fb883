// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/konisgames/storefront-backend/internal/config"
	"github.com/konisgames/storefront-backend/internal/handlers"
	"github.com/konisgames/storefront-backend/internal/middleware"
	"github.com/konisgames/storefront-backend/internal/services"
	"github.com/konisgames/storefront-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	pricingService := services.NewPricingService(cfg)
	catalogService := services.NewCatalogService(db, pricingService)
	cartService := services.NewCartService(cfg, pricingService, catalogService)
	orderService := services.NewOrderService(db, notificationService)
	paymentProvider := services.NewPaymentLinkProvider(cfg)
	checkoutService := services.NewCheckoutService(cfg, cartService, paymentProvider, orderService, notificationService)
	authService := services.NewAuthService(db, cfg)
	adminService := services.NewAdminService(db, orderService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, storageService)
	cartHandler := handlers.NewCartHandler(cartService, checkoutService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	adminHandler := handlers.NewAdminHandler(adminService, orderService, catalogService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.CartToken())
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
			auth.POST("/login", authHandler.Login)
		}

		// Catalog routes (public)
		products := v1.Group("/products")
		{
			products.GET("", catalogHandler.GetProducts)
			products.GET("/:id", catalogHandler.GetProduct)
		}
		v1.GET("/consoles", catalogHandler.GetConsoles)

		// Legacy catalog feed
		v1.GET("/games", catalogHandler.GetLegacyGames)

		// Cart routes (session-scoped via cart token)
		cart := v1.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items", cartHandler.UpdateQuantity)
			cart.DELETE("/items", cartHandler.RemoveItem)
			cart.PUT("/open", cartHandler.SetOpen)
		}

		// Checkout routes
		checkout := v1.Group("/checkout")
		{
			checkout.GET("", checkoutHandler.GetCheckout)
			checkout.POST("/begin", checkoutHandler.Begin)
			checkout.PUT("/form", checkoutHandler.UpdateForm)
			checkout.POST("/submit", middleware.CheckoutRateLimit(), checkoutHandler.Submit)
			checkout.POST("/abandon", checkoutHandler.Abandon)
			checkout.POST("/reset", checkoutHandler.Reset)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminRequired())
		{
			admin.GET("/me", authHandler.Me)
			admin.PUT("/password", authHandler.ChangePassword)
			admin.GET("/stats", adminHandler.GetStats)

			// Catalog management
			adminProducts := admin.Group("/products")
			{
				adminProducts.GET("", adminHandler.GetProducts)
				adminProducts.POST("", catalogHandler.CreateProduct)
				adminProducts.PUT("/:id", catalogHandler.UpdateProduct)
				adminProducts.DELETE("/:id", catalogHandler.DeleteProduct)
				adminProducts.POST("/images", middleware.UploadRateLimit(), catalogHandler.UploadProductImage)
			}

			// Legacy upsert endpoint
			admin.POST("/games", catalogHandler.UpsertLegacyGame)

			// Customer / order management
			admin.GET("/customers", adminHandler.GetCustomers)
			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("/:id", adminHandler.GetOrder)
				adminOrders.PUT("/:id/paid", adminHandler.MarkOrderPaid)
				adminOrders.PUT("/:id/cancel", adminHandler.CancelOrder)
			}

			// Notifications and audit trail
			adminNotifications := admin.Group("/notifications")
			{
				adminNotifications.GET("", adminHandler.GetNotifications)
				adminNotifications.PUT("/:id/read", adminHandler.MarkNotificationRead)
			}
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
