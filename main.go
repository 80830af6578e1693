package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yourusername/billing-backoffice/config"
	"github.com/yourusername/billing-backoffice/handlers"
	"github.com/yourusername/billing-backoffice/logger"
	"github.com/yourusername/billing-backoffice/middleware"
	"gorm.io/gorm"
)

func setupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "billing-backoffice-api",
		})
	})

	authHandler := handlers.NewAuthHandler(db, cfg)
	invoiceHandler := handlers.NewInvoiceHandler(db, cfg)
	priceHandler := handlers.NewPriceHandler(db, cfg)
	customerHandler := handlers.NewCustomerHandler(db)
	supplierHandler := handlers.NewSupplierHandler(db)
	productHandler := handlers.NewProductHandler(db)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		authed := api.Group("")
		authed.Use(middleware.JwtAuthMiddleware(cfg))
		{
			authed.POST("/invoices", middleware.RequirePermission(middleware.PermInvoiceCreate), invoiceHandler.Create)
			authed.GET("/invoices", middleware.RequirePermission(middleware.PermInvoiceRead), invoiceHandler.List)
			authed.GET("/invoices/:id", middleware.RequirePermission(middleware.PermInvoiceRead), invoiceHandler.Get)
			authed.PUT("/invoices/:id", middleware.RequirePermission(middleware.PermInvoiceUpdate), invoiceHandler.Update)
			authed.PATCH("/invoices/:id/status", middleware.RequirePermission(middleware.PermInvoiceChangeStatus), invoiceHandler.ChangeStatus)
			authed.GET("/invoices/:id/notes", middleware.RequirePermission(middleware.PermInvoiceRead), invoiceHandler.ListNotes)
			authed.POST("/invoices/:id/notes", middleware.RequirePermission(middleware.PermNoteWrite), invoiceHandler.CreateNote)

			// customer portal, read-only
			authed.GET("/my-invoices", middleware.RequirePermission(middleware.PermInvoiceReadOwn), invoiceHandler.ListMine)

			authed.POST("/product-prices", middleware.RequirePermission(middleware.PermPriceWrite), priceHandler.Create)
			authed.GET("/product-prices", middleware.RequirePermission(middleware.PermPriceRead), priceHandler.List)
			authed.GET("/product-prices/:id", middleware.RequirePermission(middleware.PermPriceRead), priceHandler.Get)
			authed.PUT("/product-prices/:id", middleware.RequirePermission(middleware.PermPriceWrite), priceHandler.Update)
			authed.POST("/product-prices/bulk-update", middleware.RequirePermission(middleware.PermPriceWrite), priceHandler.BulkImport)

			authed.POST("/customers", middleware.RequirePermission(middleware.PermMasterDataWrite), customerHandler.Create)
			authed.GET("/customers", middleware.RequirePermission(middleware.PermMasterDataRead), customerHandler.List)
			authed.GET("/customers/:id", middleware.RequirePermission(middleware.PermMasterDataRead), customerHandler.Get)
			authed.PUT("/customers/:id", middleware.RequirePermission(middleware.PermMasterDataWrite), customerHandler.Update)
			authed.DELETE("/customers/:id", middleware.RequirePermission(middleware.PermMasterDataWrite), customerHandler.Delete)

			authed.POST("/suppliers", middleware.RequirePermission(middleware.PermMasterDataWrite), supplierHandler.Create)
			authed.GET("/suppliers", middleware.RequirePermission(middleware.PermMasterDataRead), supplierHandler.List)
			authed.GET("/suppliers/:id", middleware.RequirePermission(middleware.PermMasterDataRead), supplierHandler.Get)
			authed.PUT("/suppliers/:id", middleware.RequirePermission(middleware.PermMasterDataWrite), supplierHandler.Update)
			authed.DELETE("/suppliers/:id", middleware.RequirePermission(middleware.PermMasterDataWrite), supplierHandler.Delete)

			authed.POST("/products", middleware.RequirePermission(middleware.PermMasterDataWrite), productHandler.Create)
			authed.GET("/products", middleware.RequirePermission(middleware.PermMasterDataRead), productHandler.List)
			authed.GET("/products/:id", middleware.RequirePermission(middleware.PermMasterDataRead), productHandler.Get)
			authed.PUT("/products/:id", middleware.RequirePermission(middleware.PermMasterDataWrite), productHandler.Update)
			authed.DELETE("/products/:id", middleware.RequirePermission(middleware.PermMasterDataWrite), productHandler.Delete)
		}
	}

	return router
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	router := setupRouter(db, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("Starting billing backoffice API server")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
