package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"gst-recon/internal/config"
	"gst-recon/internal/handler"
	"gst-recon/internal/middleware"
	"gst-recon/internal/repository"
	"gst-recon/internal/service"
	"gst-recon/pkg/logger"
)

// @title GST Reconciliation API
// @version 1.0
// @description API for reconciling GST invoice registers against filed returns and computing input tax credit set-off

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.App.LogLevel)
	logger.GetLogger().Info("Starting GST Reconciliation Service")

	// Connect to database
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	logger.GetLogger().Info("Database connection established")

	// Initialize repositories
	invRepo := repository.NewInvoiceRepository(db)
	reconRepo := repository.NewReconciliationRepository(db)

	// Initialize services
	invService := service.NewInvoiceService(invRepo, cfg.App.BatchSize)
	reconService := service.NewReconciliationService(
		invRepo,
		reconRepo,
		cfg.App.BatchSize,
		decimal.NewFromFloat(cfg.App.ToleranceAmount),
	)

	// Initialize handlers
	invHandler := handler.NewInvoiceHandler(invService)
	reconHandler := handler.NewReconciliationHandler(reconService)
	setoffHandler := handler.NewSetoffHandler()

	// Setup router
	router := setupRouter(invHandler, reconHandler, setoffHandler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.GetLogger().WithField("address", addr).Info("Server starting")

	if err := router.Run(addr); err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to start server")
	}
}

func connectDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func setupRouter(
	invHandler *handler.InvoiceHandler,
	reconHandler *handler.ReconciliationHandler,
	setoffHandler *handler.SetoffHandler,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Invoice routes
		invoices := v1.Group("/invoices")
		{
			invoices.POST("", invHandler.CreateInvoice)
			invoices.POST("/upload", invHandler.UploadRegister)
			invoices.GET("", invHandler.GetRegister)
		}

		// Reconciliation routes
		reconciliation := v1.Group("/reconcile")
		{
			reconciliation.POST("/sales", reconHandler.ReconcileSales)
			reconciliation.POST("/purchase", reconHandler.ReconcilePurchase)
			reconciliation.GET("/jobs/:job_id", reconHandler.GetJobStatus)
			reconciliation.GET("/jobs/:job_id/rows", reconHandler.GetJobRows)
		}

		// Set-off route
		v1.POST("/setoff", setoffHandler.Compute)
	}

	return router
}
