package http

import (
	"github.com/gin-gonic/gin"
	"github.com/liquidationblitz/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/batches", handler.ProcessBatch)

		catalog := v1.Group("/catalog")
		{
			catalog.GET("", handler.GetCatalog)
			catalog.GET("/stats", handler.GetCatalogStats)
			catalog.DELETE("/batches", handler.DeleteBatches)
		}
	}

	return router
}
