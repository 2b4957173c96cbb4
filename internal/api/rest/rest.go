package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-collection-indexer/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Collection endpoints (public read access)
		v1.GET("/collections/:chain/:contract", handler.GetCollection)
		v1.GET("/collections/:chain/:contract/tokens", handler.ListCollectionTokens)
		v1.GET("/collections/:chain/:contract/owners/:token_id", handler.GetTokenOwner)

		// Collection registration and requeue (requires authentication)
		v1.POST("/collections", middleware.Auth(authCfg), handler.RegisterCollection)
		v1.POST("/collections/:chain/:contract/requeue", middleware.Auth(authCfg), handler.RequeueCollection)

		// Grant endpoints
		v1.POST("/grants/:kind", middleware.Auth(authCfg), handler.CreateGrant)
		v1.GET("/grants/:kind", handler.SearchGrants)
		v1.GET("/grants/:kind/:id", handler.GetGrant)
	}
}
