package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/treatyourshelf/backend/internal/api"
	"github.com/treatyourshelf/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	scanHandler *api.ScanHandler,
	favoriteHandler *api.FavoriteHandler,
	profileHandler *api.ProfileHandler,
	allowedOrigins []string,
	scanLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	if scanLimiter != nil {
		scanHandler.RegisterRoutes(v1, scanLimiter.RateLimitMiddleware())
	} else {
		scanHandler.RegisterRoutes(v1)
	}
	favoriteHandler.RegisterRoutes(v1)
	profileHandler.RegisterRoutes(v1)

	return router
}
