package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/treatyourshelf/backend/internal/middleware"
	"github.com/treatyourshelf/backend/internal/service"
	"github.com/treatyourshelf/backend/internal/types"
)

// ProfileHandler manages the persisted preference profile.
type ProfileHandler struct {
	preferences *service.PreferenceService
	authService *service.AuthService
}

// NewProfileHandler creates a new ProfileHandler instance
func NewProfileHandler(preferences *service.PreferenceService, authService *service.AuthService) *ProfileHandler {
	return &ProfileHandler{
		preferences: preferences,
		authService: authService,
	}
}

// RegisterRoutes registers the profile routes
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile", middleware.AuthMiddleware(h.authService))
	{
		profile.GET("/preferences", h.GetPreferences)
		profile.PUT("/preferences", h.UpdatePreferences)
	}
}

// GetPreferences returns the stored profile, empty if never saved.
func (h *ProfileHandler) GetPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	profile, err := h.preferences.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdatePreferences replaces the stored profile.
func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var profile types.PreferenceProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.preferences.Put(c.Request.Context(), userID, profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Preferences updated successfully"})
}
