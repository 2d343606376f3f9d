package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/treatyourshelf/backend/internal/middleware"
	"github.com/treatyourshelf/backend/internal/service"
	"github.com/treatyourshelf/backend/internal/types"
)

// FavoriteHandler manages a user's favorited recipes.
type FavoriteHandler struct {
	favorites   *service.FavoriteService
	authService *service.AuthService
}

// NewFavoriteHandler creates a new FavoriteHandler instance
func NewFavoriteHandler(favorites *service.FavoriteService, authService *service.AuthService) *FavoriteHandler {
	return &FavoriteHandler{
		favorites:   favorites,
		authService: authService,
	}
}

// RegisterRoutes registers the favorite routes
func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites", middleware.AuthMiddleware(h.authService))
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("", h.SaveFavorite)
		favorites.DELETE("/:fingerprint", h.DeleteFavorite)
	}
}

// SaveFavorite stores a recipe snapshot from a scan result.
func (h *FavoriteHandler) SaveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var recipe types.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fav, err := h.favorites.Save(c.Request.Context(), userID, recipe)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"favorite": fav})
}

// DeleteFavorite removes a favorite by its fingerprint.
func (h *FavoriteHandler) DeleteFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	err := h.favorites.Delete(c.Request.Context(), userID, c.Param("fingerprint"))
	if errors.Is(err, service.ErrFavoriteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed successfully"})
}

// ListFavorites returns the user's favorites, optionally ordered by
// similarity to the q query parameter.
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	favorites, err := h.favorites.List(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}
