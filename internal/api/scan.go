package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/treatyourshelf/backend/internal/middleware"
	"github.com/treatyourshelf/backend/internal/service"
	"github.com/treatyourshelf/backend/internal/types"
)

// ScanHandler exposes the pantry scan pipeline over HTTP.
type ScanHandler struct {
	scans       *service.ScanService
	preferences *service.PreferenceService
	authService *service.AuthService
	timeout     time.Duration
}

// NewScanHandler creates a new ScanHandler instance. preferences may be nil;
// scans then require an explicit preferences part or run unconstrained.
func NewScanHandler(scans *service.ScanService, preferences *service.PreferenceService, authService *service.AuthService, timeout time.Duration) *ScanHandler {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &ScanHandler{
		scans:       scans,
		preferences: preferences,
		authService: authService,
		timeout:     timeout,
	}
}

// RegisterRoutes registers the scan routes. extra middleware (e.g. the scan
// rate limiter) applies only to the scan endpoint itself.
func (h *ScanHandler) RegisterRoutes(router *gin.RouterGroup, extra ...gin.HandlerFunc) {
	auth := middleware.AuthMiddleware(h.authService)

	chain := []gin.HandlerFunc{auth}
	chain = append(chain, extra...)
	chain = append(chain, h.Scan)
	router.POST("/scan", chain...)

	scans := router.Group("/scans", auth)
	{
		scans.GET("", h.ListScans)
		scans.GET("/:id", h.GetScan)
	}
}

// Scan accepts a multipart submission with an image part and an optional
// preferences part (a JSON-encoded string) and returns the scan result.
//
// Input errors reject with 400 before any model call. Upstream model failures
// surface as 500 with the upstream error text. An unparseable generation
// response is not an error: the response is a success with zero recipes.
func (h *ScanHandler) Scan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image: " + err.Error()})
		return
	}
	if len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is empty"})
		return
	}

	mimeType := header.Header.Get("Content-Type")

	prefs, ok := h.resolvePreferences(c, userID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.scans.Scan(ctx, userID, image, mimeType, prefs)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "scan timed out"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan pantry: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// resolvePreferences parses the preferences form part. A missing part falls
// back to the user's stored profile; a malformed part rejects the request
// before any model call. The bool result reports whether to continue.
func (h *ScanHandler) resolvePreferences(c *gin.Context, userID uuid.UUID) (types.PreferenceProfile, bool) {
	var prefs types.PreferenceProfile

	raw := c.PostForm("preferences")
	if raw == "" {
		if h.preferences != nil {
			stored, err := h.preferences.Get(c.Request.Context(), userID)
			if err == nil {
				return stored, true
			}
			// Stored-profile lookup is a convenience; fall through to empty.
		}
		return prefs, true
	}

	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preferences JSON: " + err.Error()})
		return prefs, false
	}

	prefs.Normalize()
	return prefs, true
}

// ListScans returns the caller's scan history, newest first.
func (h *ScanHandler) ListScans(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	records, err := h.scans.History(c.Request.Context(), userID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch scan history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scans": records})
}

// GetScan re-fetches a cached scan result by id.
func (h *ScanHandler) GetScan(c *gin.Context) {
	result, err := h.scans.GetCachedResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan result not found"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
