package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/treatyourshelf/backend/config"
	"github.com/treatyourshelf/backend/internal/api"
	"github.com/treatyourshelf/backend/internal/database"
	"github.com/treatyourshelf/backend/internal/middleware"
	"github.com/treatyourshelf/backend/internal/router"
	"github.com/treatyourshelf/backend/internal/service"
)

// Server owns the HTTP server and the wired service graph.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// New builds the full service graph from configuration. The database is
// required; Redis and S3 are optional and their features (rate limiting,
// result caching, image archival) are skipped when unavailable.
func New(cfg *config.Config) (*Server, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, scan caching and rate limiting disabled: %v", err)
		redisClient = nil
	}

	llm, err := service.NewGeminiClient()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	var images *service.ScanImageService
	if os.Getenv("S3_BUCKET_NAME") != "" {
		s3Cfg, err := config.NewS3Config(context.Background())
		if err != nil {
			log.Printf("S3 unavailable, image archival disabled: %v", err)
		} else {
			images = service.NewScanImageService(s3Cfg)
		}
	}

	authService := service.NewAuthService(cfg.JWTSecret)
	preferenceService := service.NewPreferenceService(db)
	favoriteService := service.NewFavoriteService(db)
	scanService := service.NewScanService(
		service.NewIngredientExtractor(llm),
		service.NewRecipeGenerator(llm),
		images,
		db,
		redisClient,
	)

	scanHandler := api.NewScanHandler(scanService, preferenceService, authService, cfg.ScanTimeout)
	favoriteHandler := api.NewFavoriteHandler(favoriteService, authService)
	profileHandler := api.NewProfileHandler(preferenceService, authService)

	var scanLimiter *middleware.RateLimiter
	if redisClient != nil {
		scanLimiter = middleware.NewScanRateLimiter(redisClient)
	}

	r := router.SetupRouter(scanHandler, favoriteHandler, profileHandler, cfg.AllowedOrigins, scanLimiter)

	return &Server{
		cfg:    cfg,
		router: r,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: r,
		},
	}, nil
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
