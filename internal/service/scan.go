package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/treatyourshelf/backend/internal/model"
	"github.com/treatyourshelf/backend/internal/types"
)

// scanCacheTTL bounds how long a completed ScanResult stays re-fetchable.
const scanCacheTTL = 24 * time.Hour

// ScanService orchestrates one pantry scan: extraction, then generation,
// then best-effort archival of the outcome. It holds no per-request state;
// concurrent scans are independent.
type ScanService struct {
	extractor *IngredientExtractor
	generator *RecipeGenerator
	images    *ScanImageService
	db        *gorm.DB
	redis     *redis.Client
}

// NewScanService creates a new ScanService instance. images, db and redis may
// be nil; archival, history and result caching are then skipped.
func NewScanService(extractor *IngredientExtractor, generator *RecipeGenerator, images *ScanImageService, db *gorm.DB, redisClient *redis.Client) *ScanService {
	return &ScanService{
		extractor: extractor,
		generator: generator,
		images:    images,
		db:        db,
		redis:     redisClient,
	}
}

// Scan runs the full pipeline for one image + preference profile.
//
// Extraction errors propagate (the handler reports 500 with the upstream
// text). An empty extraction short-circuits to an empty result without
// calling the generator. An unparseable generation response degrades to zero
// recipes: the raw text is logged but the result is still a success.
func (s *ScanService) Scan(ctx context.Context, userID uuid.UUID, image []byte, mimeType string, prefs types.PreferenceProfile) (*types.ScanResult, error) {
	ingredients, err := s.extractor.Extract(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}

	result := &types.ScanResult{
		ID:                  uuid.New().String(),
		DetectedIngredients: ingredients,
		Recipes:             []types.Recipe{},
	}

	if len(ingredients) == 0 {
		log.Printf("[ScanService] no ingredients detected, skipping generation")
		return result, nil
	}

	recipes, err := s.generator.Generate(ctx, ingredients, prefs)
	switch {
	case errors.Is(err, ErrUnparseable):
		// Fail-soft: callers see zero recipes, but the parse failure is
		// logged so it stays distinguishable from a legitimate no-match.
		log.Printf("[ScanService] recipe generation degraded: %v", err)
	case err != nil:
		return nil, err
	default:
		result.Recipes = recipes
	}

	s.archive(ctx, userID, image, mimeType, result)
	return result, nil
}

// archive persists the scan outcome: image to S3, result to the Redis cache,
// history row to the database. All of it is best-effort; a scan never fails
// because a downstream store did.
func (s *ScanService) archive(ctx context.Context, userID uuid.UUID, image []byte, mimeType string, result *types.ScanResult) {
	if s.images != nil {
		url, err := s.images.UploadScanImage(ctx, image, mimeType, result.ID)
		if err != nil {
			log.Printf("[ScanService] image archival failed: %v", err)
		} else {
			result.ImageURL = url
		}
	}

	if s.redis != nil {
		if err := s.cacheResult(ctx, result); err != nil {
			log.Printf("[ScanService] result caching failed: %v", err)
		}
	}

	if s.db != nil {
		record := model.ScanRecord{
			ID:                  uuid.MustParse(result.ID),
			UserID:              userID,
			DetectedIngredients: model.JSONBStringArray(result.DetectedIngredients),
			RecipeCount:         len(result.Recipes),
			ImageURL:            result.ImageURL,
		}
		if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
			log.Printf("[ScanService] history write failed: %v", err)
		}
	}
}

func (s *ScanService) cacheResult(ctx context.Context, result *types.ScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal scan result: %w", err)
	}

	key := fmt.Sprintf("scan:result:%s", result.ID)
	if err := s.redis.Set(ctx, key, data, scanCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache scan result: %w", err)
	}
	return nil
}

// GetCachedResult re-fetches a completed ScanResult from the cache.
func (s *ScanService) GetCachedResult(ctx context.Context, id string) (*types.ScanResult, error) {
	if s.redis == nil {
		return nil, fmt.Errorf("scan cache is not configured")
	}

	key := fmt.Sprintf("scan:result:%s", id)
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to get scan result: %w", err)
	}

	var result types.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scan result: %w", err)
	}
	return &result, nil
}

// History lists the caller's scan records, newest first.
func (s *ScanService) History(ctx context.Context, userID uuid.UUID, limit int) ([]model.ScanRecord, error) {
	if s.db == nil {
		return []model.ScanRecord{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var records []model.ScanRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scan history: %w", err)
	}
	return records, nil
}
