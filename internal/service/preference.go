package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/treatyourshelf/backend/internal/model"
	"github.com/treatyourshelf/backend/internal/types"
)

// PreferenceService persists per-user dietary preference profiles.
type PreferenceService struct {
	db *gorm.DB
}

// NewPreferenceService creates a new PreferenceService instance
func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

// Get returns the stored profile for the user, or an empty profile when none
// has been saved yet.
func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (types.PreferenceProfile, error) {
	var record model.PreferenceRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.PreferenceProfile{}, nil
	}
	if err != nil {
		return types.PreferenceProfile{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	return record.ToProfile(), nil
}

// Put creates or replaces the user's profile.
func (s *PreferenceService) Put(ctx context.Context, userID uuid.UUID, profile types.PreferenceProfile) error {
	profile.Normalize()

	var record model.PreferenceRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = model.PreferenceRecord{ID: uuid.New(), UserID: userID}
		record.ApplyProfile(profile)
		if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create preferences: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	record.ApplyProfile(profile)
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}
