package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/treatyourshelf/backend/internal/model"
	"github.com/treatyourshelf/backend/internal/types"
)

// ErrFavoriteNotFound is returned when a fingerprint has no favorite row.
var ErrFavoriteNotFound = errors.New("favorite not found")

// FavoriteService stores denormalized recipe snapshots keyed by content
// fingerprint, so a favorite survives after its scan batch expires.
type FavoriteService struct {
	db *gorm.DB
}

// NewFavoriteService creates a new FavoriteService instance
func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Save favorites a recipe for the user. The fingerprint is always recomputed
// server-side from the snapshot; a client-sent value is ignored. Saving the
// same recipe twice refreshes the snapshot instead of erroring.
func (s *FavoriteService) Save(ctx context.Context, userID uuid.UUID, recipe types.Recipe) (*model.FavoriteRecipe, error) {
	recipe.Title = strings.TrimSpace(recipe.Title)
	if recipe.Title == "" {
		return nil, fmt.Errorf("recipe title is required")
	}

	fav := model.FavoriteRecipe{
		ID:          uuid.New(),
		UserID:      userID,
		Fingerprint: RecipeFingerprint(recipe.Title, recipe.Ingredients),
		Title:       recipe.Title,
		Match:       recipe.Match,
		Description: recipe.Description,
		Category:    recipe.Category,
		SkillLevel:  recipe.SkillLevel,
		Ingredients: model.JSONBStringArray(recipe.Ingredients),
		Directions:  model.JSONBStringArray(recipe.Directions),
		DietaryTags: model.JSONBStringArray(recipe.DietaryTags),
		Embedding:   GenerateEmbedding(recipe.Title + " " + recipe.Description),
	}

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND fingerprint = ?", userID, fav.Fingerprint).
		Assign(map[string]interface{}{
			"title":        fav.Title,
			"match":        fav.Match,
			"description":  fav.Description,
			"category":     fav.Category,
			"skill_level":  fav.SkillLevel,
			"ingredients":  fav.Ingredients,
			"directions":   fav.Directions,
			"dietary_tags": fav.DietaryTags,
			"embedding":    fav.Embedding,
		}).
		FirstOrCreate(&fav).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save favorite: %w", err)
	}
	return &fav, nil
}

// Delete removes a favorite by fingerprint.
func (s *FavoriteService) Delete(ctx context.Context, userID uuid.UUID, fingerprint string) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND fingerprint = ?", userID, fingerprint).
		Delete(&model.FavoriteRecipe{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// List returns the user's favorites. With a search term, Postgres orders by
// embedding distance; other dialects fall back to a LIKE match.
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID, search string) ([]model.FavoriteRecipe, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)

	if search != "" {
		if s.db.Dialector.Name() == "postgres" {
			vec := GenerateEmbedding(search)
			query = query.Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
			})
		} else {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
	} else {
		query = query.Order("created_at DESC")
	}

	var favorites []model.FavoriteRecipe
	if err := query.Find(&favorites).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}
