package model

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/treatyourshelf/backend/internal/types"
)

// FavoriteRecipe is a denormalized snapshot of a recipe a user favorited.
// Scan batches are ephemeral, so the whole recipe is stored here keyed by its
// content fingerprint rather than the batch-scoped integer id.
type FavoriteRecipe struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_user_fingerprint" json:"user_id"`
	Fingerprint string           `gorm:"size:64;not null;uniqueIndex:idx_user_fingerprint" json:"fingerprint"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Match       int              `json:"match"`
	Description string           `gorm:"type:text" json:"description"`
	Category    string           `gorm:"size:50" json:"category"`
	SkillLevel  string           `gorm:"size:50" json:"skill_level"`
	Ingredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Directions  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"directions"`
	DietaryTags JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_tags"`
	Embedding   pgvector.Vector  `gorm:"type:vector(3)" json:"-"`
}

func (FavoriteRecipe) TableName() string {
	return "favorite_recipes"
}

// ToRecipe converts the stored snapshot back to the API recipe shape.
func (f *FavoriteRecipe) ToRecipe() types.Recipe {
	return types.Recipe{
		Fingerprint: f.Fingerprint,
		Title:       f.Title,
		Match:       f.Match,
		Ingredients: f.Ingredients,
		Description: f.Description,
		Directions:  f.Directions,
		Category:    f.Category,
		DietaryTags: f.DietaryTags,
		SkillLevel:  f.SkillLevel,
	}
}
