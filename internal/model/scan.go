package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanRecord is one row of a user's scan history. Recipes themselves are
// ephemeral (cached in Redis for a day); only the detected ingredients and
// counts are kept durably.
type ScanRecord struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt           time.Time        `json:"created_at"`
	UserID              uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	DetectedIngredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"detected_ingredients"`
	RecipeCount         int              `json:"recipe_count"`
	ImageURL            string           `gorm:"size:512" json:"image_url,omitempty"`
}

func (ScanRecord) TableName() string {
	return "scan_records"
}
