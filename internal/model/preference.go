package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/treatyourshelf/backend/internal/types"
)

// PreferenceRecord persists a user's dietary preference profile. Scans that
// omit the preferences part fall back to this record.
type PreferenceRecord struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	UserID              uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DietaryRestrictions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_restrictions"`
	Allergies           JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergies"`
	CuisinePreferences  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"cuisine_preferences"`
	MealType            string           `gorm:"size:50" json:"meal_type"`
	SkillLevel          string           `gorm:"size:50" json:"skill_level"`
	AdditionalPrompt    string           `gorm:"type:text" json:"additional_prompt"`
}

func (PreferenceRecord) TableName() string {
	return "preference_profiles"
}

// ToProfile converts the record to the API profile shape.
func (p *PreferenceRecord) ToProfile() types.PreferenceProfile {
	return types.PreferenceProfile{
		DietaryRestrictions: p.DietaryRestrictions,
		Allergies:           p.Allergies,
		CuisinePreferences:  p.CuisinePreferences,
		MealType:            p.MealType,
		SkillLevel:          p.SkillLevel,
		AdditionalPrompt:    p.AdditionalPrompt,
	}
}

// ApplyProfile copies profile fields onto the record.
func (p *PreferenceRecord) ApplyProfile(profile types.PreferenceProfile) {
	p.DietaryRestrictions = JSONBStringArray(profile.DietaryRestrictions)
	p.Allergies = JSONBStringArray(profile.Allergies)
	p.CuisinePreferences = JSONBStringArray(profile.CuisinePreferences)
	p.MealType = profile.MealType
	p.SkillLevel = profile.SkillLevel
	p.AdditionalPrompt = profile.AdditionalPrompt
}
