package types

import "strings"

// PreferenceProfile holds the user-supplied dietary constraints for a scan.
// Every field is optional; absent fields are omitted from the generation prompt.
type PreferenceProfile struct {
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	Allergies           []string `json:"allergies,omitempty"`
	CuisinePreferences  []string `json:"cuisine_preferences,omitempty"`
	MealType            string   `json:"meal_type,omitempty"`
	SkillLevel          string   `json:"skill_level,omitempty"`
	AdditionalPrompt    string   `json:"additional_prompt,omitempty"`
}

// Normalize trims whitespace and drops empty entries in place.
func (p *PreferenceProfile) Normalize() {
	p.DietaryRestrictions = cleanList(p.DietaryRestrictions)
	p.Allergies = cleanList(p.Allergies)
	p.CuisinePreferences = cleanList(p.CuisinePreferences)
	p.MealType = strings.TrimSpace(p.MealType)
	p.SkillLevel = strings.TrimSpace(p.SkillLevel)
	p.AdditionalPrompt = strings.TrimSpace(p.AdditionalPrompt)
}

// IsEmpty reports whether no preference field is set.
func (p *PreferenceProfile) IsEmpty() bool {
	return len(p.DietaryRestrictions) == 0 &&
		len(p.Allergies) == 0 &&
		len(p.CuisinePreferences) == 0 &&
		p.MealType == "" &&
		p.SkillLevel == "" &&
		p.AdditionalPrompt == ""
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Recipe is one suggestion in a scan result. ID is scoped to a single batch;
// Fingerprint is the stable content-derived identifier used by favorites.
type Recipe struct {
	ID          int      `json:"id"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Title       string   `json:"title"`
	Match       int      `json:"match"`
	Ingredients []string `json:"ingredients"`
	Description string   `json:"description"`
	Directions  []string `json:"directions"`
	Category    string   `json:"category"`
	DietaryTags []string `json:"dietary_tags"`
	SkillLevel  string   `json:"skill_level"`
}

// ScanResult is the immutable outcome of one scan request.
type ScanResult struct {
	ID                  string   `json:"id,omitempty"`
	DetectedIngredients []string `json:"detected_ingredients"`
	Recipes             []Recipe `json:"recipes"`
	ImageURL            string   `json:"image_url,omitempty"`
}
