package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/treatyourshelf/backend/internal/types"
)

// RecipeGenerator turns an ingredient list plus a preference profile into
// recipe suggestions via the text model.
type RecipeGenerator struct {
	llm *GeminiClient
}

// NewRecipeGenerator creates a new RecipeGenerator instance
func NewRecipeGenerator(llm *GeminiClient) *RecipeGenerator {
	return &RecipeGenerator{llm: llm}
}

// Generate asks the model for 5-8 recipes matching the detected ingredients
// and preferences. Callers must pass a non-empty ingredient list. The returned
// order is the model's own match-descending sort; it is not re-sorted here.
// An unparseable response returns ErrUnparseable.
func (g *RecipeGenerator) Generate(ctx context.Context, ingredients []string, prefs types.PreferenceProfile) ([]types.Recipe, error) {
	raw, err := g.llm.GenerateText(ctx, g.buildPrompt(ingredients, prefs))
	if err != nil {
		return nil, fmt.Errorf("generation model call failed: %w", err)
	}

	recipes, err := ParseRecipeBatch(raw)
	if err != nil {
		return nil, fmt.Errorf("%w; raw response: %s", err, raw)
	}

	for i := range recipes {
		recipes[i].Fingerprint = RecipeFingerprint(recipes[i].Title, recipes[i].Ingredients)
	}
	return recipes, nil
}

// buildPrompt renders the fixed instruction template. Preference lines are
// included only when set, always in the same order: restrictions, allergies,
// cuisines, meal type, skill level, free-text request.
func (g *RecipeGenerator) buildPrompt(ingredients []string, prefs types.PreferenceProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I have these ingredients available: %s.\n", strings.Join(ingredients, ", "))

	if len(prefs.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "Dietary restrictions: %s.\n", strings.Join(prefs.DietaryRestrictions, ", "))
	}
	if len(prefs.Allergies) > 0 {
		fmt.Fprintf(&b, "Allergies, the recipes MUST avoid: %s.\n", strings.Join(prefs.Allergies, ", "))
	}
	if len(prefs.CuisinePreferences) > 0 {
		fmt.Fprintf(&b, "Cuisine preferences: %s.\n", strings.Join(prefs.CuisinePreferences, ", "))
	}
	if prefs.MealType != "" {
		fmt.Fprintf(&b, "Meal type: %s.\n", prefs.MealType)
	}
	if prefs.SkillLevel != "" {
		fmt.Fprintf(&b, "Skill level: %s.\n", prefs.SkillLevel)
	}
	if prefs.AdditionalPrompt != "" {
		fmt.Fprintf(&b, "Additional request: %s.\n", prefs.AdditionalPrompt)
	}

	b.WriteString(`
Suggest 5 to 8 recipes. Respond with strict JSON only, no markdown fences:
a JSON array of objects with exactly these fields:
id (integer), title (string), match (integer 0-100), ingredients (array of strings),
description (string), directions (array of strings), category (string),
dietary_tags (array of strings), skill_level (string).
The match score is a 0-100 relevance rating; prefer recipes that mostly use the
available ingredients. Include each recipe's full ingredient list even for items
not in my pantry. Sort the array by match descending.
Never include any ingredient I listed as an allergy.`)

	return b.String()
}
