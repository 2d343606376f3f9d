package service

import (
	"context"
	"fmt"
)

// extractionPrompt instructs the vision model to emit a bare JSON array of
// ingredient names. Containers, appliances and packaging are excluded up front
// so the fallback splitter has less noise to deal with.
const extractionPrompt = `Identify every visible food ingredient in this image.
Return ONLY a JSON array of ingredient name strings, for example:
["eggs", "rice", "garlic"]
Only include actual food items. Do not include containers, appliances, or packaging.
Do not include any text outside the JSON array.`

// IngredientExtractor turns a pantry photo into a list of ingredient names.
type IngredientExtractor struct {
	llm *GeminiClient
}

// NewIngredientExtractor creates a new IngredientExtractor instance
func NewIngredientExtractor(llm *GeminiClient) *IngredientExtractor {
	return &IngredientExtractor{llm: llm}
}

// Extract sends the image to the vision model and normalizes the response into
// ingredient names. An empty list is a valid result meaning "nothing detected";
// model call failures propagate to the caller unhandled.
func (e *IngredientExtractor) Extract(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image payload is empty")
	}

	raw, err := e.llm.GenerateFromImage(ctx, image, mimeType, extractionPrompt)
	if err != nil {
		return nil, fmt.Errorf("vision model call failed: %w", err)
	}

	return ParseIngredientList(raw), nil
}
