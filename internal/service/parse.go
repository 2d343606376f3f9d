package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/treatyourshelf/backend/internal/types"
)

// ErrUnparseable marks a model response that failed strict JSON parsing.
// Callers can errors.Is on it to log the raw text instead of treating the
// failure as a legitimate zero-match result.
var ErrUnparseable = errors.New("model response is not valid JSON")

// maxIngredientTokenLen bounds heuristic tokens; anything longer is prose, not a name.
const maxIngredientTokenLen = 50

// StripCodeFences removes leading/trailing markdown code fences (with an
// optional case-insensitive "json" language tag) from a model response.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if rest := strings.TrimPrefix(strings.ToLower(s), "json"); len(rest) != len(s) {
			s = s[len(s)-len(rest):]
		}
		s = strings.TrimPrefix(s, "\n")
	}
	if strings.HasSuffix(strings.TrimSpace(s), "```") {
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// ParseIngredientList turns a model response into a list of ingredient names.
// It first attempts a strict JSON-array parse, then falls back to heuristic
// line/comma splitting. The fallback never fails; an empty list is a valid result.
func ParseIngredientList(raw string) []string {
	text := StripCodeFences(raw)

	var names []string
	if err := json.Unmarshal([]byte(text), &names); err == nil {
		out := make([]string, 0, len(names))
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, n)
			}
		}
		return out
	}

	return splitIngredientTokens(text)
}

// splitIngredientTokens is the fail-soft fallback: split on commas and
// newlines, strip bullet/quote characters, drop empty and oversized tokens.
func splitIngredientTokens(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimLeft(tok, "-*• \t\"'[")
		tok = strings.TrimRight(tok, "\"' \t],")
		if tok == "" || len(tok) >= maxIngredientTokenLen {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// ParseRecipeBatch parses a model response into a recipe batch. A response
// that is not a valid JSON array returns ErrUnparseable wrapping the decode
// error; the raw text is left to the caller to log.
func ParseRecipeBatch(raw string) ([]types.Recipe, error) {
	text := StripCodeFences(raw)

	var recipes []types.Recipe
	if err := json.Unmarshal([]byte(text), &recipes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	return coerceRecipes(recipes), nil
}

// coerceRecipes validates the model output shape: recipes without a title are
// dropped, match is clamped to 0-100, nil slices become empty so the response
// JSON always carries arrays. Order is preserved; the model's sort is trusted.
func coerceRecipes(in []types.Recipe) []types.Recipe {
	out := make([]types.Recipe, 0, len(in))
	for _, r := range in {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			continue
		}
		if r.Match < 0 {
			r.Match = 0
		}
		if r.Match > 100 {
			r.Match = 100
		}
		if r.Ingredients == nil {
			r.Ingredients = []string{}
		}
		if r.Directions == nil {
			r.Directions = []string{}
		}
		if r.DietaryTags == nil {
			r.DietaryTags = []string{}
		}
		out = append(out, r)
	}
	return out
}
