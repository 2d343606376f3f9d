package service

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n[\"a\"]\n```", `["a"]`},
		{"```JSON\n[\"a\"]\n```", `["a"]`},
		{"```\n[\"a\"]\n```", `["a"]`},
		{"  [\"a\"]  ", `["a"]`},
		{"plain text", "plain text"},
	}

	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseIngredientListJSONArray(t *testing.T) {
	raw := "```json\n[\"egg\",\"rice\",\"garlic\"]\n```"
	got := ParseIngredientList(raw)
	want := []string{"egg", "rice", "garlic"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseIngredientListHeuristicFallback(t *testing.T) {
	got := ParseIngredientList("- Egg\n- Rice, Garlic")
	want := []string{"Egg", "Rice", "Garlic"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseIngredientListDropsOversizedTokens(t *testing.T) {
	long := strings.Repeat("x", 60)
	got := ParseIngredientList("egg\n" + long + "\n, ,rice")
	want := []string{"egg", "rice"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseIngredientListEmptyResult(t *testing.T) {
	if got := ParseIngredientList("[]"); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestParseRecipeBatchPreservesOrder(t *testing.T) {
	raw := "```json\n" + `[
		{"id":1,"title":"Fried Rice","match":92,"ingredients":["rice","egg"],"description":"d","directions":["s1"],"category":"Main Course","dietary_tags":["vegetarian"],"skill_level":"beginner"},
		{"id":2,"title":"Garlic Eggs","match":80,"ingredients":["egg","garlic"],"description":"d2","directions":["s1","s2"],"category":"Breakfast","dietary_tags":[],"skill_level":"beginner"}
	]` + "\n```"

	recipes, err := ParseRecipeBatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	if recipes[0].Title != "Fried Rice" || recipes[1].Title != "Garlic Eggs" {
		t.Fatalf("order not preserved: %v", recipes)
	}
	if recipes[0].Match != 92 {
		t.Fatalf("match = %d, want 92", recipes[0].Match)
	}
}

func TestParseRecipeBatchCoercion(t *testing.T) {
	raw := `[
		{"id":1,"title":"","match":50},
		{"id":2,"title":"Over","match":150},
		{"id":3,"title":"Under","match":-5}
	]`

	recipes, err := ParseRecipeBatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("titleless recipe not dropped: %v", recipes)
	}
	if recipes[0].Match != 100 || recipes[1].Match != 0 {
		t.Fatalf("match not clamped: %d, %d", recipes[0].Match, recipes[1].Match)
	}
	if recipes[0].Ingredients == nil || recipes[0].Directions == nil || recipes[0].DietaryTags == nil {
		t.Fatalf("nil slices not coerced to empty")
	}
}

func TestParseRecipeBatchUnparseable(t *testing.T) {
	_, err := ParseRecipeBatch("Sorry, I could not come up with recipes today.")
	if !errors.Is(err, ErrUnparseable) {
		t.Fatalf("expected ErrUnparseable, got %v", err)
	}
}
