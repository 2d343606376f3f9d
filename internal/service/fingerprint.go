package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// RecipeFingerprint derives a stable identifier from a recipe's normalized
// title and ingredient set. Batch-scoped integer ids change between scans, so
// favorites key on this instead.
func RecipeFingerprint(title string, ingredients []string) string {
	norm := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing = strings.ToLower(strings.TrimSpace(ing)); ing != "" {
			norm = append(norm, ing)
		}
	}
	sort.Strings(norm)

	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(title))))
	for _, ing := range norm {
		h.Write([]byte{0})
		h.Write([]byte(ing))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
