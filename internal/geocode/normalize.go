package geocode

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var caser = cases.Fold()

// normalizeKey produces a Unicode-aware case-folded, whitespace-collapsed
// cache key for s, generalizing the teacher's whitespace-only normalize
// step with golang.org/x/text so accented and non-Latin input addresses
// fold to the same key.
func normalizeKey(s string) string {
	folded := caser.String(strings.TrimSpace(s))
	fields := strings.Fields(folded)
	return strings.Join(fields, " ")
}

// titleCaser renders a normalized address back into a display form for
// Forward results whose upstream response carries no label.
var titleCaser = cases.Title(language.English)
