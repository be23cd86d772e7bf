package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold case-folds text for containment checks: NFKD decomposition, combining
// marks stripped, lower-cased, whitespace collapsed.
func Fold(text string) string {
	text = norm.NFKD.String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsMark(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeQuery produces the deterministic cache key for a free-text query.
func NormalizeQuery(query string) string {
	return Fold(query)
}
