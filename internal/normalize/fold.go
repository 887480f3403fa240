package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldQuery lowercases a search query and strips diacritics, so "Télé"
// matches platforms that index "tele". Falls back to simple lowercasing
// if the transform fails.
func FoldQuery(query string) string {
	folded, _, err := transform.String(diacriticFolder, query)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(query))
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
