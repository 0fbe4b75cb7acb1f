package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var searchFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeSearch lowercases a search term and strips diacritics so that
// "Théâtre" and "theatre" match the same rows.
func NormalizeSearch(term string) string {
	trimmed := strings.TrimSpace(strings.ToLower(term))
	if trimmed == "" {
		return ""
	}
	folded, _, err := transform.String(searchFolder, trimmed)
	if err != nil {
		return trimmed
	}
	return folded
}
